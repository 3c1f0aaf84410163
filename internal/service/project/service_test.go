package project

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskboard/internal/apperr"
	"taskboard/internal/model"
)

type fakeProjectStore struct {
	projects map[int]*model.Project
	order    []int
	nextID   int
}

func newFakeProjectStore() *fakeProjectStore {
	return &fakeProjectStore{projects: map[int]*model.Project{}, nextID: 1}
}

func (f *fakeProjectStore) Insert(_ context.Context, p *model.Project) error {
	p.ID = f.nextID
	f.nextID++
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.projects[p.ID] = &cp
	f.order = append(f.order, p.ID)
	return nil
}

func (f *fakeProjectStore) FindByID(_ context.Context, id int) (*model.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjectStore) Update(_ context.Context, p *model.Project) error {
	if _, ok := f.projects[p.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *p
	f.projects[p.ID] = &cp
	return nil
}

func (f *fakeProjectStore) Delete(_ context.Context, id int) error {
	delete(f.projects, id)
	return nil
}

func (f *fakeProjectStore) ListVisible(_ context.Context, userID int) ([]model.Project, error) {
	out := []model.Project{}
	for _, id := range f.order {
		p, ok := f.projects[id]
		if !ok {
			continue
		}
		visible := p.OwnerID == userID
		for _, c := range p.CollaboratorIDs {
			if c == userID {
				visible = true
			}
		}
		if visible {
			out = append(out, *p)
		}
	}
	return out, nil
}

func TestCreateAndListForUser(t *testing.T) {
	store := newFakeProjectStore()
	svc := NewService(store, zap.NewNop())

	_, err := svc.Create(context.Background(), 1, CreateInput{Title: "launch", CollaboratorIDs: []int{2}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(context.Background(), 3, CreateInput{Title: "other"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	for _, userID := range []int{1, 2} {
		got, err := svc.ListForUser(context.Background(), userID)
		if err != nil {
			t.Fatalf("ListForUser(%d) error = %v", userID, err)
		}
		if len(got) != 1 || got[0].Title != "launch" {
			t.Errorf("ListForUser(%d) = %v, want just launch", userID, got)
		}
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	svc := NewService(newFakeProjectStore(), zap.NewNop())

	_, err := svc.Create(context.Background(), 1, CreateInput{})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("Create() error kind = %v, want Validation", apperr.KindOf(err))
	}
}

func TestUpdateAndDeleteOwnerOnly(t *testing.T) {
	store := newFakeProjectStore()
	svc := NewService(store, zap.NewNop())
	p, _ := svc.Create(context.Background(), 1, CreateInput{Title: "launch", CollaboratorIDs: []int{2}})

	title := "renamed"
	if _, err := svc.Update(context.Background(), 2, p.ID, UpdateInput{Title: &title}); apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("collaborator Update() error kind = %v, want Forbidden", apperr.KindOf(err))
	}

	got, err := svc.Update(context.Background(), 1, p.ID, UpdateInput{Title: &title})
	if err != nil {
		t.Fatalf("owner Update() error = %v", err)
	}
	if got.Title != "renamed" {
		t.Errorf("Title = %q, want renamed", got.Title)
	}

	if err := svc.Delete(context.Background(), 2, p.ID); apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("collaborator Delete() error kind = %v, want Forbidden", apperr.KindOf(err))
	}
	if err := svc.Delete(context.Background(), 1, p.ID); err != nil {
		t.Fatalf("owner Delete() error = %v", err)
	}
	if err := svc.Delete(context.Background(), 1, p.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("second Delete() error kind = %v, want NotFound", apperr.KindOf(err))
	}
}
