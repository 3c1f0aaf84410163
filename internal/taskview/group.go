package taskview

import "taskboard/internal/model"

// Column is one status bucket of a board, in canonical position.
type Column struct {
	Status model.Status `json:"status"`
	Tasks  []model.Task `json:"tasks"`
}

// Board is an ordered set of status columns. The slice form keeps the
// canonical column order stable through JSON serialization, which a plain
// map would not.
type Board struct {
	Columns []Column `json:"columns"`
}

// Tasks returns the column for a status, or nil for an unknown status.
func (b *Board) Tasks(s model.Status) []model.Task {
	for i := range b.Columns {
		if b.Columns[i].Status == s {
			return b.Columns[i].Tasks
		}
	}
	return nil
}

// GroupByStatus partitions tasks into the three canonical columns. The
// partition is stable: tasks keep their relative input order within a
// column. Every column is present even when empty, and every task lands in
// exactly one column, with unrecognized statuses normalized to to-do.
func GroupByStatus(tasks []model.Task) Board {
	index := make(map[model.Status]int, len(model.StatusOrder))
	board := Board{Columns: make([]Column, 0, len(model.StatusOrder))}
	for i, s := range model.StatusOrder {
		board.Columns = append(board.Columns, Column{Status: s, Tasks: []model.Task{}})
		index[s] = i
	}

	for _, t := range tasks {
		s := model.NormalizeStatus(string(t.Status))
		i := index[s]
		board.Columns[i].Tasks = append(board.Columns[i].Tasks, t)
	}

	return board
}
