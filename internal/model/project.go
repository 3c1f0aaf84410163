package model

import "time"

type Project struct {
	ID              int       `json:"id"`
	OwnerID         int       `json:"owner_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	CollaboratorIDs []int     `json:"collaborator_ids"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
