package models

import "time"

// Board is the canvas of one repository. RepoFullName is unique.
type Board struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	RepoFullName string    `json:"repoFullName"`
	Description  string    `json:"description,omitempty"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
