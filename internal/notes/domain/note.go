package domain

import "time"

type Notebook struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Note struct {
	ID         string
	NotebookID string
	OwnerID    string
	Title      string
	Body       string
	Pinned     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Tag struct {
	ID        string
	OwnerID   string
	Name      string
	Color     string
	CreatedAt time.Time
}
