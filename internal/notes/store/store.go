package store

import (
	"context"
	"errors"

	"github.com/inkwell-app/inkwell/internal/notes/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Notebooks() Notebooks
	Notes() Notes
	Tags() Tags

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists if the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateDisplayName mutates display_name and bumps updated_at.
	UpdateDisplayName(ctx context.Context, userID string, displayName string) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// DeleteUser cascades to notebooks, notes and tags (per schema).
	DeleteUser(ctx context.Context, userID string) error
}

type Notebooks interface {
	GetNotebookByID(ctx context.Context, id string) (domain.Notebook, error)

	// ListNotebooks returns all notebooks owned by a user, newest first.
	ListNotebooks(ctx context.Context, ownerID string) ([]domain.Notebook, error)

	CreateNotebook(ctx context.Context, nb domain.Notebook) error

	UpdateNotebook(ctx context.Context, id, name, description string) error

	// DeleteNotebook cascades to notes (per schema).
	DeleteNotebook(ctx context.Context, id string) error
}

type Notes interface {
	GetNoteByID(ctx context.Context, id string) (domain.Note, error)

	// ListNotesByNotebook returns all notes in a notebook, pinned first then
	// newest first.
	ListNotesByNotebook(ctx context.Context, notebookID string) ([]domain.Note, error)

	CreateNote(ctx context.Context, n domain.Note) error

	UpdateNote(ctx context.Context, id, title, body string) error

	SetNotePinned(ctx context.Context, id string, pinned bool) error

	DeleteNote(ctx context.Context, id string) error

	// SearchNotes returns the owner's notes whose title or body contains the
	// query substring (case-insensitive), newest first.
	SearchNotes(ctx context.Context, ownerID, query string) ([]domain.Note, error)
}

type Tags interface {
	GetTagByID(ctx context.Context, id string) (domain.Tag, error)

	ListTags(ctx context.Context, ownerID string) ([]domain.Tag, error)

	// CreateTag returns ErrAlreadyExists if the owner already has a tag with
	// the same name.
	CreateTag(ctx context.Context, t domain.Tag) error

	DeleteTag(ctx context.Context, id string) error

	// AssignTag attaches a tag to a note. Idempotent.
	AssignTag(ctx context.Context, noteID, tagID string) error

	// UnassignTag detaches a tag from a note. Idempotent.
	UnassignTag(ctx context.Context, noteID, tagID string) error

	// ListTagsByNote returns the tags attached to a note.
	ListTagsByNote(ctx context.Context, noteID string) ([]domain.Tag, error)
}
