package sqlite

import (
	"context"

	"github.com/inkwell-app/inkwell/internal/notes/domain"
)

type notesRepo struct {
	q querier
}

const noteColumns = `id, notebook_id, owner_id, title, body, pinned, created_at, updated_at`

func (r *notesRepo) GetNoteByID(ctx context.Context, id string) (domain.Note, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	return scanNote(row)
}

func (r *notesRepo) ListNotesByNotebook(ctx context.Context, notebookID string) ([]domain.Note, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes
		 WHERE notebook_id = ?
		 ORDER BY pinned DESC, created_at DESC, id DESC`,
		notebookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectNotes(rows)
}

func (r *notesRepo) CreateNote(ctx context.Context, n domain.Note) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO notes (id, notebook_id, owner_id, title, body, pinned) VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.NotebookID, n.OwnerID, n.Title, n.Body, n.Pinned)
	return mapConflict(err)
}

func (r *notesRepo) UpdateNote(ctx context.Context, id, title, body string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE notes SET title = ?, body = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, body, id)
	return err
}

func (r *notesRepo) SetNotePinned(ctx context.Context, id string, pinned bool) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE notes SET pinned = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		pinned, id)
	return err
}

func (r *notesRepo) DeleteNote(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	return err
}

func (r *notesRepo) SearchNotes(ctx context.Context, ownerID, query string) ([]domain.Note, error) {
	// LIKE with escaped wildcards gives case-insensitive substring match for
	// ASCII, which is all the search endpoint promises.
	pattern := "%" + escapeLike(query) + "%"
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes
		 WHERE owner_id = ? AND (title LIKE ? ESCAPE '\' OR body LIKE ? ESCAPE '\')
		 ORDER BY created_at DESC, id DESC`,
		ownerID, pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectNotes(rows)
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

func collectNotes(rows interface {
	Next() bool
	Err() error
	Scan(dest ...any) error
}) ([]domain.Note, error) {
	var out []domain.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanNote(row rowScanner) (domain.Note, error) {
	var n domain.Note
	err := row.Scan(&n.ID, &n.NotebookID, &n.OwnerID, &n.Title, &n.Body, &n.Pinned, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return domain.Note{}, mapNotFound(err)
	}
	return n, nil
}
