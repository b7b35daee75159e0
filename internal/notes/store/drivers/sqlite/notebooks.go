package sqlite

import (
	"context"

	"github.com/inkwell-app/inkwell/internal/notes/domain"
)

type notebooksRepo struct {
	q querier
}

const notebookColumns = `id, owner_id, name, description, created_at, updated_at`

func (r *notebooksRepo) GetNotebookByID(ctx context.Context, id string) (domain.Notebook, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+notebookColumns+` FROM notebooks WHERE id = ?`, id)
	return scanNotebook(row)
}

func (r *notebooksRepo) ListNotebooks(ctx context.Context, ownerID string) ([]domain.Notebook, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+notebookColumns+` FROM notebooks WHERE owner_id = ? ORDER BY created_at DESC, id DESC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notebook
	for rows.Next() {
		nb, err := scanNotebook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, nb)
	}
	return out, rows.Err()
}

func (r *notebooksRepo) CreateNotebook(ctx context.Context, nb domain.Notebook) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO notebooks (id, owner_id, name, description) VALUES (?, ?, ?, ?)`,
		nb.ID, nb.OwnerID, nb.Name, nb.Description)
	return mapConflict(err)
}

func (r *notebooksRepo) UpdateNotebook(ctx context.Context, id, name, description string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE notebooks SET name = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, description, id)
	return err
}

func (r *notebooksRepo) DeleteNotebook(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM notebooks WHERE id = ?`, id)
	return err
}

func scanNotebook(row rowScanner) (domain.Notebook, error) {
	var nb domain.Notebook
	err := row.Scan(&nb.ID, &nb.OwnerID, &nb.Name, &nb.Description, &nb.CreatedAt, &nb.UpdatedAt)
	if err != nil {
		return domain.Notebook{}, mapNotFound(err)
	}
	return nb, nil
}
