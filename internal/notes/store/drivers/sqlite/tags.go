package sqlite

import (
	"context"

	"github.com/inkwell-app/inkwell/internal/notes/domain"
)

type tagsRepo struct {
	q querier
}

const tagColumns = `id, owner_id, name, color, created_at`

func (r *tagsRepo) GetTagByID(ctx context.Context, id string) (domain.Tag, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = ?`, id)
	return scanTag(row)
}

func (r *tagsRepo) ListTags(ctx context.Context, ownerID string) ([]domain.Tag, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE owner_id = ? ORDER BY name ASC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *tagsRepo) CreateTag(ctx context.Context, t domain.Tag) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO tags (id, owner_id, name, color) VALUES (?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.Name, t.Color)
	return mapConflict(err)
}

func (r *tagsRepo) DeleteTag(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	return err
}

func (r *tagsRepo) AssignTag(ctx context.Context, noteID, tagID string) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO note_tags (note_id, tag_id) VALUES (?, ?)`,
		noteID, tagID)
	return err
}

func (r *tagsRepo) UnassignTag(ctx context.Context, noteID, tagID string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM note_tags WHERE note_id = ? AND tag_id = ?`,
		noteID, tagID)
	return err
}

func (r *tagsRepo) ListTagsByNote(ctx context.Context, noteID string) ([]domain.Tag, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT t.id, t.owner_id, t.name, t.color, t.created_at
		 FROM tags t
		 JOIN note_tags nt ON nt.tag_id = t.id
		 WHERE nt.note_id = ?
		 ORDER BY t.name ASC`,
		noteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTag(row rowScanner) (domain.Tag, error) {
	var t domain.Tag
	err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Color, &t.CreatedAt)
	if err != nil {
		return domain.Tag{}, mapNotFound(err)
	}
	return t, nil
}
