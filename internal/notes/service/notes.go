package service

import (
	"context"
	"errors"
	"strings"

	"github.com/inkwell-app/inkwell/internal/notes/domain"
	"github.com/inkwell-app/inkwell/internal/notes/store"
	"github.com/inkwell-app/inkwell/pkg/idx"
)

var (
	ErrNotFound = errors.New("not_found")
	ErrBadInput = errors.New("bad_input")
)

// NotesService owns notebook, note and tag operations. Every method takes the
// acting user's id and scopes access to rows that user owns; a row owned by
// someone else reports ErrNotFound rather than hinting it exists.
type NotesService struct {
	Store store.Store
}

func (s *NotesService) notebookOwnedBy(ctx context.Context, notebookID, ownerID string) (domain.Notebook, error) {
	nb, err := s.Store.Notebooks().GetNotebookByID(ctx, notebookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Notebook{}, ErrNotFound
		}
		return domain.Notebook{}, err
	}
	if nb.OwnerID != ownerID {
		return domain.Notebook{}, ErrNotFound
	}
	return nb, nil
}

func (s *NotesService) noteOwnedBy(ctx context.Context, noteID, ownerID string) (domain.Note, error) {
	n, err := s.Store.Notes().GetNoteByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Note{}, ErrNotFound
		}
		return domain.Note{}, err
	}
	if n.OwnerID != ownerID {
		return domain.Note{}, ErrNotFound
	}
	return n, nil
}

func (s *NotesService) tagOwnedBy(ctx context.Context, tagID, ownerID string) (domain.Tag, error) {
	t, err := s.Store.Tags().GetTagByID(ctx, tagID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Tag{}, ErrNotFound
		}
		return domain.Tag{}, err
	}
	if t.OwnerID != ownerID {
		return domain.Tag{}, ErrNotFound
	}
	return t, nil
}

// Notebooks

func (s *NotesService) CreateNotebook(ctx context.Context, ownerID, name, description string) (domain.Notebook, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Notebook{}, ErrBadInput
	}

	nb := domain.Notebook{
		ID:          idx.New().String(),
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	if err := s.Store.Notebooks().CreateNotebook(ctx, nb); err != nil {
		return domain.Notebook{}, err
	}
	return s.Store.Notebooks().GetNotebookByID(ctx, nb.ID)
}

func (s *NotesService) ListNotebooks(ctx context.Context, ownerID string) ([]domain.Notebook, error) {
	return s.Store.Notebooks().ListNotebooks(ctx, ownerID)
}

func (s *NotesService) GetNotebook(ctx context.Context, ownerID, notebookID string) (domain.Notebook, error) {
	return s.notebookOwnedBy(ctx, notebookID, ownerID)
}

func (s *NotesService) UpdateNotebook(ctx context.Context, ownerID, notebookID, name, description string) (domain.Notebook, error) {
	if _, err := s.notebookOwnedBy(ctx, notebookID, ownerID); err != nil {
		return domain.Notebook{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Notebook{}, ErrBadInput
	}

	if err := s.Store.Notebooks().UpdateNotebook(ctx, notebookID, name, strings.TrimSpace(description)); err != nil {
		return domain.Notebook{}, err
	}
	return s.Store.Notebooks().GetNotebookByID(ctx, notebookID)
}

func (s *NotesService) DeleteNotebook(ctx context.Context, ownerID, notebookID string) error {
	if _, err := s.notebookOwnedBy(ctx, notebookID, ownerID); err != nil {
		return err
	}
	return s.Store.Notebooks().DeleteNotebook(ctx, notebookID)
}

// Notes

func (s *NotesService) CreateNote(ctx context.Context, ownerID, notebookID, title, body string) (domain.Note, error) {
	if _, err := s.notebookOwnedBy(ctx, notebookID, ownerID); err != nil {
		return domain.Note{}, err
	}

	n := domain.Note{
		ID:         idx.New().String(),
		NotebookID: notebookID,
		OwnerID:    ownerID,
		Title:      strings.TrimSpace(title),
		Body:       body,
	}
	if err := s.Store.Notes().CreateNote(ctx, n); err != nil {
		return domain.Note{}, err
	}
	return s.Store.Notes().GetNoteByID(ctx, n.ID)
}

func (s *NotesService) ListNotes(ctx context.Context, ownerID, notebookID string) ([]domain.Note, error) {
	if _, err := s.notebookOwnedBy(ctx, notebookID, ownerID); err != nil {
		return nil, err
	}
	return s.Store.Notes().ListNotesByNotebook(ctx, notebookID)
}

func (s *NotesService) GetNote(ctx context.Context, ownerID, noteID string) (domain.Note, error) {
	return s.noteOwnedBy(ctx, noteID, ownerID)
}

func (s *NotesService) UpdateNote(ctx context.Context, ownerID, noteID, title, body string) (domain.Note, error) {
	if _, err := s.noteOwnedBy(ctx, noteID, ownerID); err != nil {
		return domain.Note{}, err
	}

	if err := s.Store.Notes().UpdateNote(ctx, noteID, strings.TrimSpace(title), body); err != nil {
		return domain.Note{}, err
	}
	return s.Store.Notes().GetNoteByID(ctx, noteID)
}

func (s *NotesService) SetNotePinned(ctx context.Context, ownerID, noteID string, pinned bool) (domain.Note, error) {
	if _, err := s.noteOwnedBy(ctx, noteID, ownerID); err != nil {
		return domain.Note{}, err
	}

	if err := s.Store.Notes().SetNotePinned(ctx, noteID, pinned); err != nil {
		return domain.Note{}, err
	}
	return s.Store.Notes().GetNoteByID(ctx, noteID)
}

func (s *NotesService) DeleteNote(ctx context.Context, ownerID, noteID string) error {
	if _, err := s.noteOwnedBy(ctx, noteID, ownerID); err != nil {
		return err
	}
	return s.Store.Notes().DeleteNote(ctx, noteID)
}

// SearchNotes returns the caller's notes whose title or body contains the
// query substring. An empty query is rejected rather than listing everything.
func (s *NotesService) SearchNotes(ctx context.Context, ownerID, query string) ([]domain.Note, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrBadInput
	}
	return s.Store.Notes().SearchNotes(ctx, ownerID, query)
}

// Tags

func (s *NotesService) CreateTag(ctx context.Context, ownerID, name, color string) (domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Tag{}, ErrBadInput
	}

	t := domain.Tag{
		ID:      idx.New().String(),
		OwnerID: ownerID,
		Name:    name,
		Color:   strings.TrimSpace(color),
	}
	if err := s.Store.Tags().CreateTag(ctx, t); err != nil {
		return domain.Tag{}, err
	}
	return s.Store.Tags().GetTagByID(ctx, t.ID)
}

func (s *NotesService) ListTags(ctx context.Context, ownerID string) ([]domain.Tag, error) {
	return s.Store.Tags().ListTags(ctx, ownerID)
}

func (s *NotesService) DeleteTag(ctx context.Context, ownerID, tagID string) error {
	if _, err := s.tagOwnedBy(ctx, tagID, ownerID); err != nil {
		return err
	}
	return s.Store.Tags().DeleteTag(ctx, tagID)
}

func (s *NotesService) AssignTag(ctx context.Context, ownerID, noteID, tagID string) error {
	if _, err := s.noteOwnedBy(ctx, noteID, ownerID); err != nil {
		return err
	}
	if _, err := s.tagOwnedBy(ctx, tagID, ownerID); err != nil {
		return err
	}
	return s.Store.Tags().AssignTag(ctx, noteID, tagID)
}

func (s *NotesService) UnassignTag(ctx context.Context, ownerID, noteID, tagID string) error {
	if _, err := s.noteOwnedBy(ctx, noteID, ownerID); err != nil {
		return err
	}
	return s.Store.Tags().UnassignTag(ctx, noteID, tagID)
}

func (s *NotesService) ListNoteTags(ctx context.Context, ownerID, noteID string) ([]domain.Tag, error) {
	if _, err := s.noteOwnedBy(ctx, noteID, ownerID); err != nil {
		return nil, err
	}
	return s.Store.Tags().ListTagsByNote(ctx, noteID)
}
