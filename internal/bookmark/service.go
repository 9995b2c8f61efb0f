package bookmark

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/mynews/mynews-api/internal/auth"
)

// Store is the persistence capability set the bookmark service needs
type Store interface {
	Create(ctx context.Context, userID int64, dto Dto) (*Bookmark, error)
	Delete(ctx context.Context, userID, id int64) error
	ListByUser(ctx context.Context, userID int64) ([]*Bookmark, error)
}

// Service implements the per-user bookmark list
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Add validates the payload and persists a bookmark owned by userID
func (s *Service) Add(ctx context.Context, userID int64, dto Dto) (*Bookmark, error) {
	if err := dto.Validate(); err != nil {
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			fields := make(map[string]string, len(fieldErrs))
			for field, ferr := range fieldErrs {
				fields[field] = ferr.Error()
			}
			return nil, &auth.ValidationError{Fields: fields}
		}
		return nil, fmt.Errorf("failed to validate bookmark: %w", err)
	}

	b, err := s.store.Create(ctx, userID, dto)
	if err != nil {
		return nil, fmt.Errorf("failed to add bookmark: %w", err)
	}
	return b, nil
}

// Remove deletes the bookmark scoped by owner. A non-matching id is
// reported as ErrNotFound rather than silently ignored.
func (s *Service) Remove(ctx context.Context, userID, id int64) error {
	if err := s.store.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to remove bookmark: %w", err)
	}
	return nil
}

// List returns the user's bookmarks in insertion order
func (s *Service) List(ctx context.Context, userID int64) ([]*Bookmark, error) {
	bookmarks, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	return bookmarks, nil
}
