package bookmark

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/mynews/mynews-api/internal/database"
)

var ErrNotFound = errors.New("bookmark not found")

// Repository handles bookmark persistence over bun
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a bookmark owned by the given user
func (r *Repository) Create(ctx context.Context, userID int64, dto Dto) (*Bookmark, error) {
	dbBookmark := &database.Bookmark{
		UserID:      userID,
		Title:       dto.Title,
		URL:         dto.URL,
		URLToImage:  dto.URLToImage,
		Author:      dto.Author,
		Category:    dto.Category,
		Description: dto.Description,
		Content:     dto.Content,
		PublishedAt: dto.PublishedAt,
		CreatedAt:   time.Now(),
	}

	_, err := r.db.NewInsert().
		Model(dbBookmark).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create bookmark: %w", err)
	}

	return mapDBBookmarkToModel(dbBookmark), nil
}

// Delete removes the bookmark matching both id and owner, so one user can
// never delete another user's bookmark
func (r *Repository) Delete(ctx context.Context, userID, id int64) error {
	result, err := r.db.NewDelete().
		Model((*database.Bookmark)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListByUser returns all bookmarks owned by the user in insertion order
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]*Bookmark, error) {
	var dbBookmarks []*database.Bookmark
	err := r.db.NewSelect().
		Model(&dbBookmarks).
		Where("user_id = ?", userID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}

	bookmarks := make([]*Bookmark, 0, len(dbBookmarks))
	for _, dbb := range dbBookmarks {
		bookmarks = append(bookmarks, mapDBBookmarkToModel(dbb))
	}
	return bookmarks, nil
}

// mapDBBookmarkToModel converts the database row to the domain model
func mapDBBookmarkToModel(dbb *database.Bookmark) *Bookmark {
	return &Bookmark{
		ID:          dbb.ID,
		UserID:      dbb.UserID,
		Title:       dbb.Title,
		URL:         dbb.URL,
		URLToImage:  dbb.URLToImage,
		Author:      dbb.Author,
		Category:    dbb.Category,
		Description: dbb.Description,
		Content:     dbb.Content,
		PublishedAt: dbb.PublishedAt,
		CreatedAt:   dbb.CreatedAt,
	}
}
