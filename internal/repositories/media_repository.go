package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/coursehub/backend/internal/models"
)

// mediaRepository stores upload metadata; the binaries live in the storage backend
type mediaRepository struct {
	db *sql.DB
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(db *sql.DB) *mediaRepository {
	return &mediaRepository{
		db: db,
	}
}

// Create inserts a new media record into the database
func (r *mediaRepository) Create(ctx context.Context, media *models.Media) error {
	query := `
		INSERT INTO media (id, educator_id, content_type, size, url, backend)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		media.ID,
		media.EducatorID,
		media.ContentType,
		media.Size,
		media.URL,
		media.Backend,
	)
	if err != nil {
		return fmt.Errorf("failed to create media: %w", err)
	}

	return nil
}
