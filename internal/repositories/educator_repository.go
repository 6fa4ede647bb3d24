package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/coursehub/backend/internal/models"
	"github.com/coursehub/backend/libs/apperr"
	"go.uber.org/zap"
)

// educatorRepository implements EducatorRepository
type educatorRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEducatorRepository creates a new educator repository
func NewEducatorRepository(db *sql.DB, logger *zap.Logger) *educatorRepository {
	return &educatorRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new educator into the database
func (r *educatorRepository) Create(ctx context.Context, educator *models.Educator) error {
	query := `
		INSERT INTO educators (full_name, email, password_hash, specialization)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, educator.FullName, educator.Email, educator.PasswordHash, educator.Specialization)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperr.Conflict("user already exists")
		}
		r.logger.Error("failed to create educator", zap.Error(err))
		return fmt.Errorf("failed to create educator: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	educator.ID = int(id)
	educator.Role = models.RoleEducator
	return nil
}

// GetByEmail retrieves an educator by email
func (r *educatorRepository) GetByEmail(ctx context.Context, email string) (*models.Educator, error) {
	query := `
		SELECT id, full_name, email, password_hash, specialization, created_at
		FROM educators
		WHERE email = ?
		LIMIT 1
	`

	educator := &models.Educator{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&educator.ID,
		&educator.FullName,
		&educator.Email,
		&educator.PasswordHash,
		&educator.Specialization,
		&educator.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("educator not found")
	}
	if err != nil {
		r.logger.Error("failed to get educator by email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get educator by email: %w", err)
	}

	educator.Role = models.RoleEducator
	return educator, nil
}

// ExistsByEmail checks if an educator exists with the given email
func (r *educatorRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM educators WHERE email = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check educator email existence", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}
