package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/coursehub/backend/internal/models"
	"github.com/coursehub/backend/libs/apperr"
	"go.uber.org/zap"
)

// studentRepository implements StudentRepository
type studentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *sql.DB, logger *zap.Logger) *studentRepository {
	return &studentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new student into the database
func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	query := `
		INSERT INTO students (full_name, email, password_hash)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, student.FullName, student.Email, student.PasswordHash)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperr.Conflict("user already exists")
		}
		r.logger.Error("failed to create student", zap.Error(err))
		return fmt.Errorf("failed to create student: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	student.ID = int(id)
	student.Role = models.RoleStudent
	return nil
}

// GetByEmail retrieves a student by email
func (r *studentRepository) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	query := `
		SELECT id, full_name, email, password_hash, created_at
		FROM students
		WHERE email = ?
		LIMIT 1
	`

	student := &models.Student{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&student.ID,
		&student.FullName,
		&student.Email,
		&student.PasswordHash,
		&student.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("student not found")
	}
	if err != nil {
		r.logger.Error("failed to get student by email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get student by email: %w", err)
	}

	student.Role = models.RoleStudent
	return student, nil
}

// ExistsByEmail checks if a student exists with the given email
func (r *studentRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM students WHERE email = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check student email existence", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}
