package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coursehub/backend/internal/models"
	"github.com/coursehub/backend/libs/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupEducatorTestRepository creates an educator repository with a mock database
func setupEducatorTestRepository(t *testing.T) (*educatorRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewEducatorRepository(db, zap.NewNop())

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestNewEducatorRepository(t *testing.T) {
	db := &sql.DB{}
	logger := zap.NewNop()

	repo := NewEducatorRepository(db, logger)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
	assert.Equal(t, logger, repo.logger)
}

func TestEducatorRepository_Create(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expectedKind  error
		expectedID    int
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO educators`).
					WithArgs("Ada Lovelace", "ada@example.com", "hash", "Mathematics").
					WillReturnResult(sqlmock.NewResult(7, 1))
			},
			expectedID: 7,
		},
		{
			name: "duplicate email",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO educators`).
					WithArgs("Ada Lovelace", "ada@example.com", "hash", "Mathematics").
					WillReturnError(errDuplicate)
			},
			expectedError: true,
			expectedKind:  apperr.ErrConflict,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO educators`).
					WithArgs("Ada Lovelace", "ada@example.com", "hash", "Mathematics").
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupEducatorTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			educator := &models.Educator{
				FullName:       "Ada Lovelace",
				Email:          "ada@example.com",
				PasswordHash:   "hash",
				Specialization: "Mathematics",
			}
			err := repo.Create(context.Background(), educator)

			if tt.expectedError {
				assert.Error(t, err)
				if tt.expectedKind != nil {
					assert.ErrorIs(t, err, tt.expectedKind)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedID, educator.ID)
				assert.Equal(t, models.RoleEducator, educator.Role)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEducatorRepository_GetByEmail(t *testing.T) {
	createdAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	columns := []string{"id", "full_name", "email", "password_hash", "specialization", "created_at"}

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expectedKind  error
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(columns).
					AddRow(1, "Ada Lovelace", "ada@example.com", "hash", "Mathematics", createdAt)
				mock.ExpectQuery(`SELECT .* FROM educators WHERE email = \?`).
					WithArgs("ada@example.com").
					WillReturnRows(rows)
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM educators WHERE email = \?`).
					WithArgs("ada@example.com").
					WillReturnError(sql.ErrNoRows)
			},
			expectedError: true,
			expectedKind:  apperr.ErrNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM educators WHERE email = \?`).
					WithArgs("ada@example.com").
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupEducatorTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			educator, err := repo.GetByEmail(context.Background(), "ada@example.com")

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, educator)
				if tt.expectedKind != nil {
					assert.ErrorIs(t, err, tt.expectedKind)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, 1, educator.ID)
				assert.Equal(t, "hash", educator.PasswordHash)
				assert.Equal(t, models.RoleEducator, educator.Role)
				assert.Equal(t, createdAt, educator.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEducatorRepository_ExistsByEmail(t *testing.T) {
	repo, mock, cleanup := setupEducatorTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT \* FROM educators WHERE email = \?\)`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT \* FROM educators WHERE email = \?\)`).
		WithArgs("nobody@example.com").
		WillReturnError(errors.New("database error"))

	exists, err := repo.ExistsByEmail(context.Background(), "ada@example.com")
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(context.Background(), "nobody@example.com")
	assert.Error(t, err)
	assert.False(t, exists)

	assert.NoError(t, mock.ExpectationsWereMet())
}
