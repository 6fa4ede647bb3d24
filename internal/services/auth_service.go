package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/coursehub/backend/internal/models"
	"github.com/coursehub/backend/libs/apperr"
	"github.com/coursehub/backend/libs/auth/service"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// EducatorRepository is the interface that wraps methods for Educator table data access
type EducatorRepository interface {
	// Method Create inserts a new educator into the database.
	//
	// "educator" parameter is used to create a new educator; its ID is set on success.
	//
	// A duplicate email is reported as a conflict error.
	Create(ctx context.Context, educator *models.Educator) error
	// Method GetByEmail retrieves an educator by email.
	//
	// If educator with such email does not exist, a not found error will be returned together with "nil" value.
	GetByEmail(ctx context.Context, email string) (*models.Educator, error)
	// Method ExistsByEmail checks if an educator with such email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// StudentRepository is the interface that wraps methods for Student table data access
type StudentRepository interface {
	// Method Create inserts a new student into the database.
	//
	// "student" parameter is used to create a new student; its ID is set on success.
	//
	// A duplicate email is reported as a conflict error.
	Create(ctx context.Context, student *models.Student) error
	// Method GetByEmail retrieves a student by email.
	//
	// If student with such email does not exist, a not found error will be returned together with "nil" value.
	GetByEmail(ctx context.Context, email string) (*models.Student, error)
	// Method ExistsByEmail checks if a student with such email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// emailChecker is the part of both identity repositories used by signup validation
type emailChecker interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// authService implements AuthService
type authService struct {
	educatorRepo   EducatorRepository
	studentRepo    StudentRepository
	tokenGenerator *service.TokenGenerator
	notifier       Notifier
	bcryptCost     int
	logger         *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	educatorRepo EducatorRepository,
	studentRepo StudentRepository,
	tokenGenerator *service.TokenGenerator,
	notifier Notifier,
	bcryptCost int,
	logger *zap.Logger,
) *authService {
	return &authService{
		educatorRepo:   educatorRepo,
		studentRepo:    studentRepo,
		tokenGenerator: tokenGenerator,
		notifier:       notifier,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const (
	minPasswordLength = 6
	// bcrypt rejects longer passwords
	maxPasswordLength = 72
	maxNameLength     = 255
)

var errInvalidCredentials = apperr.Unauthenticated("invalid email or password")

// SignupEducator registers a new educator and issues an access token
func (s *authService) SignupEducator(ctx context.Context, req *models.EducatorSignupRequest) (*models.AuthResponse, error) {
	fullName := strings.TrimSpace(req.FullName)
	specialization := strings.TrimSpace(req.Specialization)
	if specialization == "" {
		return nil, apperr.Invalid("specialization is required")
	}
	if utf8.RuneCountInString(specialization) > maxNameLength {
		return nil, apperr.Invalid(fmt.Sprintf("specialization must be at most %d characters long", maxNameLength))
	}

	email, err := checkSignupCredentials(ctx, s.educatorRepo, fullName, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	educator := &models.Educator{
		FullName:       fullName,
		Email:          email,
		PasswordHash:   string(passwordHash),
		Specialization: specialization,
		Role:           models.RoleEducator,
	}
	if err := s.educatorRepo.Create(ctx, educator); err != nil {
		return nil, err
	}

	// The welcome e-mail must not break the registration flow
	notifyAsync(ctx, s.logger, "welcome", func(ctx context.Context) error {
		return s.notifier.EnqueueWelcome(ctx, educator.Email, educator.FullName, models.RoleEducator)
	})

	return s.issueToken(educator.ID, educator.FullName, educator.Email, models.RoleEducator)
}

// SignupStudent registers a new student and issues an access token
func (s *authService) SignupStudent(ctx context.Context, req *models.StudentSignupRequest) (*models.AuthResponse, error) {
	fullName := strings.TrimSpace(req.FullName)
	email, err := checkSignupCredentials(ctx, s.studentRepo, fullName, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	student := &models.Student{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         models.RoleStudent,
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}

	notifyAsync(ctx, s.logger, "welcome", func(ctx context.Context) error {
		return s.notifier.EnqueueWelcome(ctx, student.Email, student.FullName, models.RoleStudent)
	})

	return s.issueToken(student.ID, student.FullName, student.Email, models.RoleStudent)
}

// LoginEducator authenticates an educator
func (s *authService) LoginEducator(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	email, err := checkLoginRequest(req)
	if err != nil {
		return nil, err
	}

	educator, err := s.educatorRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(educator.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	return s.issueToken(educator.ID, educator.FullName, educator.Email, models.RoleEducator)
}

// LoginStudent authenticates a student
func (s *authService) LoginStudent(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	email, err := checkLoginRequest(req)
	if err != nil {
		return nil, err
	}

	student, err := s.studentRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	return s.issueToken(student.ID, student.FullName, student.Email, models.RoleStudent)
}

func (s *authService) issueToken(id int, fullName, email string, role models.Role) (*models.AuthResponse, error) {
	token, err := s.tokenGenerator.GenerateAccessToken(id, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.AuthResponse{
		Token:     token,
		ID:        id,
		FullName:  fullName,
		Email:     email,
		Role:      role,
		ExpiresIn: int64(s.tokenGenerator.AccessTokenExpiry().Seconds()),
	}, nil
}

func checkLoginRequest(req *models.LoginRequest) (string, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return "", apperr.Invalid("email and password are required")
	}
	return email, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// Method that combines all checks for signup credentials
//
// The checks do not depend on each other, so they run in parallel.
// Returns the normalized email.
func checkSignupCredentials(ctx context.Context, repo emailChecker, fullName, email, password string) (string, error) {
	validationErrors := make(chan error, 3)
	normalizedEmail := normalizeEmail(email)

	// Validate full name
	go func() {
		if fullName == "" {
			validationErrors <- apperr.Invalid("full name is required")
			return
		}
		if utf8.RuneCountInString(fullName) > maxNameLength {
			validationErrors <- apperr.Invalid(fmt.Sprintf("full name must be at most %d characters long", maxNameLength))
			return
		}
		validationErrors <- nil
	}()

	// Validate password
	go func() {
		if len(password) < minPasswordLength {
			validationErrors <- apperr.Invalid(fmt.Sprintf("password must be at least %d characters long", minPasswordLength))
			return
		}
		if len(password) > maxPasswordLength {
			validationErrors <- apperr.Invalid(fmt.Sprintf("password must be at most %d bytes long", maxPasswordLength))
			return
		}
		validationErrors <- nil
	}()

	// Validate email and check its uniqueness
	go func() {
		if len(normalizedEmail) > maxNameLength || !emailRegex.MatchString(normalizedEmail) {
			validationErrors <- apperr.Invalid("invalid email format")
			return
		}
		exists, err := repo.ExistsByEmail(ctx, normalizedEmail)
		if err != nil {
			validationErrors <- fmt.Errorf("failed to check email: %w", err)
			return
		}
		if exists {
			validationErrors <- apperr.Conflict("user already exists")
			return
		}
		validationErrors <- nil
	}()

	var firstErr error
	for range 3 {
		if err := <-validationErrors; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return "", firstErr
	}

	return normalizedEmail, nil
}
