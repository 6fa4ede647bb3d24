package handlers

import (
	"context"
	"net/http"

	"github.com/coursehub/backend/internal/models"
	"github.com/coursehub/backend/libs/handlers"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for educator and student authentication.
type AuthService interface {
	// Method SignupEducator validates the credentials, creates an educator and issues an access token.
	//
	// "req" parameter contains full name, email, password and specialization.
	//
	// If the request is invalid an invalid error is returned; a registered email yields a conflict error.
	SignupEducator(ctx context.Context, req *models.EducatorSignupRequest) (*models.AuthResponse, error)
	// Method SignupStudent validates the credentials, creates a student and issues an access token.
	//
	// Please reference SignupEducator method for more information about error values.
	SignupStudent(ctx context.Context, req *models.StudentSignupRequest) (*models.AuthResponse, error)
	// Method LoginEducator checks the educator credentials and issues an access token.
	//
	// Wrong email or password yields an unauthenticated error together with "nil" value.
	LoginEducator(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	// Method LoginStudent checks the student credentials and issues an access token.
	//
	// Please reference LoginEducator method for more information about error values.
	LoginStudent(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
}

// AuthHandler handles signup and login of both principal types
type AuthHandler struct {
	handlers.BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		authService: authService,
	}
}

// RegisterRoutes registers the public auth routes
// Note: This assumes the router is already scoped to /api/v1
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/educator/signup", h.SignupEducator)
	r.Post("/educator/login", h.LoginEducator)
	r.Post("/student/signup", h.SignupStudent)
	r.Post("/student/login", h.LoginStudent)
}

// SignupEducator handles POST /educator/signup
// @Summary Register an educator
// @Description Create an educator account and return an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.EducatorSignupRequest true "Educator credentials"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 409 {object} map[string]string "User already exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /educator/signup [post]
func (h *AuthHandler) SignupEducator(w http.ResponseWriter, r *http.Request) {
	var req models.EducatorSignupRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, "signup educator", err)
		return
	}

	resp, err := h.authService.SignupEducator(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, "signup educator", err)
		return
	}

	h.Logger.Info("educator registered", zap.Int("educator_id", resp.ID))
	h.RespondJSON(w, http.StatusCreated, resp)
}

// LoginEducator handles POST /educator/login
// @Summary Log in as an educator
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Educator credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid email or password"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /educator/login [post]
func (h *AuthHandler) LoginEducator(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, "login educator", err)
		return
	}

	resp, err := h.authService.LoginEducator(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, "login educator", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// SignupStudent handles POST /student/signup
// @Summary Register a student
// @Description Create a student account and return an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.StudentSignupRequest true "Student credentials"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 409 {object} map[string]string "User already exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /student/signup [post]
func (h *AuthHandler) SignupStudent(w http.ResponseWriter, r *http.Request) {
	var req models.StudentSignupRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, "signup student", err)
		return
	}

	resp, err := h.authService.SignupStudent(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, "signup student", err)
		return
	}

	h.Logger.Info("student registered", zap.Int("student_id", resp.ID))
	h.RespondJSON(w, http.StatusCreated, resp)
}

// LoginStudent handles POST /student/login
// @Summary Log in as a student
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Student credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid email or password"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /student/login [post]
func (h *AuthHandler) LoginStudent(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, "login student", err)
		return
	}

	resp, err := h.authService.LoginStudent(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, "login student", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}
