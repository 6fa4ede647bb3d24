package handlers

import (
	"context"
	"net/http"

	"github.com/coursehub/backend/internal/models"
	"github.com/coursehub/backend/libs/apperr"
	authMiddleware "github.com/coursehub/backend/libs/auth/middleware"
	"github.com/coursehub/backend/libs/handlers"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StudentService is the interface that wraps methods for student learning operations
type StudentService interface {
	// BrowseCourses retrieves the catalog with owner names and module trees
	//
	// "ctx" is the context for the request.
	//
	// Returns the courses and an error if any.
	BrowseCourses(ctx context.Context) ([]models.CatalogCourse, error)
	// Enroll enrolls the student in a course
	//
	// "ctx" is the context for the request.
	// "studentID" is the ID of the authenticated student.
	// "courseID" is the ID of the course.
	//
	// Returns the enrollment and an error if any; a repeated enrollment yields a conflict error.
	Enroll(ctx context.Context, studentID, courseID int) (*models.Enrollment, error)
	// FindEnrollment retrieves the student's enrollment in a course
	//
	// "ctx" is the context for the request.
	// "studentID" is the ID of the authenticated student.
	// "courseID" is the ID of the course.
	//
	// Returns the enrollment and an error if any.
	FindEnrollment(ctx context.Context, studentID, courseID int) (*models.Enrollment, error)
	// Dashboard retrieves the enrolled courses with progress
	//
	// "ctx" is the context for the request.
	// "studentID" is the ID of the authenticated student.
	//
	// Returns the dashboard items and an error if any.
	Dashboard(ctx context.Context, studentID int) ([]models.DashboardItem, error)
	// UpdateProgress marks a lesson complete and recomputes the progress
	//
	// "ctx" is the context for the request.
	// "studentID" is the ID of the authenticated student.
	// "req" names the course and the lesson.
	//
	// Returns the new progress and an error if any.
	UpdateProgress(ctx context.Context, studentID int, req *models.UpdateProgressRequest) (*models.ProgressResponse, error)
}

// StudentHandler handles HTTP requests of students
type StudentHandler struct {
	handlers.BaseHandler
	service StudentService
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(svc StudentService, logger *zap.Logger) *StudentHandler {
	return &StudentHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// enrollResponse is returned after a successful enrollment
type enrollResponse struct {
	Message    string             `json:"message"`
	Enrollment *models.Enrollment `json:"enrollment"`
}

// RegisterRoutes registers all student routes behind the student role middleware
func (h *StudentHandler) RegisterRoutes(r chi.Router, studentMiddleware func(http.Handler) http.Handler) {
	// A group keeps /student/signup and /student/login outside the role check
	r.Group(func(r chi.Router) {
		r.Use(studentMiddleware)
		r.Get("/student/dashboard", h.Dashboard)
		r.Get("/student/courses", h.BrowseCourses)
		r.Get("/student/courses/{courseId}/enrollment", h.GetEnrollment)
		r.Post("/student/enroll/{courseId}", h.Enroll)
		r.Put("/student/progress", h.UpdateProgress)
	})
}

func (h *StudentHandler) studentID(r *http.Request) (int, error) {
	id, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		return 0, apperr.Unauthenticated("authentication required")
	}
	return id, nil
}

// Dashboard handles GET /student/dashboard
// @Summary Get the student dashboard
// @Description Get the enrolled courses with progress and completed lessons
// @Tags student
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.DashboardItem
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /student/dashboard [get]
func (h *StudentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	studentID, err := h.studentID(r)
	if err != nil {
		h.RespondServiceError(w, r, "dashboard", err)
		return
	}

	items, err := h.service.Dashboard(r.Context(), studentID)
	if err != nil {
		h.RespondServiceError(w, r, "dashboard", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, items)
}

// BrowseCourses handles GET /student/courses
// @Summary Browse the catalog
// @Description Get every course with its instructor and module tree
// @Tags student
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.CatalogCourse
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /student/courses [get]
func (h *StudentHandler) BrowseCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.BrowseCourses(r.Context())
	if err != nil {
		h.RespondServiceError(w, r, "browse courses", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, courses)
}

// GetEnrollment handles GET /student/courses/{courseId}/enrollment
// @Summary Get an enrollment
// @Tags student
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} models.Enrollment
// @Failure 404 {object} map[string]string "Not enrolled"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /student/courses/{courseId}/enrollment [get]
func (h *StudentHandler) GetEnrollment(w http.ResponseWriter, r *http.Request) {
	studentID, err := h.studentID(r)
	if err != nil {
		h.RespondServiceError(w, r, "get enrollment", err)
		return
	}
	courseID, err := h.URLParamInt(r, "courseId")
	if err != nil {
		h.RespondServiceError(w, r, "get enrollment", err)
		return
	}

	enrollment, err := h.service.FindEnrollment(r.Context(), studentID, courseID)
	if err != nil {
		h.RespondServiceError(w, r, "get enrollment", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, enrollment)
}

// Enroll handles POST /student/enroll/{courseId}
// @Summary Enroll in a course
// @Tags student
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "Course ID"
// @Success 201 {object} enrollResponse
// @Failure 400 {object} map[string]string "Invalid course id"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 409 {object} map[string]string "Already enrolled in this course"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /student/enroll/{courseId} [post]
func (h *StudentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	studentID, err := h.studentID(r)
	if err != nil {
		h.RespondServiceError(w, r, "enroll", err)
		return
	}
	courseID, err := h.URLParamInt(r, "courseId")
	if err != nil {
		h.RespondServiceError(w, r, "enroll", err)
		return
	}

	enrollment, err := h.service.Enroll(r.Context(), studentID, courseID)
	if err != nil {
		h.RespondServiceError(w, r, "enroll", err)
		return
	}

	h.Logger.Info("student enrolled", zap.Int("student_id", studentID), zap.Int("course_id", courseID))
	h.RespondJSON(w, http.StatusCreated, enrollResponse{
		Message:    "Enrolled successfully",
		Enrollment: enrollment,
	})
}

// UpdateProgress handles PUT /student/progress
// @Summary Mark a lesson complete
// @Description Record a completed lesson and return the recomputed course progress
// @Tags student
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.UpdateProgressRequest true "Course and lesson"
// @Success 200 {object} models.ProgressResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 404 {object} map[string]string "Enrollment or lesson not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /student/progress [put]
func (h *StudentHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	studentID, err := h.studentID(r)
	if err != nil {
		h.RespondServiceError(w, r, "update progress", err)
		return
	}

	var req models.UpdateProgressRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, "update progress", err)
		return
	}

	resp, err := h.service.UpdateProgress(r.Context(), studentID, &req)
	if err != nil {
		h.RespondServiceError(w, r, "update progress", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}
