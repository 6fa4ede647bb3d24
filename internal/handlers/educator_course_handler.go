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

// CourseService is the interface that wraps methods for course authoring by educators
type CourseService interface {
	// CreateCourse validates and creates a course owned by the educator
	//
	// "ctx" is the context for the request.
	// "educatorID" is the ID of the authenticated educator.
	// "req" is the course with its optional module tree.
	//
	// Returns the created course and an error if any.
	CreateCourse(ctx context.Context, educatorID int, req *models.CreateCourseRequest) (*models.Course, error)
	// ListMyCourses retrieves the educator's own courses with their student counts
	//
	// "ctx" is the context for the request.
	// "educatorID" is the ID of the authenticated educator.
	//
	// Returns the courses and an error if any.
	ListMyCourses(ctx context.Context, educatorID int) ([]models.EducatorCourseListItem, error)
	// GetCourse retrieves the full tree of a course owned by the educator
	//
	// "ctx" is the context for the request.
	// "educatorID" is the ID of the authenticated educator.
	// "courseID" is the ID of the course.
	//
	// Returns the course and an error if any; a foreign course yields a forbidden error.
	GetCourse(ctx context.Context, educatorID, courseID int) (*models.Course, error)
	// UpdateCourse applies a partial update to a course owned by the educator
	//
	// "ctx" is the context for the request.
	// "educatorID" is the ID of the authenticated educator.
	// "courseID" is the ID of the course.
	// "req" holds the fields to change.
	//
	// Returns an error if any.
	UpdateCourse(ctx context.Context, educatorID, courseID int, req *models.UpdateCourseRequest) error
	// DeleteCourse deletes a course owned by the educator
	//
	// "ctx" is the context for the request.
	// "educatorID" is the ID of the authenticated educator.
	// "courseID" is the ID of the course.
	//
	// Returns an error if any.
	DeleteCourse(ctx context.Context, educatorID, courseID int) error
	// AddModule appends a module to a course owned by the educator
	//
	// "ctx" is the context for the request.
	// "educatorID" is the ID of the authenticated educator.
	// "courseID" is the ID of the course.
	// "input" is the module with its lessons.
	//
	// Returns the created module and an error if any.
	AddModule(ctx context.Context, educatorID, courseID int, input *models.ModuleInput) (*models.Module, error)
	// DeleteModule deletes a module of a course owned by the educator
	//
	// "ctx" is the context for the request.
	// "educatorID" is the ID of the authenticated educator.
	// "courseID" is the ID of the course.
	// "moduleID" is the ID of the module.
	//
	// Returns an error if any.
	DeleteModule(ctx context.Context, educatorID, courseID, moduleID int) error
	// AddLesson appends a lesson to a module of a course owned by the educator
	//
	// "ctx" is the context for the request.
	// "educatorID" is the ID of the authenticated educator.
	// "courseID" is the ID of the course.
	// "moduleID" is the ID of the module.
	// "input" is the lesson to create.
	//
	// Returns the created lesson and an error if any.
	AddLesson(ctx context.Context, educatorID, courseID, moduleID int, input *models.LessonInput) (*models.Lesson, error)
	// DeleteLesson deletes a lesson of a course owned by the educator
	//
	// "ctx" is the context for the request.
	// "educatorID" is the ID of the authenticated educator.
	// "courseID" is the ID of the course.
	// "lessonID" is the ID of the lesson.
	//
	// Returns an error if any.
	DeleteLesson(ctx context.Context, educatorID, courseID, lessonID int) error
}

// EducatorCourseHandler handles HTTP requests for course authoring
type EducatorCourseHandler struct {
	handlers.BaseHandler
	service CourseService
}

// NewEducatorCourseHandler creates a new educator course handler
func NewEducatorCourseHandler(svc CourseService, logger *zap.Logger) *EducatorCourseHandler {
	return &EducatorCourseHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all educator course routes behind the educator role middleware
func (h *EducatorCourseHandler) RegisterRoutes(r chi.Router, educatorMiddleware func(http.Handler) http.Handler) {
	r.Route("/educator/courses", func(r chi.Router) {
		r.Use(educatorMiddleware)
		r.Get("/", h.ListMyCourses)
		r.Post("/", h.CreateCourse)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetCourse)
			r.Patch("/", h.UpdateCourse)
			r.Put("/", h.UpdateCourse)
			r.Delete("/", h.DeleteCourse)
			r.Post("/modules", h.AddModule)
			r.Delete("/modules/{moduleId}", h.DeleteModule)
			r.Post("/modules/{moduleId}/lessons", h.AddLesson)
			r.Delete("/lessons/{lessonId}", h.DeleteLesson)
		})
	})
}

// educatorID reads the authenticated educator from the request context
func (h *EducatorCourseHandler) educatorID(r *http.Request) (int, error) {
	id, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		return 0, apperr.Unauthenticated("authentication required")
	}
	return id, nil
}

// ListMyCourses handles GET /educator/courses
// @Summary List own courses
// @Description Get the courses of the authenticated educator, newest first
// @Tags educator-courses
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.EducatorCourseListItem
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /educator/courses [get]
func (h *EducatorCourseHandler) ListMyCourses(w http.ResponseWriter, r *http.Request) {
	educatorID, err := h.educatorID(r)
	if err != nil {
		h.RespondServiceError(w, r, "list educator courses", err)
		return
	}

	courses, err := h.service.ListMyCourses(r.Context(), educatorID)
	if err != nil {
		h.RespondServiceError(w, r, "list educator courses", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, courses)
}

// CreateCourse handles POST /educator/courses
// @Summary Create a course
// @Description Create a course, optionally with its modules and lessons
// @Tags educator-courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateCourseRequest true "Course"
// @Success 201 {object} models.Course
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /educator/courses [post]
func (h *EducatorCourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	educatorID, err := h.educatorID(r)
	if err != nil {
		h.RespondServiceError(w, r, "create course", err)
		return
	}

	var req models.CreateCourseRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, "create course", err)
		return
	}

	course, err := h.service.CreateCourse(r.Context(), educatorID, &req)
	if err != nil {
		h.RespondServiceError(w, r, "create course", err)
		return
	}

	h.Logger.Info("course created", zap.Int("course_id", course.ID), zap.Int("educator_id", educatorID))
	h.RespondJSON(w, http.StatusCreated, course)
}

// GetCourse handles GET /educator/courses/{id}
// @Summary Get an own course
// @Description Get a course with its ordered modules and lessons
// @Tags educator-courses
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Success 200 {object} models.Course
// @Failure 400 {object} map[string]string "Invalid id"
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /educator/courses/{id} [get]
func (h *EducatorCourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	educatorID, err := h.educatorID(r)
	if err != nil {
		h.RespondServiceError(w, r, "get course", err)
		return
	}
	courseID, err := h.URLParamInt(r, "id")
	if err != nil {
		h.RespondServiceError(w, r, "get course", err)
		return
	}

	course, err := h.service.GetCourse(r.Context(), educatorID, courseID)
	if err != nil {
		h.RespondServiceError(w, r, "get course", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, course)
}

// UpdateCourse handles PATCH and PUT /educator/courses/{id}
// @Summary Update an own course
// @Description Partially update a course; a modules array is synced into the tree, entries with an id keep that module or lesson
// @Tags educator-courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Param request body models.UpdateCourseRequest true "Fields to update"
// @Success 200 {object} map[string]string "Course updated"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /educator/courses/{id} [patch]
// @Router /educator/courses/{id} [put]
func (h *EducatorCourseHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	educatorID, err := h.educatorID(r)
	if err != nil {
		h.RespondServiceError(w, r, "update course", err)
		return
	}
	courseID, err := h.URLParamInt(r, "id")
	if err != nil {
		h.RespondServiceError(w, r, "update course", err)
		return
	}

	var req models.UpdateCourseRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, "update course", err)
		return
	}

	if err := h.service.UpdateCourse(r.Context(), educatorID, courseID, &req); err != nil {
		h.RespondServiceError(w, r, "update course", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "Course updated"})
}

// DeleteCourse handles DELETE /educator/courses/{id}
// @Summary Delete an own course
// @Description Delete a course together with its modules, lessons and enrollments
// @Tags educator-courses
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Success 204
// @Failure 400 {object} map[string]string "Invalid id"
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /educator/courses/{id} [delete]
func (h *EducatorCourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	educatorID, err := h.educatorID(r)
	if err != nil {
		h.RespondServiceError(w, r, "delete course", err)
		return
	}
	courseID, err := h.URLParamInt(r, "id")
	if err != nil {
		h.RespondServiceError(w, r, "delete course", err)
		return
	}

	if err := h.service.DeleteCourse(r.Context(), educatorID, courseID); err != nil {
		h.RespondServiceError(w, r, "delete course", err)
		return
	}

	h.Logger.Info("course deleted", zap.Int("course_id", courseID), zap.Int("educator_id", educatorID))
	w.WriteHeader(http.StatusNoContent)
}

// AddModule handles POST /educator/courses/{id}/modules
// @Summary Add a module
// @Description Append a module, with optional lessons, to an own course
// @Tags educator-courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Param request body models.ModuleInput true "Module"
// @Success 201 {object} models.Module
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /educator/courses/{id}/modules [post]
func (h *EducatorCourseHandler) AddModule(w http.ResponseWriter, r *http.Request) {
	educatorID, err := h.educatorID(r)
	if err != nil {
		h.RespondServiceError(w, r, "add module", err)
		return
	}
	courseID, err := h.URLParamInt(r, "id")
	if err != nil {
		h.RespondServiceError(w, r, "add module", err)
		return
	}

	var input models.ModuleInput
	if err := h.DecodeJSON(r, &input); err != nil {
		h.RespondServiceError(w, r, "add module", err)
		return
	}

	module, err := h.service.AddModule(r.Context(), educatorID, courseID, &input)
	if err != nil {
		h.RespondServiceError(w, r, "add module", err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, module)
}

// DeleteModule handles DELETE /educator/courses/{id}/modules/{moduleId}
// @Summary Delete a module
// @Tags educator-courses
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Param moduleId path int true "Module ID"
// @Success 204
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Module not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /educator/courses/{id}/modules/{moduleId} [delete]
func (h *EducatorCourseHandler) DeleteModule(w http.ResponseWriter, r *http.Request) {
	educatorID, err := h.educatorID(r)
	if err != nil {
		h.RespondServiceError(w, r, "delete module", err)
		return
	}
	courseID, err := h.URLParamInt(r, "id")
	if err != nil {
		h.RespondServiceError(w, r, "delete module", err)
		return
	}
	moduleID, err := h.URLParamInt(r, "moduleId")
	if err != nil {
		h.RespondServiceError(w, r, "delete module", err)
		return
	}

	if err := h.service.DeleteModule(r.Context(), educatorID, courseID, moduleID); err != nil {
		h.RespondServiceError(w, r, "delete module", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddLesson handles POST /educator/courses/{id}/modules/{moduleId}/lessons
// @Summary Add a lesson
// @Tags educator-courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Param moduleId path int true "Module ID"
// @Param request body models.LessonInput true "Lesson"
// @Success 201 {object} models.Lesson
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Module not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /educator/courses/{id}/modules/{moduleId}/lessons [post]
func (h *EducatorCourseHandler) AddLesson(w http.ResponseWriter, r *http.Request) {
	educatorID, err := h.educatorID(r)
	if err != nil {
		h.RespondServiceError(w, r, "add lesson", err)
		return
	}
	courseID, err := h.URLParamInt(r, "id")
	if err != nil {
		h.RespondServiceError(w, r, "add lesson", err)
		return
	}
	moduleID, err := h.URLParamInt(r, "moduleId")
	if err != nil {
		h.RespondServiceError(w, r, "add lesson", err)
		return
	}

	var input models.LessonInput
	if err := h.DecodeJSON(r, &input); err != nil {
		h.RespondServiceError(w, r, "add lesson", err)
		return
	}

	lesson, err := h.service.AddLesson(r.Context(), educatorID, courseID, moduleID, &input)
	if err != nil {
		h.RespondServiceError(w, r, "add lesson", err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, lesson)
}

// DeleteLesson handles DELETE /educator/courses/{id}/lessons/{lessonId}
// @Summary Delete a lesson
// @Description Delete a lesson; completed-lesson records pointing at it are dropped
// @Tags educator-courses
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Param lessonId path int true "Lesson ID"
// @Success 204
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /educator/courses/{id}/lessons/{lessonId} [delete]
func (h *EducatorCourseHandler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	educatorID, err := h.educatorID(r)
	if err != nil {
		h.RespondServiceError(w, r, "delete lesson", err)
		return
	}
	courseID, err := h.URLParamInt(r, "id")
	if err != nil {
		h.RespondServiceError(w, r, "delete lesson", err)
		return
	}
	lessonID, err := h.URLParamInt(r, "lessonId")
	if err != nil {
		h.RespondServiceError(w, r, "delete lesson", err)
		return
	}

	if err := h.service.DeleteLesson(r.Context(), educatorID, courseID, lessonID); err != nil {
		h.RespondServiceError(w, r, "delete lesson", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
