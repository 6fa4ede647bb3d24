package services

import (
	"context"

	"github.com/coursehub/backend/internal/models"
	"github.com/coursehub/backend/internal/progress"
	"github.com/coursehub/backend/libs/apperr"
	"go.uber.org/zap"
)

// CatalogRepository defines methods for course data access for students
type CatalogRepository interface {
	// GetByID retrieves a course without its modules
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the course.
	//
	// Returns the course and an error if any.
	GetByID(ctx context.Context, id int) (*models.Course, error)
	// ListAll retrieves every course with its owner name and module tree
	//
	// "ctx" is the context for the request.
	//
	// Returns the courses, newest first, and an error if any.
	ListAll(ctx context.Context) ([]models.CatalogCourse, error)
}

// EnrollmentRepository defines methods for enrollment data access
type EnrollmentRepository interface {
	// Create creates an enrollment with zero progress
	//
	// "ctx" is the context for the request.
	// "studentID" is the ID of the student.
	// "courseID" is the ID of the course.
	//
	// Returns the enrollment and an error if any; a duplicate pair is a conflict error.
	Create(ctx context.Context, studentID, courseID int) (*models.Enrollment, error)
	// ExistsByStudentAndCourse checks if the student is enrolled in the course
	//
	// "ctx" is the context for the request.
	// "studentID" is the ID of the student.
	// "courseID" is the ID of the course.
	//
	// Returns a boolean and an error if any.
	ExistsByStudentAndCourse(ctx context.Context, studentID, courseID int) (bool, error)
	// GetByStudentAndCourse retrieves an enrollment with its completed lessons
	//
	// "ctx" is the context for the request.
	// "studentID" is the ID of the student.
	// "courseID" is the ID of the course.
	//
	// Returns the enrollment and an error if any.
	GetByStudentAndCourse(ctx context.Context, studentID, courseID int) (*models.Enrollment, error)
	// ListDashboard retrieves the student's enrollments joined with their courses
	//
	// "ctx" is the context for the request.
	// "studentID" is the ID of the student.
	//
	// Returns the dashboard items and an error if any.
	ListDashboard(ctx context.Context, studentID int) ([]models.DashboardItem, error)
	// MarkLessonComplete records a completed lesson and recomputes progress atomically
	//
	// "ctx" is the context for the request.
	// "studentID" is the ID of the student.
	// "courseID" is the ID of the course.
	// "lessonID" is the ID of the completed lesson.
	// "calculate" computes the new progress.
	//
	// Returns the outcome and an error if any.
	MarkLessonComplete(ctx context.Context, studentID, courseID, lessonID int, calculate func(courseLessonIDs, completedLessonIDs []int) int) (*models.LessonCompletion, error)
}

type studentService struct {
	catalogRepo    CatalogRepository
	enrollmentRepo EnrollmentRepository
	notifier       Notifier
	logger         *zap.Logger
}

// NewStudentService creates a new student service
func NewStudentService(catalogRepo CatalogRepository, enrollmentRepo EnrollmentRepository, notifier Notifier, logger *zap.Logger) *studentService {
	return &studentService{
		catalogRepo:    catalogRepo,
		enrollmentRepo: enrollmentRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

// BrowseCourses returns the full catalog
func (s *studentService) BrowseCourses(ctx context.Context) ([]models.CatalogCourse, error) {
	return s.catalogRepo.ListAll(ctx)
}

// Enroll enrolls the student in an existing course
func (s *studentService) Enroll(ctx context.Context, studentID, courseID int) (*models.Enrollment, error) {
	if _, err := s.catalogRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	exists, err := s.enrollmentRepo.ExistsByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("already enrolled in this course")
	}

	// A concurrent enrollment that passed the check above still hits the unique key
	enrollment, err := s.enrollmentRepo.Create(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}

	notifyAsync(ctx, s.logger, "enrollment", func(ctx context.Context) error {
		return s.notifier.EnqueueEnrollment(ctx, studentID, courseID)
	})

	return enrollment, nil
}

// FindEnrollment returns the student's enrollment in a course
func (s *studentService) FindEnrollment(ctx context.Context, studentID, courseID int) (*models.Enrollment, error) {
	return s.enrollmentRepo.GetByStudentAndCourse(ctx, studentID, courseID)
}

// Dashboard returns the student's enrolled courses with progress
func (s *studentService) Dashboard(ctx context.Context, studentID int) ([]models.DashboardItem, error) {
	return s.enrollmentRepo.ListDashboard(ctx, studentID)
}

// UpdateProgress marks a lesson complete and returns the recomputed progress
func (s *studentService) UpdateProgress(ctx context.Context, studentID int, req *models.UpdateProgressRequest) (*models.ProgressResponse, error) {
	if req.CourseID <= 0 || req.LessonID <= 0 {
		return nil, apperr.Invalid("courseId and lessonId are required")
	}

	result, err := s.enrollmentRepo.MarkLessonComplete(ctx, studentID, req.CourseID, req.LessonID, progress.Calculate)
	if err != nil {
		return nil, err
	}

	if result.JustCompleted {
		notifyAsync(ctx, s.logger, "course_completed", func(ctx context.Context) error {
			return s.notifier.EnqueueCourseCompleted(ctx, studentID, req.CourseID)
		})
	}

	return &models.ProgressResponse{
		Message:          "Progress updated",
		Progress:         result.Enrollment.Progress,
		CompletedLessons: result.Enrollment.CompletedLessonIDs,
		IsCompleted:      result.Enrollment.IsCompleted,
	}, nil
}
