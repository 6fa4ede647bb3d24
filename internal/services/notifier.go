package services

import (
	"context"

	"github.com/coursehub/backend/internal/models"
	"go.uber.org/zap"
)

// Notifier queues e-mail notifications for background delivery
type Notifier interface {
	// EnqueueWelcome queues the welcome e-mail of a new principal
	//
	// "ctx" is the context for the request.
	// "email" and "fullName" address the recipient.
	// "role" selects the e-mail wording.
	//
	// Returns an error if the task could not be queued.
	EnqueueWelcome(ctx context.Context, email, fullName string, role models.Role) error
	// EnqueueEnrollment queues the enrollment confirmation e-mail
	//
	// "ctx" is the context for the request.
	// "studentID" is the ID of the enrolled student.
	// "courseID" is the ID of the course.
	//
	// Returns an error if the task could not be queued.
	EnqueueEnrollment(ctx context.Context, studentID, courseID int) error
	// EnqueueCourseCompleted queues the congratulation e-mail of a finished course
	//
	// "ctx" is the context for the request.
	// "studentID" is the ID of the student.
	// "courseID" is the ID of the completed course.
	//
	// Returns an error if the task could not be queued.
	EnqueueCourseCompleted(ctx context.Context, studentID, courseID int) error
}

// notifyAsync runs a notification in the background; failures are logged only
//
// The request context is detached so the task survives the end of the request.
func notifyAsync(ctx context.Context, logger *zap.Logger, name string, notify func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := notify(ctx); err != nil {
			logger.Warn("failed to enqueue notification", zap.String("task", name), zap.Error(err))
		}
	}()
}
