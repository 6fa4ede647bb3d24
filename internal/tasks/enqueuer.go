package tasks

import (
	"context"
	"fmt"

	"github.com/coursehub/backend/internal/models"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TaskClient is the part of *asynq.Client used to queue tasks
type TaskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer queues e-mail tasks for the worker
type Enqueuer struct {
	client TaskClient
	logger *zap.Logger
}

// NewEnqueuer creates a new enqueuer
func NewEnqueuer(client TaskClient, logger *zap.Logger) *Enqueuer {
	return &Enqueuer{
		client: client,
		logger: logger,
	}
}

// EnqueueWelcome queues the welcome e-mail of a new educator or student
func (e *Enqueuer) EnqueueWelcome(ctx context.Context, email, fullName string, role models.Role) error {
	return e.enqueue(ctx, TypeWelcomeEmail, WelcomePayload{
		Email:    email,
		FullName: fullName,
		Role:     role,
	}, asynq.Queue(QueueCritical), asynq.MaxRetry(5))
}

// EnqueueEnrollment queues the enrollment confirmation e-mail
func (e *Enqueuer) EnqueueEnrollment(ctx context.Context, studentID, courseID int) error {
	return e.enqueue(ctx, TypeEnrollmentEmail, EnrollmentPayload{
		StudentID: studentID,
		CourseID:  courseID,
	}, asynq.Queue(QueueDefault), asynq.MaxRetry(5))
}

// EnqueueCourseCompleted queues the congratulation e-mail of a finished course
func (e *Enqueuer) EnqueueCourseCompleted(ctx context.Context, studentID, courseID int) error {
	return e.enqueue(ctx, TypeCourseCompletedEmail, EnrollmentPayload{
		StudentID: studentID,
		CourseID:  courseID,
	}, asynq.Queue(QueueDefault), asynq.MaxRetry(5))
}

// EnqueueProgressReminder queues a reminder for a stalled enrollment
func (e *Enqueuer) EnqueueProgressReminder(ctx context.Context, stalled models.StalledEnrollment) error {
	return e.enqueue(ctx, TypeProgressReminderEmail, ProgressReminderPayload{
		EnrollmentID: stalled.EnrollmentID,
		StudentName:  stalled.StudentName,
		StudentEmail: stalled.StudentEmail,
		CourseTitle:  stalled.CourseTitle,
		Progress:     stalled.Progress,
	}, asynq.Queue(QueueLow), asynq.MaxRetry(2))
}

func (e *Enqueuer) enqueue(ctx context.Context, taskType string, payload any, opts ...asynq.Option) error {
	task, err := newTask(taskType, payload)
	if err != nil {
		return err
	}

	info, err := e.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s task: %w", taskType, err)
	}

	e.logger.Debug("task enqueued", zap.String("type", taskType), zap.String("id", info.ID), zap.String("queue", info.Queue))
	return nil
}
