package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/coursehub/backend/internal/models"
	"github.com/coursehub/backend/libs/apperr"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RecipientRepository resolves who an enrollment e-mail is sent to
type RecipientRepository interface {
	// GetRecipient retrieves the student name, e-mail and course title
	//
	// "ctx" is the context for the request.
	// "studentID" is the ID of the student.
	// "courseID" is the ID of the course.
	//
	// Returns the recipient and an error if any; a missing student or course is a not found error.
	GetRecipient(ctx context.Context, studentID, courseID int) (*models.EnrollmentRecipient, error)
}

// Processor handles e-mail tasks in the worker
type Processor struct {
	recipients RecipientRepository
	mailer     Mailer
	logger     *zap.Logger
}

// NewProcessor creates a new task processor
func NewProcessor(recipients RecipientRepository, mailer Mailer, logger *zap.Logger) *Processor {
	return &Processor{
		recipients: recipients,
		mailer:     mailer,
		logger:     logger,
	}
}

// Register registers all task handlers on the mux
func (p *Processor) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeWelcomeEmail, p.HandleWelcomeEmail)
	mux.HandleFunc(TypeEnrollmentEmail, p.HandleEnrollmentEmail)
	mux.HandleFunc(TypeCourseCompletedEmail, p.HandleCourseCompletedEmail)
	mux.HandleFunc(TypeProgressReminderEmail, p.HandleProgressReminderEmail)
}

// HandleWelcomeEmail sends the welcome e-mail of a new principal
func (p *Processor) HandleWelcomeEmail(ctx context.Context, t *asynq.Task) error {
	var payload WelcomePayload
	if err := decodePayload(t, &payload); err != nil {
		return err
	}

	tmpl := welcomeStudentEmail
	if payload.Role == models.RoleEducator {
		tmpl = welcomeEducatorEmail
	}
	return p.send(tmpl, payload.Email, payload, t.Type())
}

// HandleEnrollmentEmail sends the enrollment confirmation
func (p *Processor) HandleEnrollmentEmail(ctx context.Context, t *asynq.Task) error {
	return p.handleEnrollmentTask(ctx, t, enrollmentEmail)
}

// HandleCourseCompletedEmail sends the congratulation e-mail of a finished course
func (p *Processor) HandleCourseCompletedEmail(ctx context.Context, t *asynq.Task) error {
	return p.handleEnrollmentTask(ctx, t, courseCompletedEmail)
}

// HandleProgressReminderEmail reminds a student of a stalled course
func (p *Processor) HandleProgressReminderEmail(ctx context.Context, t *asynq.Task) error {
	var payload ProgressReminderPayload
	if err := decodePayload(t, &payload); err != nil {
		return err
	}
	return p.send(progressReminderEmail, payload.StudentEmail, payload, t.Type())
}

func (p *Processor) handleEnrollmentTask(ctx context.Context, t *asynq.Task, tmpl email) error {
	var payload EnrollmentPayload
	if err := decodePayload(t, &payload); err != nil {
		return err
	}

	recipient, err := p.recipients.GetRecipient(ctx, payload.StudentID, payload.CourseID)
	if err != nil {
		// The student or the course was deleted before the task ran
		if errors.Is(err, apperr.ErrNotFound) {
			p.logger.Info("skipping email for deleted enrollment",
				zap.String("type", t.Type()),
				zap.Int("student_id", payload.StudentID),
				zap.Int("course_id", payload.CourseID),
			)
			return nil
		}
		return fmt.Errorf("failed to resolve recipient: %w", err)
	}

	return p.send(tmpl, recipient.StudentEmail, recipient, t.Type())
}

func (p *Processor) send(tmpl email, to string, data any, taskType string) error {
	body, err := tmpl.render(data)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := p.mailer.Send(to, tmpl.subject, body); err != nil {
		return err
	}

	p.logger.Info("email sent", zap.String("type", taskType), zap.String("to", to))
	return nil
}
