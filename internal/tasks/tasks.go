// Package tasks defines the background e-mail tasks exchanged through asynq.
package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/coursehub/backend/internal/models"
	"github.com/hibiken/asynq"
)

// Task types
const (
	TypeWelcomeEmail          = "email:welcome"
	TypeEnrollmentEmail       = "email:enrollment"
	TypeCourseCompletedEmail  = "email:course_completed"
	TypeProgressReminderEmail = "email:progress_reminder"
)

// Queue names
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// Queues returns the queue priorities used by the worker
func Queues() map[string]int {
	return map[string]int{
		QueueCritical: 6,
		QueueDefault:  3,
		QueueLow:      1,
	}
}

// WelcomePayload addresses the welcome e-mail of a new principal
type WelcomePayload struct {
	Email    string      `json:"email"`
	FullName string      `json:"fullName"`
	Role     models.Role `json:"role"`
}

// EnrollmentPayload identifies an enrollment; the worker resolves names itself
type EnrollmentPayload struct {
	StudentID int `json:"studentId"`
	CourseID  int `json:"courseId"`
}

// ProgressReminderPayload carries everything the reminder e-mail needs
type ProgressReminderPayload struct {
	EnrollmentID int    `json:"enrollmentId"`
	StudentName  string `json:"studentName"`
	StudentEmail string `json:"studentEmail"`
	CourseTitle  string `json:"courseTitle"`
	Progress     int    `json:"progress"`
}

func newTask(taskType string, payload any) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", taskType, err)
	}
	return asynq.NewTask(taskType, data), nil
}

// decodePayload unmarshals a task payload; a broken payload is never retried
func decodePayload(t *asynq.Task, dst any) error {
	if err := json.Unmarshal(t.Payload(), dst); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return nil
}
