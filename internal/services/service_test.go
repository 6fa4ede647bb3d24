package services

import (
	"context"
	"sync"

	"github.com/coursehub/backend/internal/models"
)

// mockNotifier is a mock implementation of Notifier that records queued tasks
type mockNotifier struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (m *mockNotifier) record(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
	return m.err
}

func (m *mockNotifier) EnqueueWelcome(ctx context.Context, email, fullName string, role models.Role) error {
	return m.record("welcome:" + string(role) + ":" + email)
}

func (m *mockNotifier) EnqueueEnrollment(ctx context.Context, studentID, courseID int) error {
	return m.record("enrollment")
}

func (m *mockNotifier) EnqueueCourseCompleted(ctx context.Context, studentID, courseID int) error {
	return m.record("course_completed")
}

func (m *mockNotifier) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
