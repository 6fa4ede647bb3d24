package client

import (
	"context"

	"github.com/coursehub/backend/internal/models"
	"github.com/coursehub/backend/internal/progress"
)

// Command is a session mutation that is shown before the server confirms it
//
// Apply changes the cached state tentatively, Execute performs the call and
// Rollback restores what Apply changed.
type Command interface {
	Apply(s *Session)
	Execute(ctx context.Context) error
	Rollback(s *Session)
}

// Confirmer is implemented by commands that reconcile the cache with the server's answer
type Confirmer interface {
	Confirm(s *Session)
}

// Run applies cmd, executes it and either confirms or rolls it back
func (c *Client) Run(ctx context.Context, s *Session, cmd Command) error {
	if s == nil {
		return ErrNoSession
	}

	cmd.Apply(s)
	if err := cmd.Execute(ctx); err != nil {
		cmd.Rollback(s)
		return err
	}
	if confirmer, ok := cmd.(Confirmer); ok {
		confirmer.Confirm(s)
	}
	return nil
}

// MarkLessonCompleteCommand marks one lesson complete with an optimistic dashboard update
type MarkLessonCompleteCommand struct {
	client   *Client
	session  *Session
	courseID int
	lessonID int

	snapshot *models.DashboardItem
	result   *models.ProgressResponse
}

// MarkLessonComplete builds the command for s; run it with Client.Run
func (c *Client) MarkLessonComplete(s *Session, courseID, lessonID int) *MarkLessonCompleteCommand {
	return &MarkLessonCompleteCommand{
		client:   c,
		session:  s,
		courseID: courseID,
		lessonID: lessonID,
	}
}

// Apply adds the lesson to the cached item and recomputes its progress locally
func (m *MarkLessonCompleteCommand) Apply(s *Session) {
	m.snapshot = nil
	s.updateItem(m.courseID, func(item *models.DashboardItem) {
		before := copyItem(*item)
		m.snapshot = &before

		if !containsInt(item.CompletedLessonIDs, m.lessonID) {
			item.CompletedLessonIDs = append(item.CompletedLessonIDs, m.lessonID)
		}
		item.Progress = progress.Calculate(dashboardLessonIDs(item), item.CompletedLessonIDs)
		item.IsCompleted = item.IsCompleted || progress.IsComplete(item.Progress)
	})
}

// Execute sends the completion to the server
func (m *MarkLessonCompleteCommand) Execute(ctx context.Context) error {
	resp, err := m.client.UpdateProgress(ctx, m.session, m.courseID, m.lessonID)
	if err != nil {
		return err
	}
	m.result = resp
	return nil
}

// Rollback restores the cached item as it was before Apply
func (m *MarkLessonCompleteCommand) Rollback(s *Session) {
	if m.snapshot == nil {
		return
	}
	snapshot := *m.snapshot
	s.updateItem(m.courseID, func(item *models.DashboardItem) {
		*item = snapshot
	})
	m.snapshot = nil
}

// Confirm replaces the tentative numbers with the server's
func (m *MarkLessonCompleteCommand) Confirm(s *Session) {
	if m.result == nil {
		return
	}
	s.updateItem(m.courseID, func(item *models.DashboardItem) {
		item.Progress = m.result.Progress
		item.CompletedLessonIDs = append([]int(nil), m.result.CompletedLessons...)
		item.IsCompleted = m.result.IsCompleted
	})
}

// Result returns the server's answer once the command has executed
func (m *MarkLessonCompleteCommand) Result() *models.ProgressResponse {
	return m.result
}

func dashboardLessonIDs(item *models.DashboardItem) []int {
	ids := make([]int, 0)
	for _, module := range item.Modules {
		for _, lesson := range module.Lessons {
			ids = append(ids, lesson.ID)
		}
	}
	return ids
}

func containsInt(values []int, v int) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
