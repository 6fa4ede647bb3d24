package client

import (
	"sync"

	"github.com/coursehub/backend/internal/models"
)

// Session is the state of one signed-in principal
//
// It is safe for concurrent use. Cached data is never refreshed implicitly;
// call Invalidate or Client.RefreshDashboard.
type Session struct {
	Token       string
	PrincipalID int
	Role        models.Role
	FullName    string

	mu        sync.Mutex
	dashboard []models.DashboardItem
	loaded    bool
}

// NewSession restores a session from a previously issued token
func NewSession(token string, principalID int, role models.Role) *Session {
	return &Session{
		Token:       token,
		PrincipalID: principalID,
		Role:        role,
	}
}

func sessionFromAuth(resp *models.AuthResponse) *Session {
	s := NewSession(resp.Token, resp.ID, resp.Role)
	s.FullName = resp.FullName
	return s
}

// Dashboard returns a copy of the cached dashboard and whether one is loaded
func (s *Session) Dashboard() ([]models.DashboardItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, false
	}
	items := make([]models.DashboardItem, len(s.dashboard))
	for i, item := range s.dashboard {
		items[i] = copyItem(item)
	}
	return items, true
}

// Invalidate drops every cached view
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dashboard = nil
	s.loaded = false
}

func (s *Session) setDashboard(items []models.DashboardItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dashboard = items
	s.loaded = true
}

// updateItem runs fn on the cached item of courseID and reports whether it was found
func (s *Session) updateItem(courseID int, fn func(item *models.DashboardItem)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.dashboard {
		if s.dashboard[i].CourseID == courseID {
			fn(&s.dashboard[i])
			return true
		}
	}
	return false
}

func copyItem(item models.DashboardItem) models.DashboardItem {
	item.CompletedLessonIDs = append([]int(nil), item.CompletedLessonIDs...)
	return item
}
