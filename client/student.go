package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coursehub/backend/internal/models"
	"github.com/coursehub/backend/libs/apperr"
)

// BrowseCourses lists the full catalog
func (c *Client) BrowseCourses(ctx context.Context, s *Session) ([]models.CatalogCourse, error) {
	req, err := c.authorized(ctx, s)
	if err != nil {
		return nil, err
	}
	courses := make([]models.CatalogCourse, 0)
	if err := c.execute(req.SetResult(&courses), http.MethodGet, "/student/courses"); err != nil {
		return nil, err
	}
	return courses, nil
}

// GetEnrollment retrieves the signed-in student's enrollment in a course
func (c *Client) GetEnrollment(ctx context.Context, s *Session, courseID int) (*models.Enrollment, error) {
	req, err := c.authorized(ctx, s)
	if err != nil {
		return nil, err
	}
	var enrollment models.Enrollment
	path := fmt.Sprintf("/student/courses/%d/enrollment", courseID)
	if err := c.execute(req.SetResult(&enrollment), http.MethodGet, path); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

type enrollResponse struct {
	Message    string             `json:"message"`
	Enrollment *models.Enrollment `json:"enrollment"`
}

// EnrollmentState reports where the signed-in student stands with a course
//
// A missing enrollment is not an error here; it maps to not_enrolled.
func (c *Client) EnrollmentState(ctx context.Context, s *Session, courseID int) (models.EnrollmentState, error) {
	enrollment, err := c.GetEnrollment(ctx, s, courseID)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.EnrollmentStateNotEnrolled, nil
	}
	if err != nil {
		return "", err
	}
	return enrollment.State(), nil
}

// Enroll enrolls the signed-in student in a course
//
// The cached dashboard no longer lists every course afterwards, so it is invalidated.
func (c *Client) Enroll(ctx context.Context, s *Session, courseID int) (*models.Enrollment, error) {
	req, err := c.authorized(ctx, s)
	if err != nil {
		return nil, err
	}
	var resp enrollResponse
	if err := c.execute(req.SetResult(&resp), http.MethodPost, fmt.Sprintf("/student/enroll/%d", courseID)); err != nil {
		return nil, err
	}
	s.Invalidate()
	return resp.Enrollment, nil
}

// UpdateProgress marks a lesson complete and returns the recomputed progress
func (c *Client) UpdateProgress(ctx context.Context, s *Session, courseID, lessonID int) (*models.ProgressResponse, error) {
	req, err := c.authorized(ctx, s)
	if err != nil {
		return nil, err
	}
	var resp models.ProgressResponse
	body := models.UpdateProgressRequest{CourseID: courseID, LessonID: lessonID}
	if err := c.execute(req.SetBody(body).SetResult(&resp), http.MethodPut, "/student/progress"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RefreshDashboard re-fetches the dashboard and caches it on the session
func (c *Client) RefreshDashboard(ctx context.Context, s *Session) ([]models.DashboardItem, error) {
	req, err := c.authorized(ctx, s)
	if err != nil {
		return nil, err
	}
	items := make([]models.DashboardItem, 0)
	if err := c.execute(req.SetResult(&items), http.MethodGet, "/student/dashboard"); err != nil {
		return nil, err
	}
	s.setDashboard(items)
	dashboard, _ := s.Dashboard()
	return dashboard, nil
}
