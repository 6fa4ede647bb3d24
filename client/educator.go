package client

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/coursehub/backend/internal/models"
)

func coursePath(courseID int) string {
	return fmt.Sprintf("/educator/courses/%d", courseID)
}

// ListMyCourses lists the courses owned by the signed-in educator
func (c *Client) ListMyCourses(ctx context.Context, s *Session) ([]models.EducatorCourseListItem, error) {
	req, err := c.authorized(ctx, s)
	if err != nil {
		return nil, err
	}
	courses := make([]models.EducatorCourseListItem, 0)
	if err := c.execute(req.SetResult(&courses), http.MethodGet, "/educator/courses"); err != nil {
		return nil, err
	}
	return courses, nil
}

// CreateCourse creates a course owned by the signed-in educator
func (c *Client) CreateCourse(ctx context.Context, s *Session, body *models.CreateCourseRequest) (*models.Course, error) {
	req, err := c.authorized(ctx, s)
	if err != nil {
		return nil, err
	}
	var course models.Course
	if err := c.execute(req.SetBody(body).SetResult(&course), http.MethodPost, "/educator/courses"); err != nil {
		return nil, err
	}
	return &course, nil
}

// GetCourse retrieves an owned course with its modules and lessons
func (c *Client) GetCourse(ctx context.Context, s *Session, courseID int) (*models.Course, error) {
	req, err := c.authorized(ctx, s)
	if err != nil {
		return nil, err
	}
	var course models.Course
	if err := c.execute(req.SetResult(&course), http.MethodGet, coursePath(courseID)); err != nil {
		return nil, err
	}
	return &course, nil
}

// UpdateCourse applies a partial update to an owned course
func (c *Client) UpdateCourse(ctx context.Context, s *Session, courseID int, body *models.UpdateCourseRequest) error {
	req, err := c.authorized(ctx, s)
	if err != nil {
		return err
	}
	return c.execute(req.SetBody(body).SetResult(&messageResponse{}), http.MethodPatch, coursePath(courseID))
}

// DeleteCourse deletes an owned course
func (c *Client) DeleteCourse(ctx context.Context, s *Session, courseID int) error {
	req, err := c.authorized(ctx, s)
	if err != nil {
		return err
	}
	return c.execute(req, http.MethodDelete, coursePath(courseID))
}

// AddModule appends a module to an owned course
func (c *Client) AddModule(ctx context.Context, s *Session, courseID int, input models.ModuleInput) (*models.Module, error) {
	req, err := c.authorized(ctx, s)
	if err != nil {
		return nil, err
	}
	var module models.Module
	if err := c.execute(req.SetBody(input).SetResult(&module), http.MethodPost, coursePath(courseID)+"/modules"); err != nil {
		return nil, err
	}
	return &module, nil
}

// DeleteModule removes a module and its lessons from an owned course
func (c *Client) DeleteModule(ctx context.Context, s *Session, courseID, moduleID int) error {
	req, err := c.authorized(ctx, s)
	if err != nil {
		return err
	}
	return c.execute(req, http.MethodDelete, fmt.Sprintf("%s/modules/%d", coursePath(courseID), moduleID))
}

// AddLesson appends a lesson to a module of an owned course
func (c *Client) AddLesson(ctx context.Context, s *Session, courseID, moduleID int, input models.LessonInput) (*models.Lesson, error) {
	req, err := c.authorized(ctx, s)
	if err != nil {
		return nil, err
	}
	var lesson models.Lesson
	path := fmt.Sprintf("%s/modules/%d/lessons", coursePath(courseID), moduleID)
	if err := c.execute(req.SetBody(input).SetResult(&lesson), http.MethodPost, path); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// DeleteLesson removes a lesson from an owned course
func (c *Client) DeleteLesson(ctx context.Context, s *Session, courseID, lessonID int) error {
	req, err := c.authorized(ctx, s)
	if err != nil {
		return err
	}
	return c.execute(req, http.MethodDelete, fmt.Sprintf("%s/lessons/%d", coursePath(courseID), lessonID))
}

// Upload streams a media file and returns where it is served from
func (c *Client) Upload(ctx context.Context, s *Session, filename string, file io.Reader) (*models.UploadResponse, error) {
	req, err := c.authorized(ctx, s)
	if err != nil {
		return nil, err
	}
	var resp models.UploadResponse
	req = req.SetFileReader("file", filename, file).SetResult(&resp)
	if err := c.execute(req, http.MethodPost, "/educator/upload"); err != nil {
		return nil, err
	}
	return &resp, nil
}
