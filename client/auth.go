package client

import (
	"context"
	"net/http"

	"github.com/coursehub/backend/internal/models"
)

// SignupEducator registers an educator and returns the new session
func (c *Client) SignupEducator(ctx context.Context, req *models.EducatorSignupRequest) (*Session, error) {
	return c.authenticate(ctx, "/educator/signup", req)
}

// LoginEducator signs an educator in
func (c *Client) LoginEducator(ctx context.Context, req *models.LoginRequest) (*Session, error) {
	return c.authenticate(ctx, "/educator/login", req)
}

// SignupStudent registers a student and returns the new session
func (c *Client) SignupStudent(ctx context.Context, req *models.StudentSignupRequest) (*Session, error) {
	return c.authenticate(ctx, "/student/signup", req)
}

// LoginStudent signs a student in
func (c *Client) LoginStudent(ctx context.Context, req *models.LoginRequest) (*Session, error) {
	return c.authenticate(ctx, "/student/login", req)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*Session, error) {
	var resp models.AuthResponse
	req := c.request(ctx).SetBody(body).SetResult(&resp)
	if err := c.execute(req, http.MethodPost, path); err != nil {
		return nil, err
	}
	return sessionFromAuth(&resp), nil
}
