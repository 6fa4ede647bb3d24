package models

import "time"

// Educator is a principal who authors and owns courses
type Educator struct {
	ID             int       `json:"id"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Specialization string    `json:"specialization"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"createdAt"`
}

// EducatorSignupRequest represents an educator registration request
type EducatorSignupRequest struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Specialization string `json:"specialization"`
}

// LoginRequest represents a login request of either principal type
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	Token     string `json:"token"`
	ID        int    `json:"id"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	ExpiresIn int64  `json:"expiresIn"`
}
