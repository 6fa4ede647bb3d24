package models

// Role is the role tag carried by a principal and its access token
type Role string

const (
	RoleEducator Role = "educator"
	RoleStudent  Role = "student"
)
