package models

import "time"

// Role mirrors the role strings issued by the upstream login endpoint.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Home returns the SPA landing path for the role. Unknown roles land on the
// login page, matching the original client behaviour.
func (r Role) Home() string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleTeacher:
		return "/teacher/dashboard"
	case RoleStudent:
		return "/student/dashboard"
	default:
		return "/login"
	}
}

// LoginHome returns the landing path handed out right after login. Only
// staff roles are routed to a dashboard here; students and unknown roles go
// back to the login page, which is where the original client sent them. The
// route guard still uses Home for its redirects.
func (r Role) LoginHome() string {
	switch r {
	case RoleAdmin, RoleTeacher:
		return r.Home()
	default:
		return "/login"
	}
}

// Valid reports whether the role is one the gateway routes for.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// User is the profile persisted alongside the upstream token.
type User struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Session couples the upstream bearer token with the authenticated user.
// It is created at login, persisted in the session store, read on every
// guarded request and destroyed at logout.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest is the credential payload forwarded verbatim upstream.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is what the gateway returns to the shell after login.
type LoginResult struct {
	User User   `json:"user"`
	Role Role   `json:"role"`
	Home string `json:"home"`
}
