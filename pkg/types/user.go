package types

import (
	"strings"
	"time"
)

// Role represents the kind of account a principal signed in with
type Role string

const (
	RoleUser    Role = "user"
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RolePatient, RoleDoctor:
		return true
	}
	return false
}

// User represents an email account holding the user or patient role
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Username     string    `json:"username,omitempty" db:"username"`
	FirstName    string    `json:"first_name,omitempty" db:"first_name"`
	LastName     string    `json:"last_name,omitempty" db:"last_name"`
	Phone        string    `json:"phone,omitempty" db:"phone"`
	Role         Role      `json:"role" db:"role"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayName returns "First Last" when known, else the username, else the email
func (u *User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// Doctor represents a provisioned clinician account
type Doctor struct {
	ID             string    `json:"id" db:"id"`
	DoctorID       string    `json:"doctor_id" db:"doctor_id"`
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email" db:"email"`
	Specialization string    `json:"specialization" db:"specialization"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Principal is the signed-in identity regardless of account kind
type Principal struct {
	ID             string `json:"id"`
	Role           Role   `json:"role"`
	Email          string `json:"email,omitempty"`
	Username       string `json:"username,omitempty"`
	DisplayName    string `json:"display_name"`
	DoctorID       string `json:"doctor_id,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}

// Session represents a live sign-in
type Session struct {
	ID        string    `json:"id"`
	Principal Principal `json:"principal"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthResult is returned by every successful sign-in
type AuthResult struct {
	Token     string   `json:"token"`
	TokenType string   `json:"token_type"`
	ExpiresIn int64    `json:"expires_in"`
	Session   *Session `json:"session"`
	Redirect  string   `json:"redirect"`
}

// SignUpRequest represents an email account registration
type SignUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      Role   `json:"role"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// SignInRequest represents an email sign-in
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DoctorSignInRequest represents a doctor identifier sign-in
type DoctorSignInRequest struct {
	DoctorID string `json:"doctor_id"`
	Password string `json:"password"`
}

// Profile is the account view returned for the signed-in principal
type Profile struct {
	Principal
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileUpdates holds the editable account fields
type ProfileUpdates struct {
	Username  *string `json:"username,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// Empty reports whether no field is set
func (u *ProfileUpdates) Empty() bool {
	return u.Username == nil && u.FirstName == nil && u.LastName == nil && u.Phone == nil
}

// NavItem is a header link shown to a role
type NavItem struct {
	To    string `json:"to"`
	Label string `json:"label"`
}

// RouteDecision is the outcome of guarding a client route
type RouteDecision struct {
	Path     string `json:"path"`
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// SessionView is returned by the session endpoint
type SessionView struct {
	Session    *Session  `json:"session"`
	Dashboard  string    `json:"dashboard"`
	Navigation []NavItem `json:"navigation"`
}
