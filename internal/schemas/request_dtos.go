// Package schemas defines the request structures for various operations in the application.
package schemas

// SignupRequest is a struct that represents a registration request
// Username is required and must be less than 30 characters
// Email is required and must be a valid email
// Password is required and kept as typed, its minimum length is checked by the auth service
type SignupRequest struct {
	Username string `json:"username" validate:"required,max=30,username_validation"`
	Email    string `json:"email" validate:"required,max=254,email,email_check"`
	Password string `json:"password" validate:"required,max=72,nomarkup" sanitize:"-"`
}

// EmailRequest is a struct that represents a resend-verification or forgot-password request
type EmailRequest struct {
	Email string `json:"email" validate:"required,max=254,email"`
}

// LoginRequest is a struct that represents a login request
// Identifier is either the username or the email of the user
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=254"`
	Password   string `json:"password" validate:"required,max=72" sanitize:"-"`
}

// ResetPasswordRequest is a struct that represents a password reset request
// NewPassword length is checked by the auth service to report a precise error
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,max=72,nomarkup" sanitize:"-"`
}

// ChangePasswordRequest is a struct that represents a PasswordChange request
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required,max=72" sanitize:"-"`
	NewPassword string `json:"newPassword" validate:"required,max=72,nomarkup" sanitize:"-"`
}

// CreateNoteRequest is a struct that represents a create note request
// Title and Content are required, Tags are optional
type CreateNoteRequest struct {
	Title   string   `json:"title" validate:"required,max=256"`
	Content string   `json:"content" validate:"required,max=10000"`
	Tags    []string `json:"tags" validate:"max=20,dive,required,max=32"`
}

// EditNoteRequest is a struct that represents an edit note request
// Nil fields are left untouched
type EditNoteRequest struct {
	Title   *string  `json:"title" validate:"omitempty,max=256"`
	Content *string  `json:"content" validate:"omitempty,max=10000"`
	Tags    []string `json:"tags" validate:"omitempty,max=20,dive,required,max=32"`
}
