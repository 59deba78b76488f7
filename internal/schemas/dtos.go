package schemas

import "github.com/google/uuid"

// ErrorDTO is a struct that represents an error response
// Message is the client-facing message, Code the stable error code
type ErrorDTO struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// MessageDTO is a struct that represents a plain message response
type MessageDTO struct {
	Message string `json:"message"`
}

// UserDTO is a struct that represents a user response, it never carries the password
type UserDTO struct {
	ID              *uuid.UUID `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	CreatedAt       string     `json:"createdAt"`
}

// TokenDTO is a struct that represents a login response
// AccessToken is the session JWT used as bearer credential
type TokenDTO struct {
	AccessToken string `json:"accessToken"`
}

// MetadataDTO is a struct that represents the API metadata response
type MetadataDTO struct {
	ApiVersion string `json:"apiVersion"`
	ApiName    string `json:"apiName"`
}
