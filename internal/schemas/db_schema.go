// Package schemas defines the data structures
package schemas

import (
	"time"

	"github.com/google/uuid"
)

// User represents the data model for a user in the system.
type User struct {
	ID                *uuid.UUID `json:"id"`                // Unique identifier for the user.
	Username          string     `json:"username"`          // Lowercase username of the user.
	Email             string     `json:"email"`             // Lowercase email address of the user.
	Password          string     `json:"-"`                 // Password hash of the user, never serialized.
	IsEmailVerified   bool       `json:"isEmailVerified"`   // Whether the email address was verified.
	VerificationToken *string    `json:"-"`                 // Pending email verification token.
	ResetToken        *string    `json:"-"`                 // Pending password reset token.
	ResetTokenExpires *time.Time `json:"-"`                 // Expiry of the pending password reset token.
	CreatedAt         *time.Time `json:"createdAt"`         // Timestamp when the user was created.
}

// HasPendingReset reports whether a password reset was requested and not yet completed.
func (u *User) HasPendingReset() bool {
	return u.ResetToken != nil && u.ResetTokenExpires != nil
}

// Note represents the data model for a note owned by a single user.
// The id is sent as "_id", the key the web frontend reads.
type Note struct {
	ID        uuid.UUID `json:"_id"`       // Unique identifier for the note.
	OwnerID   string    `json:"ownerId"`   // Username of the owner.
	Title     string    `json:"title"`     // Title of the note.
	Content   string    `json:"content"`   // Text content of the note.
	Tags      []string  `json:"tags"`      // Ordered tags of the note.
	IsPinned  bool      `json:"isPinned"`  // Whether the note is pinned to the top.
	CreatedAt time.Time `json:"createdAt"` // Timestamp when the note was created.
	UpdatedAt time.Time `json:"updatedAt"` // Timestamp of the last modification.
}
