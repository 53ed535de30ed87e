// Copyright (c) 2026 SafeMine. All rights reserved.

/*
Package auth implements the account and session-lifecycle layer.

It defines the core domain entity (User) and the logic for registration,
credential verification, token issuance, and profile maintenance.

# Architecture

This layer is the "Truth" of the system. The entity defined here has no
transport dependencies and encapsulates all business rules related to
operator identity on the dashboard.
*/
package auth

import (
	"time"

	"github.com/safemine/api/internal/platform/sec"
)

// # Domain Entities

// User represents a registered dashboard operator.
//
// The JSON projection of this struct IS the sanitized user: the password
// hash and the refresh-token slot are excluded at the type level, so no
// handler can leak them by accident.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Mobile       string    `json:"mobile"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	RefreshToken string    `json:"-"` // Single session slot. Overwritten on login, cleared on logout.
	AvatarURL    string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity converts the entity into the context-safe view the middleware
// attaches to authenticated requests.
func (user *User) Identity() *sec.Identity {
	return &sec.Identity{
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Mobile:    user.Mobile,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
	}
}

// # Field Identifiers

// Field names for validation and identity mapping in the account domain.
const (
	FieldFirstName    = "firstName"
	FieldLastName     = "lastName"
	FieldMobile       = "mobile"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldAvatar       = "avatar"
	FieldAccessToken  = "accessToken"
	FieldRefreshToken = "refreshToken"
	FieldUser         = "user"
)
