// Copyright (c) 2026 SafeMine. All rights reserved.

package auth

import "time"

// # Session Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	// Kept short (15m) to bound the damage window of a leaked token, since
	// there is no server-side revocation list.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the duration a refresh token remains valid.
	// Long-lived (7 days) so operators are not forced to log in every shift.
	RefreshTokenTTL = 7 * 24 * time.Hour

	// MaxAvatarSizeBytes caps avatar uploads. The handler wraps the request
	// body in an http.MaxBytesReader with this limit, so oversized bodies
	// fail during multipart parsing and never reach storage.
	MaxAvatarSizeBytes = 5 << 20
)
