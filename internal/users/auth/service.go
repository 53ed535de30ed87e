// Copyright (c) 2026 SafeMine. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/safemine/api/internal/platform/apperr"
	"github.com/safemine/api/internal/platform/sec"
	"github.com/safemine/api/pkg/uuidv7"
)

// # Contracts & Types

// TokenProvider defines the contract for issuing and checking session tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed short-lived JWT for the given user.
	GenerateAccessToken(userID string, timeToLive time.Duration) (string, error)

	// GenerateRefreshToken creates a signed long-lived JWT for the given user.
	GenerateRefreshToken(userID string, timeToLive time.Duration) (string, error)

	// VerifyRefreshToken checks signature, validity window, and token use.
	VerifyRefreshToken(tokenString string) (*sec.AuthClaims, error)
}

// AvatarStorage defines the contract for persisting profile pictures.
type AvatarStorage interface {
	// Save stores the avatar bytes and returns the public URL.
	Save(objectName string, reader io.Reader) (string, error)

	// Remove deletes the object behind an avatar URL. Missing objects are
	// not an error.
	Remove(avatarURL string) error
}

// Service implements the account and session-lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, login, or
// token handling must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	tokenProvider  TokenProvider
	avatarStorage  AvatarStorage
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(userRepo UserRepository, tokenProv TokenProvider, avatarStore AvatarStorage) *Service {
	return &Service{
		userRepository: userRepo,
		tokenProvider:  tokenProv,
		avatarStorage:  avatarStore,
	}
}

// Session represents a successfully established operator session.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *User
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new operator.
type RegisterInput struct {
	FirstName string
	LastName  string
	Mobile    string
	Email     string
	Password  string
}

/*
Register validates, hashes, and persists a brand new operator account.

Description: Checks both unique identifiers (email and mobile) in a single
lookup, hashes the password, and persists the account.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity, credentials excluded by projection
  - error: Conflict (if either identifier exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Verify identifier uniqueness. Return a client-safe Conflict error.
	_, err := service.userRepository.FindByEmailOrMobile(context, input.Email, input.Mobile)
	if err == nil {
		return nil, apperr.Conflict("User with this email or mobile already exists")
	}
	if !apperr.IsNotFound(err) {
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}

	// Prevent storing plain-text passwords. Default cost balances security
	// against CPU use during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuidv7.New(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Mobile:       input.Mobile,
		Email:        input.Email,
		PasswordHash: hashedPassword,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

/*
Login validates operator credentials and issues a fresh token pair.

Description: Looks up the account by email, performs constant-time password
comparison, and persists the new refresh token in the account's single
session slot.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *Session: Transport-ready session tokens plus the sanitized user
  - error: BadRequest (unknown email), Unauthorized (wrong password), or
    internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*Session, error) {

	user, err := service.userRepository.FindByEmail(context, input.Email)
	if apperr.IsNotFound(err) {
		// The dashboard's login form tells operators to register first, so
		// an unknown email is a client error, not an authentication one.
		return nil, apperr.BadRequest("User does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	// Constant-time comparison in bcrypt prevents timing attacks.
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	return service.issueSession(context, user)
}

/*
Logout terminates the operator's session.

Description: Clears the refresh-token slot so the refresh token can never be
used again. Already-issued access tokens remain valid until natural expiry;
there is no server-side revocation list.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Persistence failures
*/
func (service *Service) Logout(context context.Context, userID string) error {

	if err := service.userRepository.UpdateRefreshToken(context, userID, ""); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// # Session Management

/*
Refresh implements refresh token rotation.

Description: Verifies the presented refresh JWT, compares it byte-for-byte
with the stored slot so a rotated-out token fails closed, then issues and
persists a fresh pair.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *Session: New session credentials
  - error: Unauthorized or storage failures
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (*Session, error) {

	claims, err := service.tokenProvider.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	user, err := service.userRepository.FindByID(context, claims.UserID)
	if apperr.IsNotFound(err) {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_lookup_failed: %w", err)
	}

	// The slot holds at most one live refresh token. A verified token that
	// no longer matches was rotated out (or cleared by logout) and must be
	// rejected.
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return nil, apperr.Unauthorized("Refresh token is expired or already used")
	}

	return service.issueSession(context, user)
}

// issueSession generates a token pair and persists the refresh token in the
// account's session slot. Concurrent logins race on the single-row UPDATE;
// last write wins and earlier refresh tokens die with the overwrite.
func (service *Service) issueSession(context context.Context, user *User) (*Session, error) {

	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.tokenProvider.GenerateRefreshToken(user.ID, RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	if err := service.userRepository.UpdateRefreshToken(context, user.ID, refreshToken); err != nil {
		return nil, fmt.Errorf("auth_service_session_persist_failed: %w", err)
	}
	user.RefreshToken = refreshToken

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// # Password Recovery

/*
ResetPassword overwrites the password for the account matching the email.

Description: The email match is case-insensitive and exact. The refresh-token
slot is left untouched, so an operator who resets a forgotten password while
still logged in on another device keeps that session.

Parameters:
  - context: context.Context
  - email: string
  - newPassword: string

Returns:
  - error: NotFound (unknown email) or update failures
*/
func (service *Service) ResetPassword(context context.Context, email, newPassword string) error {

	user, err := service.userRepository.FindByEmailFold(context, email)
	if apperr.IsNotFound(err) {
		return apperr.NotFound("User with this email does not exist")
	}
	if err != nil {
		return fmt.Errorf("auth_service_reset_lookup_failed: %w", err)
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, user.ID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_update_failed: %w", err)
	}

	return nil
}

// # Profile Maintenance

// UpdateProfileInput holds the replacement values for the mutable profile fields.
type UpdateProfileInput struct {
	UserID    string
	FirstName string
	LastName  string
	Mobile    string
}

/*
UpdateAccountDetails replaces the operator's profile fields.

Parameters:
  - context: context.Context
  - input: UpdateProfileInput

Returns:
  - *User: Updated sanitized entity
  - error: NotFound or persistence failures
*/
func (service *Service) UpdateAccountDetails(context context.Context, input UpdateProfileInput) (*User, error) {

	user, err := service.userRepository.FindByID(context, input.UserID)
	if err != nil {
		return nil, err
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Mobile = input.Mobile

	if err := service.userRepository.UpdateProfile(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_update_profile_failed: %w", err)
	}

	return user, nil
}

/*
UploadAvatar stores a new profile picture and attaches it to the account.

Description: The object name is a fresh UUIDv7 plus the original extension,
so uploads never collide and never trust client-supplied paths. A previously
attached avatar is removed from storage best-effort after the swap.

Parameters:
  - context: context.Context
  - userID: string
  - filename: string
  - file: io.Reader

Returns:
  - *User: Updated sanitized entity
  - error: NotFound, storage, or persistence failures
*/
func (service *Service) UploadAvatar(context context.Context, userID, filename string, file io.Reader) (*User, error) {

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	objectName := uuidv7.New() + strings.ToLower(filepath.Ext(filename))
	avatarURL, err := service.avatarStorage.Save(objectName, file)
	if err != nil {
		return nil, fmt.Errorf("auth_service_avatar_store_failed: %w", err)
	}

	previousURL := user.AvatarURL
	if err := service.userRepository.UpdateAvatar(context, userID, avatarURL); err != nil {
		return nil, fmt.Errorf("auth_service_avatar_update_failed: %w", err)
	}
	user.AvatarURL = avatarURL

	// The old object is orphaned once the row points elsewhere. Removal is
	// best-effort; a leftover file costs disk, not correctness.
	if previousURL != "" {
		_ = service.avatarStorage.Remove(previousURL)
	}

	return user, nil
}

/*
DeleteAvatar detaches the operator's profile picture.

Description: Idempotent. An account without an avatar returns successfully
unchanged. File removal is best-effort and never fails the operation.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *User: Updated sanitized entity
  - error: NotFound or persistence failures
*/
func (service *Service) DeleteAvatar(context context.Context, userID string) (*User, error) {

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	if user.AvatarURL == "" {
		return user, nil
	}

	previousURL := user.AvatarURL
	if err := service.userRepository.UpdateAvatar(context, userID, ""); err != nil {
		return nil, fmt.Errorf("auth_service_avatar_detach_failed: %w", err)
	}
	user.AvatarURL = ""

	_ = service.avatarStorage.Remove(previousURL)

	return user, nil
}

// # Identity Resolution

/*
ResolveUser loads the sanitized identity behind a verified token subject.

Description: Implements the middleware's UserResolver contract. A vanished
account yields (nil, nil) so the gate rejects the token without treating it
as a server failure.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *sec.Identity: Context-safe identity, nil if the account is gone
  - error: Database retrieval failures
*/
func (service *Service) ResolveUser(context context.Context, userID string) (*sec.Identity, error) {

	user, err := service.userRepository.FindByID(context, userID)
	if apperr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_resolve_failed: %w", err)
	}

	return user.Identity(), nil
}
