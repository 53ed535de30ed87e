// Copyright (c) 2026 SafeMine. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safemine/api/internal/platform/apperr"
	"github.com/safemine/api/internal/platform/sec"
)

// # Test Fakes

// fakeUserRepository is an in-memory UserRepository.
type fakeUserRepository struct {
	users map[string]*User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[string]*User{}}
}

func (r *fakeUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	if user, ok := r.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User not found")
}

func (r *fakeUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User not found with this email")
}

func (r *fakeUserRepository) FindByEmailFold(_ context.Context, email string) (*User, error) {
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User not found with this email")
}

func (r *fakeUserRepository) FindByEmailOrMobile(_ context.Context, email, mobile string) (*User, error) {
	for _, user := range r.users {
		if user.Email == email || user.Mobile == mobile {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User not found with this email or mobile")
}

func (r *fakeUserRepository) Create(_ context.Context, user *User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepository) UpdateProfile(_ context.Context, user *User) error {
	stored, ok := r.users[user.ID]
	if !ok {
		return apperr.NotFound("User not found")
	}
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.Mobile = user.Mobile
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *fakeUserRepository) UpdatePassword(_ context.Context, userID, newHash string) error {
	stored, ok := r.users[userID]
	if !ok {
		return apperr.NotFound("User not found")
	}
	stored.PasswordHash = newHash
	return nil
}

func (r *fakeUserRepository) UpdateRefreshToken(_ context.Context, userID, refreshToken string) error {
	stored, ok := r.users[userID]
	if !ok {
		return apperr.NotFound("User not found")
	}
	stored.RefreshToken = refreshToken
	return nil
}

func (r *fakeUserRepository) UpdateAvatar(_ context.Context, userID, avatarURL string) error {
	stored, ok := r.users[userID]
	if !ok {
		return apperr.NotFound("User not found")
	}
	stored.AvatarURL = avatarURL
	return nil
}

// fakeTokenProvider issues deterministic tokens and remembers which refresh
// tokens it signed, mimicking JWT signature verification.
type fakeTokenProvider struct {
	sequence int
	issued   map[string]string // refresh token -> user ID
}

func newFakeTokenProvider() *fakeTokenProvider {
	return &fakeTokenProvider{issued: map[string]string{}}
}

func (p *fakeTokenProvider) GenerateAccessToken(userID string, _ time.Duration) (string, error) {
	p.sequence++
	return fmt.Sprintf("access-%s-%d", userID, p.sequence), nil
}

func (p *fakeTokenProvider) GenerateRefreshToken(userID string, _ time.Duration) (string, error) {
	p.sequence++
	token := fmt.Sprintf("refresh-%s-%d", userID, p.sequence)
	p.issued[token] = userID
	return token, nil
}

func (p *fakeTokenProvider) VerifyRefreshToken(tokenString string) (*sec.AuthClaims, error) {
	userID, ok := p.issued[tokenString]
	if !ok {
		return nil, fmt.Errorf("fake: invalid token")
	}
	return &sec.AuthClaims{UserID: userID, Use: sec.TokenUseRefresh}, nil
}

// fakeAvatarStorage records saves and removals in memory.
type fakeAvatarStorage struct {
	objects map[string]bool
	removed []string
}

func newFakeAvatarStorage() *fakeAvatarStorage {
	return &fakeAvatarStorage{objects: map[string]bool{}}
}

func (s *fakeAvatarStorage) Save(objectName string, _ io.Reader) (string, error) {
	s.objects[objectName] = true
	return "/avatars/" + objectName, nil
}

func (s *fakeAvatarStorage) Remove(avatarURL string) error {
	s.removed = append(s.removed, avatarURL)
	return nil
}

// # Harness

type serviceHarness struct {
	service *Service
	users   *fakeUserRepository
	tokens  *fakeTokenProvider
	avatars *fakeAvatarStorage
}

func newServiceHarness() *serviceHarness {
	users := newFakeUserRepository()
	tokens := newFakeTokenProvider()
	avatars := newFakeAvatarStorage()
	return &serviceHarness{
		service: NewService(users, tokens, avatars),
		users:   users,
		tokens:  tokens,
		avatars: avatars,
	}
}

func (h *serviceHarness) register(t *testing.T, email, mobile, password string) *User {
	t.Helper()
	user, err := h.service.Register(context.Background(), RegisterInput{
		FirstName: "Dana",
		LastName:  "Kovac",
		Mobile:    mobile,
		Email:     email,
		Password:  password,
	})
	require.NoError(t, err)
	return user
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError, "expected an AppError, got %v", err)
	return appError.HTTPStatus
}

// # Registration

func TestService_Register(t *testing.T) {
	h := newServiceHarness()

	user := h.register(t, "dana@mine.example", "0712345678", "super-secret")

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "dana@mine.example", user.Email)
	assert.NotEqual(t, "super-secret", user.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("super-secret", user.PasswordHash))
}

func TestService_Register_DuplicateIdentifiers(t *testing.T) {
	h := newServiceHarness()
	h.register(t, "dana@mine.example", "0712345678", "super-secret")

	// Same email, different mobile
	_, err := h.service.Register(context.Background(), RegisterInput{
		FirstName: "Eli", LastName: "Novak", Mobile: "0799999999",
		Email: "dana@mine.example", Password: "another-secret",
	})
	assert.Equal(t, 409, statusOf(t, err))

	// Same mobile, different email
	_, err = h.service.Register(context.Background(), RegisterInput{
		FirstName: "Eli", LastName: "Novak", Mobile: "0712345678",
		Email: "eli@mine.example", Password: "another-secret",
	})
	assert.Equal(t, 409, statusOf(t, err))
}

// # Login & Logout

func TestService_Login(t *testing.T) {
	h := newServiceHarness()
	registered := h.register(t, "dana@mine.example", "0712345678", "super-secret")

	session, err := h.service.Login(context.Background(), LoginInput{
		Email: "dana@mine.example", Password: "super-secret",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, registered.ID, session.User.ID)

	// The refresh token must land in the account's session slot
	stored := h.users.users[registered.ID]
	assert.Equal(t, session.RefreshToken, stored.RefreshToken)
}

func TestService_Login_UnknownEmail(t *testing.T) {
	h := newServiceHarness()

	_, err := h.service.Login(context.Background(), LoginInput{
		Email: "ghost@mine.example", Password: "whatever",
	})

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 400, appError.HTTPStatus)
	assert.Equal(t, "User does not exist", appError.Message)
}

func TestService_Login_WrongPassword(t *testing.T) {
	h := newServiceHarness()
	h.register(t, "dana@mine.example", "0712345678", "super-secret")

	_, err := h.service.Login(context.Background(), LoginInput{
		Email: "dana@mine.example", Password: "not-the-password",
	})

	assert.Equal(t, 401, statusOf(t, err))
}

func TestService_Login_SecondLoginInvalidatesFirstRefreshToken(t *testing.T) {
	h := newServiceHarness()
	h.register(t, "dana@mine.example", "0712345678", "super-secret")

	first, err := h.service.Login(context.Background(), LoginInput{
		Email: "dana@mine.example", Password: "super-secret",
	})
	require.NoError(t, err)

	_, err = h.service.Login(context.Background(), LoginInput{
		Email: "dana@mine.example", Password: "super-secret",
	})
	require.NoError(t, err)

	// The slot holds only the second token now; the first fails closed.
	_, err = h.service.Refresh(context.Background(), first.RefreshToken)
	assert.Equal(t, 401, statusOf(t, err))
}

func TestService_Logout(t *testing.T) {
	h := newServiceHarness()
	user := h.register(t, "dana@mine.example", "0712345678", "super-secret")

	session, err := h.service.Login(context.Background(), LoginInput{
		Email: "dana@mine.example", Password: "super-secret",
	})
	require.NoError(t, err)

	require.NoError(t, h.service.Logout(context.Background(), user.ID))
	assert.Empty(t, h.users.users[user.ID].RefreshToken)

	// The cleared refresh token can never be used again
	_, err = h.service.Refresh(context.Background(), session.RefreshToken)
	assert.Equal(t, 401, statusOf(t, err))
}

// # Refresh Rotation

func TestService_Refresh_Rotation(t *testing.T) {
	h := newServiceHarness()
	user := h.register(t, "dana@mine.example", "0712345678", "super-secret")

	first, err := h.service.Login(context.Background(), LoginInput{
		Email: "dana@mine.example", Password: "super-secret",
	})
	require.NoError(t, err)

	rotated, err := h.service.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)

	assert.NotEqual(t, first.RefreshToken, rotated.RefreshToken)
	assert.NotEqual(t, first.AccessToken, rotated.AccessToken)
	assert.Equal(t, rotated.RefreshToken, h.users.users[user.ID].RefreshToken)

	// Replaying the rotated-out token fails closed
	_, err = h.service.Refresh(context.Background(), first.RefreshToken)
	assert.Equal(t, 401, statusOf(t, err))
}

func TestService_Refresh_GarbageToken(t *testing.T) {
	h := newServiceHarness()

	_, err := h.service.Refresh(context.Background(), "not-a-token")
	assert.Equal(t, 401, statusOf(t, err))
}

// # Password Recovery

func TestService_ResetPassword_CaseInsensitiveEmail(t *testing.T) {
	h := newServiceHarness()
	user := h.register(t, "Dana@Mine.example", "0712345678", "super-secret")

	session, err := h.service.Login(context.Background(), LoginInput{
		Email: "Dana@Mine.example", Password: "super-secret",
	})
	require.NoError(t, err)

	require.NoError(t, h.service.ResetPassword(context.Background(), "dana@mine.EXAMPLE", "fresh-password"))

	stored := h.users.users[user.ID]
	assert.True(t, sec.CheckPasswordHash("fresh-password", stored.PasswordHash))
	assert.False(t, sec.CheckPasswordHash("super-secret", stored.PasswordHash))

	// The session slot survives a password reset; the refresh token still works.
	_, err = h.service.Refresh(context.Background(), session.RefreshToken)
	assert.NoError(t, err)
}

func TestService_ResetPassword_UnknownEmail(t *testing.T) {
	h := newServiceHarness()

	err := h.service.ResetPassword(context.Background(), "ghost@mine.example", "fresh-password")
	assert.Equal(t, 404, statusOf(t, err))
}

// # Profile Maintenance

func TestService_UpdateAccountDetails(t *testing.T) {
	h := newServiceHarness()
	user := h.register(t, "dana@mine.example", "0712345678", "super-secret")

	updated, err := h.service.UpdateAccountDetails(context.Background(), UpdateProfileInput{
		UserID: user.ID, FirstName: "Daniela", LastName: "Kovacova", Mobile: "0787654321",
	})
	require.NoError(t, err)

	assert.Equal(t, "Daniela", updated.FirstName)
	assert.Equal(t, "Kovacova", updated.LastName)
	assert.Equal(t, "0787654321", updated.Mobile)
	assert.Equal(t, "0787654321", h.users.users[user.ID].Mobile)
}

func TestService_UploadAvatar(t *testing.T) {
	h := newServiceHarness()
	user := h.register(t, "dana@mine.example", "0712345678", "super-secret")

	updated, err := h.service.UploadAvatar(context.Background(), user.ID, "selfie.PNG", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(updated.AvatarURL, "/avatars/"))
	assert.True(t, strings.HasSuffix(updated.AvatarURL, ".png"))

	// A second upload swaps the object and removes the first one
	firstURL := updated.AvatarURL
	updated, err = h.service.UploadAvatar(context.Background(), user.ID, "other.jpg", strings.NewReader("jpg-bytes"))
	require.NoError(t, err)
	assert.NotEqual(t, firstURL, updated.AvatarURL)
	assert.Contains(t, h.avatars.removed, firstURL)
}

func TestService_DeleteAvatar_Idempotent(t *testing.T) {
	h := newServiceHarness()
	user := h.register(t, "dana@mine.example", "0712345678", "super-secret")

	// Deleting an absent avatar succeeds and changes nothing
	updated, err := h.service.DeleteAvatar(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.AvatarURL)
	assert.Empty(t, h.avatars.removed)

	_, err = h.service.UploadAvatar(context.Background(), user.ID, "selfie.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	updated, err = h.service.DeleteAvatar(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.AvatarURL)
	assert.Empty(t, h.users.users[user.ID].AvatarURL)
	assert.Len(t, h.avatars.removed, 1)

	// Second delete is still a success
	_, err = h.service.DeleteAvatar(context.Background(), user.ID)
	assert.NoError(t, err)
}

func TestService_DeleteAvatar_UnknownUser(t *testing.T) {
	h := newServiceHarness()

	_, err := h.service.DeleteAvatar(context.Background(), "ghost-id")
	assert.Equal(t, 404, statusOf(t, err))
}

// # Identity Resolution

func TestService_ResolveUser(t *testing.T) {
	h := newServiceHarness()
	user := h.register(t, "dana@mine.example", "0712345678", "super-secret")

	identity, err := h.service.ResolveUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, "dana@mine.example", identity.Email)

	// A vanished account resolves to nil without an error
	identity, err = h.service.ResolveUser(context.Background(), "ghost-id")
	require.NoError(t, err)
	assert.Nil(t, identity)
}
