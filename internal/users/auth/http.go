// Copyright (c) 2026 SafeMine. All rights reserved.

package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/safemine/api/internal/platform/apperr"
	"github.com/safemine/api/internal/platform/constants"
	"github.com/safemine/api/internal/platform/middleware"
	requestutil "github.com/safemine/api/internal/platform/request"
	"github.com/safemine/api/internal/platform/respond"
	"github.com/safemine/api/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the account-lifecycle HTTP endpoints.
//
// The handler is a thin mediation layer between the web and the domain
// service: status codes, cookies, and JSON in; [Service] calls out.
type Handler struct {
	accountService *Service
	authenticate   func(http.Handler) http.Handler
}

// NewHandler constructs a new [Handler] with its service dependency and the
// access-token gate built by [middleware.Authenticate].
func NewHandler(service *Service, authenticate func(http.Handler) http.Handler) *Handler {
	return &Handler{accountService: service, authenticate: authenticate}
}

// Routes returns a [chi.Router] configured with the account routes.
// The server mounts it under /api/v1/users.
//
// The gate runs only on the protected group. Login, refresh, and the other
// public endpoints must stay reachable with a stale access cookie, since that
// is exactly the state a client re-authenticates out of.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh-token", handler.refreshToken)
	router.Post("/reset-password", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(handler.authenticate)
		r.Use(middleware.RequireAuth())
		r.Post("/logout", handler.logout)
		r.Get("/current-user", handler.currentUser)
		r.Patch("/update-account", handler.updateAccount)
		r.Post("/avatar", handler.uploadAvatar)
		r.Delete("/avatar", handler.deleteAvatar)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Mobile    string `json:"mobile"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type resetPasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateAccountRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Mobile    string `json:"mobile"`
}

/*
Register handles the creation of a new operator account.

POST /api/v1/users/register

Request:
  - Body: registerRequest (FirstName, LastName, Mobile, Email, Password)

Response:
  - 201: User: Created sanitized profile
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Email or mobile already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	// Presence is the whole contract here. Format and strength policy is the
	// dashboard's concern, the API only refuses blank fields.
	validator := &validate.Validator{}
	validator.Required(FieldFirstName, input.FirstName).
		Required(FieldLastName, input.LastName).
		Required(FieldMobile, input.Mobile).
		Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Register(request.Context(), RegisterInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Mobile:    input.Mobile,
		Email:     input.Email,
		Password:  input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user, "User registered successfully")
}

/*
Login authenticates an operator and establishes a session.

POST /api/v1/users/login

Description: Verifies credentials, persists the rotated refresh token, and
sets both session cookies. The tokens are mirrored in the body for clients
that prefer the Authorization header.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: Session: Sanitized user plus both tokens
  - 400: ErrBadRequest: Unknown email
  - 401: ErrUnauthorized: Wrong password
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.accountService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setSessionCookies(writer, session)

	respond.OK(writer, map[string]any{
		FieldUser:         session.User,
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
	}, "User logged in successfully")
}

/*
Logout terminates the current operator session.

POST /api/v1/users/logout

Description: Clears the account's refresh-token slot and expires both
session cookies. Already-issued access tokens stay valid until expiry.

Response:
  - 200: Success: Session terminated
  - 401: ErrUnauthorized: No authenticated session
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.Logout(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	clearSessionCookies(writer)

	respond.OK(writer, nil, "User logged out successfully")
}

/*
RefreshToken rotates the session's token pair.

POST /api/v1/users/refresh-token

Description: Reads the refresh token from the cookie (body fallback),
verifies it against the stored slot, and issues a fresh pair. Reuse of a
rotated-out token is rejected.

Response:
  - 200: Tokens: New access and refresh tokens
  - 401: ErrUnauthorized: Missing, invalid, or superseded refresh token
*/
func (handler *Handler) refreshToken(writer http.ResponseWriter, request *http.Request) {

	refreshToken := ""
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil {
		refreshToken = cookie.Value
	}
	if refreshToken == "" {
		var input refreshTokenRequest
		if err := requestutil.DecodeJSON(request, &input); err == nil {
			refreshToken = input.RefreshToken
		}
	}
	if refreshToken == "" {
		respond.Error(writer, request, apperr.Unauthorized("Unauthorized request"))
		return
	}

	session, err := handler.accountService.Refresh(request.Context(), refreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setSessionCookies(writer, session)

	respond.OK(writer, map[string]any{
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
	}, "Access token refreshed")
}

/*
ResetPassword overwrites a forgotten password.

POST /api/v1/users/reset-password

Request:
  - Body: resetPasswordRequest (Email, Password)

Response:
  - 200: Success: Password updated
  - 400: ErrInvalidJSON: Missing fields
  - 404: ErrNotFound: No account under that email
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.ResetPassword(request.Context(), input.Email, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, nil, "Password reset successfully")
}

/*
CurrentUser returns the gate-resolved profile of the caller.

GET /api/v1/users/current-user

Response:
  - 200: Identity: Sanitized profile
  - 401: ErrUnauthorized: No authenticated session
*/
func (handler *Handler) currentUser(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, identity, "Current user fetched successfully")
}

/*
UpdateAccount replaces the caller's mutable profile fields.

PATCH /api/v1/users/update-account

Request:
  - Body: updateAccountRequest (FirstName, LastName, Mobile)

Response:
  - 200: User: Updated sanitized profile
  - 400: ErrInvalidJSON: Missing fields
  - 401: ErrUnauthorized: No authenticated session
*/
func (handler *Handler) updateAccount(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateAccountRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldFirstName, input.FirstName).
		Required(FieldLastName, input.LastName).
		Required(FieldMobile, input.Mobile)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateAccountDetails(request.Context(), UpdateProfileInput{
		UserID:    userID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Mobile:    input.Mobile,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user, "Account details updated successfully")
}

/*
UploadAvatar attaches a new profile picture to the caller's account.

POST /api/v1/users/avatar (multipart/form-data, field "avatar")

Response:
  - 200: User: Updated sanitized profile
  - 400: ErrValidation: Missing avatar file
  - 400: ErrBadRequest: Body larger than [MaxAvatarSizeBytes]
  - 401: ErrUnauthorized: No authenticated session
*/
func (handler *Handler) uploadAvatar(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ParseMultipartForm's argument only bounds memory use; bodies above it
	// spill to temp files. MaxBytesReader is what enforces the size cap.
	request.Body = http.MaxBytesReader(writer, request.Body, MaxAvatarSizeBytes)

	if err := request.ParseMultipartForm(MaxAvatarSizeBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(writer, request, apperr.BadRequest("Avatar file is too large"))
			return
		}
		respond.Error(writer, request, validate.RequiredError(FieldAvatar, "file is required"))
		return
	}

	file, header, err := request.FormFile(FieldAvatar)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldAvatar, "file is required"))
		return
	}
	defer file.Close()

	user, err := handler.accountService.UploadAvatar(request.Context(), userID, header.Filename, file)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user, "Avatar updated successfully")
}

/*
DeleteAvatar detaches the caller's profile picture.

DELETE /api/v1/users/avatar

Description: Idempotent; deleting an absent avatar succeeds.

Response:
  - 200: User: Updated sanitized profile
  - 401: ErrUnauthorized: No authenticated session
  - 404: ErrNotFound: Account vanished underneath the session
*/
func (handler *Handler) deleteAvatar(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.DeleteAvatar(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user, "Avatar removed successfully")
}

// # Session Cookies

// setSessionCookies writes the token pair as HttpOnly cookies. Both cookies
// carry identical attributes; clearSessionCookies must mirror them or
// browsers keep the stale copy.
func setSessionCookies(writer http.ResponseWriter, session *Session) {
	http.SetCookie(writer, sessionCookie(constants.AccessTokenCookieName, session.AccessToken, int(AccessTokenTTL.Seconds())))
	http.SetCookie(writer, sessionCookie(constants.RefreshTokenCookieName, session.RefreshToken, int(RefreshTokenTTL.Seconds())))
}

// clearSessionCookies expires both session cookies.
func clearSessionCookies(writer http.ResponseWriter) {
	http.SetCookie(writer, sessionCookie(constants.AccessTokenCookieName, "", -1))
	http.SetCookie(writer, sessionCookie(constants.RefreshTokenCookieName, "", -1))
}

func sessionCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     constants.SessionCookiePath,
		MaxAge:   maxAge,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}
