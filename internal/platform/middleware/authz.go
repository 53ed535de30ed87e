// Copyright (c) 2026 SafeMine. All rights reserved.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/safemine/api/internal/platform/constants"
	"github.com/safemine/api/internal/platform/ctxutil"
	"github.com/safemine/api/internal/platform/sec"
)

// TokenVerifier checks an access token and returns its claims.
type TokenVerifier interface {
	VerifyAccessToken(tokenString string) (*sec.AuthClaims, error)
}

// UserResolver looks up the live account behind a token's subject.
// Returning a nil identity with a nil error means the account no longer
// exists and the token must be rejected.
type UserResolver interface {
	ResolveUser(ctx context.Context, userID string) (*sec.Identity, error)
}

// # Access-Token Gate

// Authenticate verifies the session token carried by the request, resolves
// the account behind it, and attaches the resulting identity to the context.
//
// The token is read from the accessToken cookie first, then from the
// Authorization bearer header, so both browser sessions and programmatic
// clients are served. Anonymous requests pass through untouched; gating
// individual routes is [RequireAuth]'s job. A request that does present a
// token but fails verification is rejected outright, tampered credentials
// never reach a handler.
//
// Mount it on route groups that require a session, ahead of [RequireAuth].
// It must not sit in front of the login or refresh endpoints: browsers
// attach the access cookie to every request, and an expired cookie would
// lock the client out of the very flow that replaces it.
func Authenticate(verifier TokenVerifier, resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			tokenString := extractAccessToken(request)
			if tokenString == "" {
				next.ServeHTTP(writer, request)
				return
			}

			claims, err := verifier.VerifyAccessToken(tokenString)
			if err != nil {
				writeError(writer, http.StatusUnauthorized, "Invalid or expired access token")
				return
			}

			identity, err := resolver.ResolveUser(request.Context(), claims.UserID)
			if err != nil {
				logger := ctxutil.GetLogger(request.Context())
				logger.ErrorContext(request.Context(), "auth_user_lookup_failed",
					slog.String("user_id", claims.UserID),
					slog.Any("error", err),
				)
				writeError(writer, http.StatusInternalServerError, "An unexpected error occurred")
				return
			}
			if identity == nil {
				// Valid signature but the account is gone. Treat as unauthorized.
				writeError(writer, http.StatusUnauthorized, "Invalid access token")
				return
			}

			ctx := ctxutil.WithAuthUser(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that did not authenticate.
// Mount it after [Authenticate] on route groups that need a session.
func RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			if ctxutil.GetAuthUser(request.Context()) == nil {
				writeError(writer, http.StatusUnauthorized, "Unauthorized request")
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// extractAccessToken pulls the raw token from the session cookie or, failing
// that, from the Authorization header.
func extractAccessToken(request *http.Request) string {

	if cookie, err := request.Cookie(constants.AccessTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := request.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
}
