// Copyright (c) 2026 SafeMine. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away common body decoding and identity extraction patterns,
ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/safemine/api/internal/platform/apperr"
	"github.com/safemine/api/internal/platform/ctxutil"
	"github.com/safemine/api/internal/platform/sec"
	"github.com/safemine/api/internal/platform/validate"
)

// DecodeJSON reads the request body and decodes it into the target structure.
// Returns [validate.ErrInvalidJSON] if decoding fails.
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// RequiredIdentity ensures the request passed the Auth Gate and returns the
// resolved identity, or an [apperr.Unauthorized] error.
func RequiredIdentity(request *http.Request) (*sec.Identity, error) {
	user := ctxutil.GetAuthUser(request.Context())
	if user == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return user, nil
}

// RequiredUserID returns the user ID of the currently authenticated account.
func RequiredUserID(request *http.Request) (string, error) {
	user, err := RequiredIdentity(request)
	if err != nil {
		return "", err
	}
	return user.UserID, nil
}
