// Copyright (c) 2026 SafeMine. All rights reserved.

package mailbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMessageRepository collects submitted messages in memory.
type fakeMessageRepository struct {
	messages []*Message
}

func (r *fakeMessageRepository) Create(_ context.Context, message *Message) error {
	copied := *message
	r.messages = append(r.messages, &copied)
	return nil
}

func newMailboxHarness() (*fakeMessageRepository, *Handler) {
	repo := &fakeMessageRepository{}
	return repo, NewHandler(NewService(repo))
}

func postJSON(t *testing.T, handler *Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.Routes().ServeHTTP(recorder, request)
	return recorder
}

func TestMailbox_SubmitContact(t *testing.T) {
	repo, handler := newMailboxHarness()

	recorder := postJSON(t, handler, "/contact", `{
		"name": "Dana Kovac", "email": "dana@mine.example",
		"message": "The gas sensor panel shows stale readings."
	}`)

	require.Equal(t, http.StatusCreated, recorder.Code)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	data := envelope["data"].(map[string]any)
	assert.NotEmpty(t, data["id"])
	assert.Equal(t, KindContact, data["kind"])

	require.Len(t, repo.messages, 1)
	assert.Equal(t, "The gas sensor panel shows stale readings.", repo.messages[0].Body)
}

func TestMailbox_SubmitFeedback(t *testing.T) {
	repo, handler := newMailboxHarness()

	recorder := postJSON(t, handler, "/feedback", `{
		"name": "Eli Novak", "email": "eli@mine.example",
		"message": "Shift handover view is great."
	}`)

	require.Equal(t, http.StatusCreated, recorder.Code)
	require.Len(t, repo.messages, 1)
	assert.Equal(t, KindFeedback, repo.messages[0].Kind)
}

func TestMailbox_Submit_MissingFields(t *testing.T) {
	repo, handler := newMailboxHarness()

	recorder := postJSON(t, handler, "/contact", `{"name": "Dana Kovac"}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Empty(t, repo.messages)
}

func TestMailbox_Submit_MessageTooLong(t *testing.T) {
	repo, handler := newMailboxHarness()

	oversized := strings.Repeat("x", MaxMessageLen+1)
	recorder := postJSON(t, handler, "/feedback", `{
		"name": "Eli Novak", "email": "eli@mine.example",
		"message": "`+oversized+`"
	}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Empty(t, repo.messages)
}
