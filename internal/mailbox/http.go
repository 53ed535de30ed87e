// Copyright (c) 2026 SafeMine. All rights reserved.

package mailbox

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/safemine/api/internal/platform/request"
	"github.com/safemine/api/internal/platform/respond"
	"github.com/safemine/api/internal/platform/validate"
)

// Handler implements the public inbox endpoints.
type Handler struct {
	inboxService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{inboxService: service}
}

// Routes returns a [chi.Router] with the inbox routes.
// The server mounts it under /api/v1.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/contact", handler.submitContact)
	router.Post("/feedback", handler.submitFeedback)

	return router
}

type submitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

/*
SubmitContact records a contact request from a visitor.

POST /api/v1/contact

Response:
  - 201: Message: Created record
  - 400: ErrInvalidJSON: Missing fields
*/
func (handler *Handler) submitContact(writer http.ResponseWriter, request *http.Request) {
	handler.submit(writer, request, KindContact, "Contact request submitted successfully")
}

/*
SubmitFeedback records product feedback from a visitor.

POST /api/v1/feedback

Response:
  - 201: Message: Created record
  - 400: ErrInvalidJSON: Missing fields
*/
func (handler *Handler) submitFeedback(writer http.ResponseWriter, request *http.Request) {
	handler.submit(writer, request, KindFeedback, "Feedback submitted successfully")
}

func (handler *Handler) submit(writer http.ResponseWriter, request *http.Request, kind, successMessage string) {
	var input submitRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldMessage, input.Message).
		MaxLen(FieldMessage, input.Message, MaxMessageLen)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	message, err := handler.inboxService.Submit(request.Context(), kind, SubmitInput{
		Name:  input.Name,
		Email: input.Email,
		Body:  input.Message,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, message, successMessage)
}
