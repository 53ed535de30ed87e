// Copyright (c) 2026 SafeMine. All rights reserved.

package mailbox

import (
	"context"
	"fmt"

	"github.com/safemine/api/pkg/uuidv7"
)

// Service implements the inbox use cases.
type Service struct {
	messageRepository MessageRepository
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(repo MessageRepository) *Service {
	return &Service{messageRepository: repo}
}

// SubmitInput holds a visitor's submission.
type SubmitInput struct {
	Name  string
	Email string
	Body  string
}

/*
Submit persists a new inbox message of the given kind.

Parameters:
  - context: context.Context
  - kind: string (KindContact or KindFeedback)
  - input: SubmitInput

Returns:
  - *Message: Created record
  - error: Persistence failures
*/
func (service *Service) Submit(context context.Context, kind string, input SubmitInput) (*Message, error) {

	message := &Message{
		ID:    uuidv7.New(),
		Kind:  kind,
		Name:  input.Name,
		Email: input.Email,
		Body:  input.Body,
	}

	if err := service.messageRepository.Create(context, message); err != nil {
		return nil, fmt.Errorf("mailbox_service_submit_failed: %w", err)
	}

	return message, nil
}
