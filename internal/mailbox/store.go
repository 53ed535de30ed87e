// Copyright (c) 2026 SafeMine. All rights reserved.

package mailbox

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository defines the data access contract for inbox messages.
// The inbox is create-only; reading happens through ops tooling, not the API.
type MessageRepository interface {
	Create(context context.Context, message *Message) error
}

// PostgresMessageRepository implements MessageRepository using pgx.
type PostgresMessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository creates a new PostgreSQL implementation of the MessageRepository.
func NewMessageRepository(pool *pgxpool.Pool) *PostgresMessageRepository {
	return &PostgresMessageRepository{pool: pool}
}

// Create persists a new message record into the mailbox.message table.
func (repository *PostgresMessageRepository) Create(context context.Context, message *Message) error {
	const query = `
		INSERT INTO mailbox.message (id, kind, name, email, body, createdat)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		message.ID,
		message.Kind,
		message.Name,
		message.Email,
		message.Body,
		message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_message_repo_create_failed: %w", err)
	}

	return nil
}
