// Copyright (c) 2026 SafeMine. All rights reserved.

/*
Package mailbox implements the create-only contact and feedback inbox.

Dashboard visitors submit contact requests and product feedback through
public forms. Both records share one shape, so they live in a single table
distinguished by a kind discriminator.
*/
package mailbox

import "time"

// Message kinds. The discriminator keeps contact requests and feedback in
// one table without widening the schema.
const (
	KindContact  = "contact"
	KindFeedback = "feedback"
)

// MaxMessageLen caps the free-text body of a submission. The forms are
// public, so unbounded input would be an easy way to bloat the table.
const MaxMessageLen = 5000

// Message represents a single submitted contact or feedback record.
type Message struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Body      string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// # Field Identifiers

const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldMessage = "message"
)
