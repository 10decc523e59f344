package model

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/schema"
)

// ErrThreadNotFound is returned by repository operations on an unknown
// thread identifier.
var ErrThreadNotFound = errors.New("thread not found")

// ThreadContext is carried context: per-thread state that outlives
// individual tool calls but is not part of the literal message history.
type ThreadContext struct {
	// Department and Doctor hold the last triage recommendation so a later
	// booking can fall back to it when the model omits the arguments.
	Department string `json:"department,omitempty"`
	Doctor     string `json:"doctor,omitempty"`
}

// IsZero reports whether no context has been carried yet.
func (c ThreadContext) IsZero() bool {
	return c.Department == "" && c.Doctor == ""
}

// ConversationHistory represents loaded thread data.
type ConversationHistory struct {
	ThreadID string
	Messages []*schema.Message
}

// ThreadRepository stores per-thread conversation state keyed by an opaque
// thread identifier.
type ThreadRepository interface {
	// Create registers a fresh empty thread and returns its identifier.
	Create(ctx context.Context) (string, error)

	// Exists reports whether the thread identifier is known.
	Exists(ctx context.Context, threadID string) (bool, error)

	// Reset replaces the thread's state with an empty one without changing
	// the identifier.
	Reset(ctx context.Context, threadID string) error

	// AddMessage appends a message to the thread's history.
	AddMessage(ctx context.Context, threadID string, message *schema.Message) error

	// LoadHistory retrieves the ordered message history for a thread.
	LoadHistory(ctx context.Context, threadID string) (*ConversationHistory, error)

	// Context returns the thread's carried context.
	Context(ctx context.Context, threadID string) (ThreadContext, error)

	// SetContext replaces the thread's carried context.
	SetContext(ctx context.Context, threadID string, tc ThreadContext) error
}
