// Package events publishes auth activity (register and login outcomes) to a
// message broker. Publishing is best-effort: a failed publish is logged by
// the caller and never changes the outcome of the request.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/authkeeper/authkeeper/internal/envelope"
)

type Kind string

const (
	KindRegister Kind = "register"
	KindLogin    Kind = "login"
)

// Event describes one finished auth attempt. It never carries credentials.
type Event struct {
	ID       string        `json:"id"`
	Kind     Kind          `json:"kind"`
	Username string        `json:"username"`
	UserID   int64         `json:"userId,omitempty"`
	Success  bool          `json:"success"`
	Code     envelope.Code `json:"code"`
	At       time.Time     `json:"at"`
}

// NewEvent stamps a fresh id and the current time.
func NewEvent(kind Kind, username string, userID int64, code envelope.Code) Event {
	return Event{
		ID:       uuid.NewString(),
		Kind:     kind,
		Username: username,
		UserID:   userID,
		Success:  code == envelope.None,
		Code:     code,
		At:       time.Now().UTC(),
	}
}

type ActivitySink interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) Publish(context.Context, Event) error { return nil }
func (NopSink) Close() error                         { return nil }
