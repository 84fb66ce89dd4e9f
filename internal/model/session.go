package model

import (
	"time"
)

// SessionState is the state of an in-progress configuration dialog.
type SessionState string

const (
	// StateIdle means no dialog is open. A user with no session entry at all
	// is equivalent to idle.
	StateIdle SessionState = "idle"
	// StateAwaitingFormat means the next text message sets the message format.
	StateAwaitingFormat SessionState = "awaiting_format"
	// StateAwaitingEmoji means the next text message or selection sets the emoji.
	StateAwaitingEmoji SessionState = "awaiting_emoji"
)

// ConversationSession is an ephemeral per-user dialog. It lives only in
// memory; an in-flight dialog is abandoned on restart, never corrupted.
type ConversationSession struct {
	UserID    string       `json:"user_id"`
	State     SessionState `json:"state"`
	StartedAt time.Time    `json:"started_at"`
}
