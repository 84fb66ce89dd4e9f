package model

import (
	"time"
)

// DeliveryEvent is the audit record published after every dispatch attempt.
type DeliveryEvent struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	DestinationID string    `json:"destination_id"`
	Outcome       Outcome   `json:"outcome"`
	Reason        string    `json:"reason,omitempty"`
	VideoTitle    string    `json:"video_title"`
	VideoURL      string    `json:"video_url"`
	CreatedAt     time.Time `json:"created_at"`
}

// VideoEvent is an inbound now-playing event from an external producer
// (browser extension bridge, webhook relay). It carries the same fields as a
// direct notification request.
type VideoEvent struct {
	UserID        string    `json:"user_id"`
	DestinationID string    `json:"destination_id"`
	VideoTitle    string    `json:"video_title"`
	VideoURL      string    `json:"video_url"`
	ObservedAt    time.Time `json:"observed_at,omitempty"`
}
