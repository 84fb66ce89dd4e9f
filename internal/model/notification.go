package model

// NotificationRequest asks the platform to deliver one now-playing
// notification on behalf of a user.
type NotificationRequest struct {
	UserID        string `json:"user_id"`
	DestinationID string `json:"destination_id"`
	VideoTitle    string `json:"video_title"`
	VideoURL      string `json:"video_url"`
}

// Outcome classifies the result of a delivery attempt.
type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomeRejected  Outcome = "rejected"
	OutcomeTransport Outcome = "transport_error"
	OutcomeInvalid   Outcome = "invalid"
)

// DeliveryResult reports a single delivery attempt. Err is nil exactly when
// Delivered is true.
type DeliveryResult struct {
	Delivered bool
	Outcome   Outcome
	Err       error
}
