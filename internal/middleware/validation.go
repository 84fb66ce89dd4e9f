package middleware

import (
	"errors"
	"net/url"
	"unicode/utf8"
)

// ValidateUserID validates an opaque user identifier.
func ValidateUserID(id string) error {
	if len(id) == 0 {
		return errors.New("user_id cannot be empty")
	}
	if len(id) > 64 {
		return errors.New("user_id exceeds maximum length")
	}
	if !utf8.ValidString(id) {
		return errors.New("user_id must be valid UTF-8")
	}
	return nil
}

// ValidateDestinationID validates a destination channel id or handle.
func ValidateDestinationID(id string) error {
	if len(id) == 0 {
		return errors.New("destination_id cannot be empty")
	}
	if len(id) > 128 {
		return errors.New("destination_id exceeds maximum length")
	}
	return nil
}

// ValidateVideoTitle validates a video title.
func ValidateVideoTitle(title string) error {
	if len(title) == 0 {
		return errors.New("video_title cannot be empty")
	}
	if len(title) > 512 {
		return errors.New("video_title exceeds maximum length")
	}
	if !utf8.ValidString(title) {
		return errors.New("video_title must be valid UTF-8")
	}
	return nil
}

// ValidateVideoURL validates a video URL.
func ValidateVideoURL(raw string) error {
	if len(raw) == 0 {
		return errors.New("video_url cannot be empty")
	}
	if len(raw) > 2048 {
		return errors.New("video_url exceeds maximum length")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("video_url must be an absolute http(s) URL")
	}
	return nil
}
