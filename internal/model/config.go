// Package model defines data structures for the notification platform.
package model

// Default values for a user configuration record. A user who never ran a
// configuration command gets exactly these.
const (
	DefaultMessageFormat = "now playing"
	DefaultEmoji         = "🎵"
)

// UserConfig is the per-user notification template configuration.
type UserConfig struct {
	UserID        string `json:"-"`
	MessageFormat string `json:"message_format"`
	Emoji         string `json:"emoji"`
}

// DefaultConfig returns the canonical default record for a user.
func DefaultConfig(userID string) UserConfig {
	return UserConfig{
		UserID:        userID,
		MessageFormat: DefaultMessageFormat,
		Emoji:         DefaultEmoji,
	}
}

// ConfigPatch is a partial update to a UserConfig. Nil fields are left
// unchanged by Apply.
type ConfigPatch struct {
	MessageFormat *string
	Emoji         *string
}

// Apply merges the patch into cfg.
func (p ConfigPatch) Apply(cfg *UserConfig) {
	if p.MessageFormat != nil {
		cfg.MessageFormat = *p.MessageFormat
	}
	if p.Emoji != nil {
		cfg.Emoji = *p.Emoji
	}
}

// IsZero reports whether the patch changes nothing.
func (p ConfigPatch) IsZero() bool {
	return p.MessageFormat == nil && p.Emoji == nil
}

// FormatPatch builds a patch that sets only the message format.
func FormatPatch(format string) ConfigPatch {
	return ConfigPatch{MessageFormat: &format}
}

// EmojiPatch builds a patch that sets only the emoji.
func EmojiPatch(emoji string) ConfigPatch {
	return ConfigPatch{Emoji: &emoji}
}

// ConfigResponse is the wire shape returned by the config lookup endpoint.
type ConfigResponse struct {
	Success bool       `json:"success"`
	Config  UserConfig `json:"config"`
}
