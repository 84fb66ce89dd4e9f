// Package composer renders notification text from a user configuration and
// video metadata.
package composer

import (
	"fmt"
	"strings"

	"github.com/nowplaying/notification-platform/internal/model"
)

// Sample video used for configuration previews.
const (
	SampleTitle = "Lofi Hip Hop Radio - Beats to Study/Relax to"
	SampleURL   = "https://youtube.com/watch?v=jfKfPfyJRdk"
)

// Compose renders the notification for one video. The output grammar is
// fixed: "{emoji} {format}\n\n[{title}]({url})". No escaping is applied; the
// dispatcher owns knowing what the destination transport expects.
func Compose(cfg model.UserConfig, title, url string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("%w: empty title", model.ErrInvalidVideoMetadata)
	}
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("%w: empty url", model.ErrInvalidVideoMetadata)
	}

	return fmt.Sprintf("%s %s\n\n[%s](%s)", cfg.Emoji, cfg.MessageFormat, title, url), nil
}

// Preview renders the configuration against the fixed sample video.
func Preview(cfg model.UserConfig) string {
	text, _ := Compose(cfg, SampleTitle, SampleURL)
	return text
}
