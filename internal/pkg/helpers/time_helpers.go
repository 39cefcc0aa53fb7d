// Package helpers holds small conversions shared by the startup code
package helpers

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration parses a duration string, returns default duration on error
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(strings.TrimSpace(durationStr))
	if err != nil || duration <= 0 {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Invalid duration, using default")
		return defaultDuration
	}
	return duration
}

// PublicURL joins a base URL and a path without doubling or dropping the slash
func PublicURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
