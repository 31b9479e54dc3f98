package cache

import "time"

// Config holds cache TTLs.
type Config struct {
	BoardsTTL   time.Duration
	IdentityTTL time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BoardsTTL:   10 * time.Minute, // boards are immutable within a session
		IdentityTTL: 5 * time.Minute,  // display-name snapshots tolerate short staleness
	}
}
