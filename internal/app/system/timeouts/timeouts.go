// internal/app/system/timeouts/timeouts.go

// Package timeouts centralizes the context deadlines wrapped around
// datastore, storage, and provider I/O. Handlers pick a level by the
// shape of the operation rather than hard-coding durations at call
// sites, and operators can retune every level from the environment
// without a rebuild.
//
// Levels:
//
//   - Ping: connectivity probes (health endpoint, startup ping)
//   - Short: single-document reads and writes (batch by id, enrollment)
//   - Medium: list queries and recording correlation over storage listings
//   - Long: recording uploads and presigned-URL batches
//   - Sweep: one recording-sync pass over a batch, provider calls included
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults. Sweep is generous because a single pass can fetch
// recordings for every session in a batch from the provider.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultSweep  = 2 * time.Minute
)

// Config carries one duration per level. Zero fields are ignored by
// Configure, so callers can override a single level.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Sweep  time.Duration
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

func defaults() Config {
	return Config{
		Ping:   DefaultPing,
		Short:  DefaultShort,
		Medium: DefaultMedium,
		Long:   DefaultLong,
		Sweep:  DefaultSweep,
	}
}

// Configure overrides the levels whose fields are positive.
func Configure(c Config) {
	mu.Lock()
	defer mu.Unlock()
	if c.Ping > 0 {
		cur.Ping = c.Ping
	}
	if c.Short > 0 {
		cur.Short = c.Short
	}
	if c.Medium > 0 {
		cur.Medium = c.Medium
	}
	if c.Long > 0 {
		cur.Long = c.Long
	}
	if c.Sweep > 0 {
		cur.Sweep = c.Sweep
	}
}

// ConfigureFromEnv reads TIMEOUT_PING, TIMEOUT_SHORT, TIMEOUT_MEDIUM,
// TIMEOUT_LONG, and TIMEOUT_SWEEP as time.ParseDuration values ("3s",
// "90s", "2m") and applies the ones that parse to a positive duration.
// It returns the number of levels overridden so startup can log it.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()

	overridden := 0
	for _, v := range []struct {
		env string
		dst *time.Duration
	}{
		{"TIMEOUT_PING", &cur.Ping},
		{"TIMEOUT_SHORT", &cur.Short},
		{"TIMEOUT_MEDIUM", &cur.Medium},
		{"TIMEOUT_LONG", &cur.Long},
		{"TIMEOUT_SWEEP", &cur.Sweep},
	} {
		raw := os.Getenv(v.env)
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			*v.dst = d
			overridden++
		}
	}
	return overridden
}

// Reset restores the defaults. Test helper.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// Current returns a copy of the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

func get(pick func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return pick(cur)
}

// Ping returns the connectivity-probe timeout.
func Ping() time.Duration { return get(func(c Config) time.Duration { return c.Ping }) }

// Short returns the single-document operation timeout.
func Short() time.Duration { return get(func(c Config) time.Duration { return c.Short }) }

// Medium returns the list-and-correlate operation timeout.
func Medium() time.Duration { return get(func(c Config) time.Duration { return c.Medium }) }

// Long returns the upload and presign-batch timeout.
func Long() time.Duration { return get(func(c Config) time.Duration { return c.Long }) }

// Sweep returns the per-batch recording-sync pass timeout.
func Sweep() time.Duration { return get(func(c Config) time.Duration { return c.Sweep }) }

// WithTimeout derives a deadline-bound context and logs when the
// operation it labels runs out of budget:
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "recording upload")
//	defer cancel()
//
// The deadline check fires on cancel, after the operation has either
// finished or given up, so the log line names the slow operation rather
// than a generic context error.
func WithTimeout(parent context.Context, d time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, d)
	wrapped := func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation exceeded its timeout",
				zap.String("operation", operation),
				zap.Duration("timeout", d))
		}
		cancel()
	}
	return ctx, wrapped
}
