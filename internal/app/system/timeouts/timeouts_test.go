// internal/app/system/timeouts/timeouts_test.go
package timeouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
)

func TestDefaults(t *testing.T) {
	timeouts.Reset()
	if got := timeouts.Ping(); got != timeouts.DefaultPing {
		t.Errorf("Ping: got %v, want %v", got, timeouts.DefaultPing)
	}
	if got := timeouts.Sweep(); got != timeouts.DefaultSweep {
		t.Errorf("Sweep: got %v, want %v", got, timeouts.DefaultSweep)
	}
}

func TestConfigure_OnlyPositiveFieldsApply(t *testing.T) {
	timeouts.Reset()
	t.Cleanup(timeouts.Reset)

	timeouts.Configure(timeouts.Config{Medium: 25 * time.Second})

	if got := timeouts.Medium(); got != 25*time.Second {
		t.Errorf("Medium: got %v, want 25s", got)
	}
	if got := timeouts.Short(); got != timeouts.DefaultShort {
		t.Errorf("Short should keep its default, got %v", got)
	}
}

func TestConfigureFromEnv(t *testing.T) {
	timeouts.Reset()
	t.Cleanup(timeouts.Reset)

	t.Setenv("TIMEOUT_LONG", "45s")
	t.Setenv("TIMEOUT_SWEEP", "5m")
	t.Setenv("TIMEOUT_SHORT", "not-a-duration")

	if n := timeouts.ConfigureFromEnv(); n != 2 {
		t.Fatalf("overridden levels: got %d, want 2", n)
	}
	if got := timeouts.Long(); got != 45*time.Second {
		t.Errorf("Long: got %v, want 45s", got)
	}
	if got := timeouts.Sweep(); got != 5*time.Minute {
		t.Errorf("Sweep: got %v, want 5m", got)
	}
	if got := timeouts.Short(); got != timeouts.DefaultShort {
		t.Errorf("unparseable value must not override Short, got %v", got)
	}
}

func TestWithTimeout_DeadlineExpires(t *testing.T) {
	ctx, cancel := timeouts.WithTimeout(context.Background(), 5*time.Millisecond, nil, "slow operation")
	defer cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context never hit its deadline")
	}
}
