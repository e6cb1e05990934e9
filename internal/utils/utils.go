package utils

import (
	"context"
	"strings"
	"time"
)

// Waiter blocks for a duration unless its context is done first. After returns the
// channel that fires once d elapses; nil means a real timer.
type Waiter struct {
	After func(d time.Duration) <-chan time.Time
}

// WaitFor blocks for d or until ctx is done.
func WaitFor(ctx context.Context, d time.Duration) error {
	return Waiter{}.Wait(ctx, d)
}

func (w Waiter) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	var fired <-chan time.Time
	if w.After != nil {
		fired = w.After(d)
	} else {
		timer := time.NewTimer(d)
		defer timer.Stop()
		fired = timer.C
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-fired:
		return nil
	}
}

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
