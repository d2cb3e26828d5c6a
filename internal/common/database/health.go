// internal/common/database/health.go
package database

import (
	"context"
	"sort"
	"time"
)

// Pinger is any backing store that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckAll pings every dependency with a shared timeout and returns the
// failures keyed by name. An empty map means ready.
func CheckAll(ctx context.Context, timeout time.Duration, deps map[string]Pinger) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	failures := make(map[string]string)
	for _, name := range names {
		if err := deps[name].Ping(ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	return failures
}
