package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type actionEntry struct {
	run     func()
	created time.Time
}

// actionCache maps the id carried in an inline button to the notification
// action it triggers.
type actionCache struct {
	entries sync.Map
	now     func() time.Time
}

func newActionCache() *actionCache {
	return &actionCache{now: time.Now}
}

func (c *actionCache) Put(run func()) string {
	id := uuid.NewString()
	c.entries.Store(id, actionEntry{run: run, created: c.now()})
	return id
}

// Run executes and forgets the action. It reports false for unknown or
// already used ids.
func (c *actionCache) Run(id string) bool {
	v, ok := c.entries.LoadAndDelete(id)
	if !ok {
		return false
	}
	v.(actionEntry).run()
	return true
}

func (c *actionCache) ClearExpired(ttl time.Duration) int {
	deadline := c.now().Add(-ttl)
	clearCount := 0
	c.entries.Range(func(key, value any) bool {
		if value.(actionEntry).created.Before(deadline) {
			c.entries.Delete(key)
			clearCount++
		}
		return true
	})
	return clearCount
}

// ClearActionsPeriodically drops actions older than ttl until ctx is done.
func (b *Bot) ClearActionsPeriodically(ctx context.Context, ttl time.Duration) error {
	if ttl <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			clearCount := b.actions.ClearExpired(ttl)
			slog.Info("Action cache cleared", "count", clearCount)
		case <-ctx.Done():
			return nil
		}
	}
}
