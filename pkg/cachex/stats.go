package cachex

import "time"

// Stats is a point-in-time snapshot for observability endpoints and tests.
// TotalItems and Namespaces count only live entries; ExpiredItems counts
// entries that are logically gone but not yet physically purged.
type Stats struct {
	TotalItems   int            `json:"totalItems"`
	Namespaces   map[string]int `json:"namespaces"`
	ExpiredItems int            `json:"expiredItems"`
}

func (c *Cache) Stats() Stats {
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{Namespaces: make(map[string]int)}
	for _, e := range c.entries {
		if !now.Before(e.expiresAt) {
			s.ExpiredItems++
			continue
		}
		s.TotalItems++
		s.Namespaces[e.namespace]++
	}
	return s
}

// StartSweeper launches the background maintenance loop that calls
// PurgeExpired on a fixed interval. It only ever removes entries that are
// already logically expired, so it cannot race a reader into a wrong answer.
// Call Stop to shut it down; Stop blocks until the loop has exited.
func (c *Cache) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	c.mu.Lock()
	if c.sweeping {
		c.mu.Unlock()
		return
	}
	c.sweeping = true
	c.mu.Unlock()

	go c.sweep(interval)
}

// Stop terminates the sweeper, if one was started, and blocks until its loop
// has exited. Safe to call on a Cache that never started one.
func (c *Cache) Stop() {
	c.mu.RLock()
	started := c.sweeping
	c.mu.RUnlock()

	c.once.Do(func() {
		close(c.stopCh)
	})
	if started {
		<-c.doneCh
	}
}

func (c *Cache) sweep(interval time.Duration) {
	defer close(c.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.PurgeExpired()
		case <-c.stopCh:
			return
		}
	}
}
