package revoke

import (
	"context"
	"sync"
)

// Memory is the default in-process revocation store: a mutex-guarded set of
// token ids. Entries are never evicted and the whole set is lost on restart,
// so tokens revoked before a crash become acceptable again until their
// natural expiry. Known limitation; Redis is the durable alternative.
type Memory struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{ids: make(map[string]struct{})}
}

func (m *Memory) Revoke(_ context.Context, tokenID string) error {
	if tokenID == "" {
		return nil
	}

	m.mu.Lock()
	m.ids[tokenID] = struct{}{}
	m.mu.Unlock()
	return nil
}

func (m *Memory) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.RLock()
	_, ok := m.ids[tokenID]
	m.mu.RUnlock()
	return ok, nil
}

// Len reports the number of revoked ids currently held. Observability only.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}
