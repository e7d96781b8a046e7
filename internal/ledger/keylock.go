package ledger

import (
	"fmt"
	"sync"

	"github.com/folioworks/folio/internal/domain"
)

// keyLocks serializes the read-merge-write sequence per grouping key. Two
// concurrent purchases for the same key must not both read the pre-merge
// state; purchases for different keys proceed independently. Mutexes are
// retained for the process lifetime, bounded by grouping-key cardinality.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*sync.Mutex)}
}

func lockKey(key domain.GroupingKey) string {
	platform := "-"
	if key.PlatformID != nil {
		platform = fmt.Sprintf("%d", *key.PlatformID)
	}
	strategy := "-"
	if key.StrategyTag != nil {
		strategy = *key.StrategyTag
	}
	return fmt.Sprintf("%d|%s|%s|%s", key.UserID, key.Symbol, platform, strategy)
}

// acquire locks the mutex for the key and returns its unlock func.
func (k *keyLocks) acquire(key domain.GroupingKey) func() {
	s := lockKey(key)

	k.mu.Lock()
	m, ok := k.locks[s]
	if !ok {
		m = &sync.Mutex{}
		k.locks[s] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
