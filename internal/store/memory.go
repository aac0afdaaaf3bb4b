package store

import (
	"context"
	"sync"
)

// MemoryPersister keeps the encoded store in memory. It is used by tests and by
// dry-run playbook execution.
type MemoryPersister struct {
	mutex   sync.RWMutex
	content []byte
}

// NewMemoryPersister returns a persister seeded with optional encoded content.
func NewMemoryPersister(initialContent []byte) *MemoryPersister {
	return &MemoryPersister{content: append([]byte(nil), initialContent...)}
}

// Load decodes the stored content.
func (persister *MemoryPersister) Load(executionContext context.Context) (State, error) {
	persister.mutex.RLock()
	defer persister.mutex.RUnlock()
	return Decode(persister.content)
}

// Save replaces the stored content with the encoded state.
func (persister *MemoryPersister) Save(executionContext context.Context, state State) error {
	encoded, encodeError := Encode(state)
	if encodeError != nil {
		return encodeError
	}

	persister.mutex.Lock()
	defer persister.mutex.Unlock()
	persister.content = encoded
	return nil
}

// Content returns a copy of the last saved document.
func (persister *MemoryPersister) Content() []byte {
	persister.mutex.RLock()
	defer persister.mutex.RUnlock()
	return append([]byte(nil), persister.content...)
}
