package threads

import (
	"context"
	"fmt"
	"sync"

	"CompetitorBot/internal/ports"
)

// ThreadCreator is the one remote call the registry needs.
type ThreadCreator interface {
	CreateThread(ctx context.Context) (string, error)
}

// Registry maps chat channels to remote conversation threads. Creation is
// serialized per channel, so two concurrent first questions on the same
// channel perform exactly one remote create. Entries live for the process
// lifetime unless explicitly reset.
type Registry struct {
	creator ThreadCreator

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	ids   map[string]string
}

var _ ports.ThreadRegistry = (*Registry)(nil)

// NewRegistry builds an empty registry around the remote creator.
func NewRegistry(creator ThreadCreator) *Registry {
	return &Registry{
		creator: creator,
		locks:   map[string]*sync.Mutex{},
		ids:     map[string]string{},
	}
}

// GetOrCreate returns the channel's thread id, creating the remote thread on
// first use.
func (r *Registry) GetOrCreate(ctx context.Context, channelID string) (string, error) {
	lock := r.channelLock(channelID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	id, ok := r.ids[channelID]
	r.mu.Unlock()
	if ok {
		return id, nil
	}

	id, err := r.creator.CreateThread(ctx)
	if err != nil {
		return "", fmt.Errorf("create thread for channel %s: %w", channelID, err)
	}

	r.mu.Lock()
	r.ids[channelID] = id
	r.mu.Unlock()
	return id, nil
}

// Reset forgets the channel's thread mapping and reports whether there was
// one. The next question on the channel starts a fresh remote thread.
func (r *Registry) Reset(channelID string) bool {
	lock := r.channelLock(channelID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ids[channelID]
	delete(r.ids, channelID)
	return ok
}

func (r *Registry) channelLock(channelID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[channelID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[channelID] = lock
	}
	return lock
}
