package kv

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// Change describes a key whose stored value differs from what a subscriber
// last saw. Present is false when the key was deleted.
type Change struct {
	Key     string
	Value   string
	Present bool
}

// Batch groups writes that must land together.
type Batch struct {
	Set    map[string]string
	Delete []string
}

type batcher interface {
	apply(ctx context.Context, b Batch) error
}

// Apply writes b to s. Stores from this package apply the batch
// atomically; any other Store gets the writes one by one, sets first.
func Apply(ctx context.Context, s Store, b Batch) error {
	if bs, ok := s.(batcher); ok {
		return bs.apply(ctx, b)
	}
	for _, k := range sortedKeys(b.Set) {
		if err := s.Set(ctx, k, b.Set[k]); err != nil {
			return err
		}
	}
	for _, k := range b.Delete {
		if err := s.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}

// Store is the persisted key/value state.
type Store interface {
	// Get returns the value under key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Subscribe reports changes of the given keys until cancel is called.
	Subscribe(keys ...string) (<-chan Change, func())
}

const subscriberBuffer = 16

type subscription struct {
	keys map[string]struct{}
	ch   chan Change
}

func (s *subscription) watches(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// hub fans changes out to subscribers. It is shared by both stores.
type hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscription
}

func (h *hub) add(keys []string) (int, *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs == nil {
		h.subs = make(map[int]*subscription)
	}
	sub := &subscription{keys: make(map[string]struct{}, len(keys)), ch: make(chan Change, subscriberBuffer)}
	for _, k := range keys {
		sub.keys[k] = struct{}{}
	}
	h.nextID++
	h.subs[h.nextID] = sub
	return h.nextID, sub
}

// remove drops the subscription and reports how many remain.
func (h *hub) remove(id int) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(sub.ch)
	}
	return len(h.subs)
}

func (h *hub) publish(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		if !sub.watches(c.Key) {
			continue
		}
		select {
		case sub.ch <- c:
		default:
			// buffer full: the subscriber still has a pending notification
		}
	}
}

// watched returns the union of keys across subscriptions.
func (h *hub) watched() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	seen := make(map[string]struct{})
	var keys []string
	for _, sub := range h.subs {
		for k := range sub.keys {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	return keys
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subs {
		close(sub.ch)
		delete(h.subs, id)
	}
}
