package history

import (
	"context"
	"sync"
	"time"

	"github.com/amishk599/offerhound/internal/model"
)

// MemoryStore is a non-durable store. Used for dry runs and tests.
type MemoryStore struct {
	seen seenSet

	mu       sync.Mutex
	records  []model.Offer
	recorded map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: newSeenSet(), recorded: make(map[string]bool)}
}

func (s *MemoryStore) Load(ctx context.Context) error { return nil }

func (s *MemoryStore) FilterNew(offers []model.Offer) []model.Offer {
	return s.seen.FilterNew(offers)
}

func (s *MemoryStore) Persist(ctx context.Context, offers []model.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range stamp(offers, time.Now().UTC()) {
		if s.recorded[o.JobURL] {
			continue
		}
		s.records = append(s.records, o)
		s.recorded[o.JobURL] = true
		s.seen.MarkIfNew(o.JobURL)
	}
	return nil
}

func (s *MemoryStore) Recent(ctx context.Context, n int) ([]model.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newestFirst(s.records, n), nil
}

func (s *MemoryStore) Len() int { return s.seen.Len() }

func (s *MemoryStore) Close() error { return nil }
