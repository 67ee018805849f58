package guests

import (
	"context"
	"sync"
)

type InMemoryRepository struct {
	mu     sync.Mutex
	counts map[string]int // keyed by ip + "|" + monthYear
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{counts: make(map[string]int)}
}

func (r *InMemoryRepository) TryIncrement(ctx context.Context, ip, monthYear string, limit int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := ip + "|" + monthYear
	if r.counts[key] >= limit {
		return false, nil
	}
	r.counts[key]++
	return true, nil
}
