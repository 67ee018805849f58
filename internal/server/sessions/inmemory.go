package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/statementkit/statementkit/internal/shared"
)

// InMemoryRepository keeps refresh tokens in a map; used by tests and the
// "memory" DSN.
type InMemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]RefreshToken
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{tokens: make(map[string]RefreshToken)}
}

func (r *InMemoryRepository) Create(ctx context.Context, accountID string, token string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = RefreshToken{
		Token:     token,
		AccountID: accountID,
		Expires:   time.Now().UTC().Add(validity),
	}
	return nil
}

func (r *InMemoryRepository) Find(ctx context.Context, token string) (*RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.tokens[token]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &rt, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}
