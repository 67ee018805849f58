package sessions

import (
	"context"
	"time"
)

// RefreshToken is the server-side half of a session: an opaque token bound
// to an account with an expiry.
type RefreshToken struct {
	Token     string
	AccountID string
	Expires   time.Time
}

type Repository interface {
	Create(ctx context.Context, accountID string, token string, validity time.Duration) error
	Find(ctx context.Context, token string) (*RefreshToken, error)
	Delete(ctx context.Context, token string) error
}
