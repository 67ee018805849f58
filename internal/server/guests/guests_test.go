package guests

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statementkit/statementkit/internal/shared"
)

func TestService_MonthlyQuota(t *testing.T) {
	s := NewService(NewInMemoryRepository(), 1, 1)
	ctx := context.Background()

	require.NoError(t, s.Reserve(ctx, "203.0.113.7"))
	assert.ErrorIs(t, s.Reserve(ctx, "203.0.113.7"), shared.ErrGuestQuota)

	// a different IP is unaffected
	require.NoError(t, s.Reserve(ctx, "203.0.113.8"))
}

func TestService_QuotaResetsNextMonth(t *testing.T) {
	s := NewService(NewInMemoryRepository(), 1, 1)
	ctx := context.Background()

	now := time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Reserve(ctx, "203.0.113.7"))
	assert.ErrorIs(t, s.Reserve(ctx, "203.0.113.7"), shared.ErrGuestQuota)

	now = now.AddDate(0, 0, 1) // April 1st
	require.NoError(t, s.Reserve(ctx, "203.0.113.7"))
}

func TestService_ReserveIsAtomic(t *testing.T) {
	// Overlapping reservations for the last remaining unit must not both
	// succeed.
	s := NewService(NewInMemoryRepository(), 1, 1)
	ctx := context.Background()

	var succeeded int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Reserve(ctx, "203.0.113.7") == nil {
				atomic.AddInt32(&succeeded, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded)
}
