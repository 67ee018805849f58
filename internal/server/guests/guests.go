// Package guests enforces the unauthenticated conversion quota: one free
// conversion per IP per calendar month, single-page files only.
package guests

import (
	"context"
	"time"

	"github.com/statementkit/statementkit/internal/shared"
)

// Repository tracks guest conversion counts per (ip, YYYY-MM) bucket.
type Repository interface {
	// TryIncrement bumps the bucket's count by one unless it already reached
	// limit. Check and increment are a single atomic step; the returned bool
	// reports whether the unit was consumed.
	TryIncrement(ctx context.Context, ip, monthYear string, limit int) (bool, error)
}

type Service struct {
	repo         Repository
	monthlyLimit int
	pageLimit    int
	now          func() time.Time
}

func NewService(repo Repository, monthlyLimit, pageLimit int) *Service {
	return &Service{
		repo:         repo,
		monthlyLimit: monthlyLimit,
		pageLimit:    pageLimit,
		now:          time.Now,
	}
}

func (s *Service) monthYear() string {
	return s.now().UTC().Format("2006-01")
}

// PageLimit is the maximum page count a guest file may have.
func (s *Service) PageLimit() int {
	return s.pageLimit
}

// Reserve consumes one unit of the IP's monthly quota, failing with
// shared.ErrGuestQuota when the month's allowance is already used up. Two
// overlapping calls for the same IP can never both succeed on the last unit.
func (s *Service) Reserve(ctx context.Context, ip string) error {
	ok, err := s.repo.TryIncrement(ctx, ip, s.monthYear(), s.monthlyLimit)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrGuestQuota
	}
	return nil
}
