// Package ledger implements the credit engine: every credit grant and every
// conversion debit goes through it, and it is the only writer of an
// account's balance and usage history.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/statementkit/statementkit/internal/server/accounts"
	"github.com/statementkit/statementkit/internal/server/config"
	"github.com/statementkit/statementkit/internal/shared"
)

// Grant labels as they appear in the credit usage history.
const (
	LabelWelcomeBonus  = "Welcome Bonus"
	LabelDailyBonus    = "Daily login bonus"
	LabelReferralBonus = "Referral bonus"
)

// FileEstimate is one file of a conversion batch: its name and the page
// count the simulator fabricated for it.
type FileEstimate struct {
	Name  string
	Pages int
}

type Engine struct {
	store accounts.Store

	welcomeBonus  int
	dailyBonus    int
	referralBonus int

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewEngine(store accounts.Store, cfg *config.Config) *Engine {
	return &Engine{
		store:         store,
		welcomeBonus:  cfg.WelcomeBonus,
		dailyBonus:    cfg.DailyBonus,
		referralBonus: cfg.ReferralBonus,
		inFlight:      make(map[string]struct{}),
	}
}

// DerivedBalance folds a credit usage history into the balance it implies.
// The stored Credits field must always equal this value.
func DerivedBalance(entries []accounts.LedgerEntry) int {
	balance := 0
	for _, e := range entries {
		balance -= e.CreditsUsed
	}
	return balance
}

// OpenAccount creates a new account with the welcome bonus and its seed
// ledger entry in one transaction. Fails with shared.ErrEmailTaken when the
// email is already registered.
func (e *Engine) OpenAccount(ctx context.Context, name, email string, passwordHash, passwordSalt []byte) (*accounts.Account, error) {

	referralCode, err := shared.MakeReferralCode()
	if err != nil {
		return nil, fmt.Errorf("error generating referral code: %w", err)
	}

	now := time.Now().UTC()
	account := &accounts.Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		PasswordSalt: passwordSalt,
		Credits:      e.welcomeBonus,
		ReferralCode: referralCode,
		JoinDate:     now,
	}

	err = e.store.WithinTx(ctx, func(ctx context.Context, r accounts.Repository) error {
		if err := r.Create(ctx, account); err != nil {
			return err
		}
		return r.AppendLedgerEntry(ctx, account.ID, &accounts.LedgerEntry{
			ID:          uuid.NewString(),
			Label:       LabelWelcomeBonus,
			Date:        now,
			CreditsUsed: -e.welcomeBonus,
			Type:        accounts.EntryTypeEarned,
		})
	})
	if err != nil {
		return nil, err
	}

	return e.store.GetByID(ctx, account.ID)
}

func (e *Engine) acquire(accountID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inFlight[accountID]; busy {
		return shared.ErrConversionInFlight
	}
	e.inFlight[accountID] = struct{}{}
	return nil
}

func (e *Engine) release(accountID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, accountID)
}

// ApplyConversion debits one credit per page for the whole batch and appends
// the matching history records, all-or-nothing. Only one batch per account
// may be in flight; a second concurrent call fails with
// shared.ErrConversionInFlight. On success the refreshed account is returned.
func (e *Engine) ApplyConversion(ctx context.Context, accountID string, files []FileEstimate) (*accounts.Account, error) {
	return e.RunConversion(ctx, accountID, files, nil)
}

// RunConversion is ApplyConversion with the conversion itself in the middle:
// the account's in-flight slot is taken before wait runs and held until the
// batch is applied, so a second batch is rejected for the whole conversion,
// not just the final transaction. A nil wait applies immediately.
func (e *Engine) RunConversion(ctx context.Context, accountID string, files []FileEstimate, wait func()) (*accounts.Account, error) {

	if err := e.acquire(accountID); err != nil {
		return nil, err
	}
	defer e.release(accountID)

	totalCost := 0
	for _, f := range files {
		if f.Pages < 1 {
			return nil, fmt.Errorf("invalid page count %d for %q", f.Pages, f.Name)
		}
		totalCost += f.Pages
	}

	if wait != nil {
		wait()
	}

	now := time.Now().UTC()

	err := e.store.WithinTx(ctx, func(ctx context.Context, r accounts.Repository) error {
		account, err := r.GetByID(ctx, accountID)
		if err != nil {
			return err
		}

		if account.Credits < totalCost {
			return shared.ErrInsufficientCredits
		}

		for _, f := range files {
			rec := &accounts.ConversionRecord{
				ID:       uuid.NewString(),
				FileName: f.Name,
				Date:     now,
				Pages:    f.Pages,
				Credits:  f.Pages,
				Status:   accounts.StatusCompleted,
			}
			if err := r.AppendConversion(ctx, accountID, rec); err != nil {
				return err
			}
			entry := &accounts.LedgerEntry{
				ID:          uuid.NewString(),
				Label:       f.Name,
				Date:        now,
				CreditsUsed: f.Pages,
				Type:        accounts.EntryTypeConversion,
			}
			if err := r.AppendLedgerEntry(ctx, accountID, entry); err != nil {
				return err
			}
		}

		account.Credits -= totalCost
		return r.Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	return e.store.GetByID(ctx, accountID)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// GrantDailyBonus credits the daily login bonus at most once per calendar
// day (UTC). Returns true when the bonus was applied.
func (e *Engine) GrantDailyBonus(ctx context.Context, accountID string) (bool, error) {

	now := time.Now().UTC()
	applied := false

	err := e.store.WithinTx(ctx, func(ctx context.Context, r accounts.Repository) error {
		account, err := r.GetByID(ctx, accountID)
		if err != nil {
			return err
		}

		if account.LastDailyBonus != nil && sameDay(*account.LastDailyBonus, now) {
			return nil
		}

		if err := r.AppendLedgerEntry(ctx, accountID, &accounts.LedgerEntry{
			ID:          uuid.NewString(),
			Label:       LabelDailyBonus,
			Date:        now,
			CreditsUsed: -e.dailyBonus,
			Type:        accounts.EntryTypeEarned,
		}); err != nil {
			return err
		}

		account.Credits += e.dailyBonus
		account.LastDailyBonus = &now
		applied = true
		return r.Update(ctx, account)
	})

	return applied, err
}

// GrantReferralBonus credits the owner of referralCode after referredID
// signed up with it. An unknown or self-referential code is ignored, never
// an error: signup must not fail on a bad code. Returns true when the
// referrer was credited.
func (e *Engine) GrantReferralBonus(ctx context.Context, referralCode, referredID string) (bool, error) {

	referrer, err := e.store.GetByReferralCode(ctx, referralCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if referrer.ID == referredID {
		return false, nil
	}

	now := time.Now().UTC()

	err = e.store.WithinTx(ctx, func(ctx context.Context, r accounts.Repository) error {
		account, err := r.GetByID(ctx, referrer.ID)
		if err != nil {
			return err
		}

		if err := r.AppendLedgerEntry(ctx, account.ID, &accounts.LedgerEntry{
			ID:          uuid.NewString(),
			Label:       LabelReferralBonus,
			Date:        now,
			CreditsUsed: -e.referralBonus,
			Type:        accounts.EntryTypeEarned,
		}); err != nil {
			return err
		}

		account.Credits += e.referralBonus
		return r.Update(ctx, account)
	})
	if err != nil {
		return false, err
	}

	return true, nil
}
