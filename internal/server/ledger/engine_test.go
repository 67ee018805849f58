package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/statementkit/statementkit/internal/server/accounts"
	"github.com/statementkit/statementkit/internal/server/config"
	"github.com/statementkit/statementkit/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*Engine, *accounts.InMemoryStore) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	store := accounts.NewInMemoryStore()
	return NewEngine(store, cfg), store
}

func openTestAccount(t *testing.T, e *Engine, email string) *accounts.Account {
	t.Helper()
	a, err := e.OpenAccount(context.Background(), "Jane", email, []byte{1}, []byte{2})
	require.NoError(t, err)
	return a
}

func TestOpenAccount_SeedsWelcomeBonus(t *testing.T) {
	e, _ := newTestEngine(t)

	a := openTestAccount(t, e, "jane@x.com")

	assert.Equal(t, 25, a.Credits)
	require.Len(t, a.CreditUsage, 1)
	assert.Equal(t, accounts.EntryTypeEarned, a.CreditUsage[0].Type)
	assert.Equal(t, -25, a.CreditUsage[0].CreditsUsed)
	assert.Equal(t, LabelWelcomeBonus, a.CreditUsage[0].Label)
	assert.Equal(t, a.Credits, DerivedBalance(a.CreditUsage))
	assert.NotEmpty(t, a.ReferralCode)
	assert.Empty(t, a.ConvertHistory)
}

func TestOpenAccount_DuplicateEmail(t *testing.T) {
	e, _ := newTestEngine(t)

	openTestAccount(t, e, "jane@x.com")
	_, err := e.OpenAccount(context.Background(), "Other", "jane@x.com", []byte{1}, []byte{2})
	assert.ErrorIs(t, err, shared.ErrEmailTaken)
}

func TestApplyConversion_DebitsAndAppendsHistory(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	a := openTestAccount(t, e, "jane@x.com")

	got, err := e.ApplyConversion(ctx, a.ID, []FileEstimate{
		{Name: "a.pdf", Pages: 2},
		{Name: "b.pdf", Pages: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, 20, got.Credits)
	require.Len(t, got.ConvertHistory, 2)
	// newest first: the last file of the batch comes out on top
	assert.Equal(t, "b.pdf", got.ConvertHistory[0].FileName)
	assert.Equal(t, 3, got.ConvertHistory[0].Pages)
	assert.Equal(t, 3, got.ConvertHistory[0].Credits)
	assert.Equal(t, accounts.StatusCompleted, got.ConvertHistory[0].Status)
	assert.Equal(t, "a.pdf", got.ConvertHistory[1].FileName)

	require.Len(t, got.CreditUsage, 3) // welcome + 2 conversions
	spent := 0
	for _, entry := range got.CreditUsage {
		if entry.Type == accounts.EntryTypeConversion {
			spent += entry.CreditsUsed
		}
	}
	assert.Equal(t, 5, spent)
	assert.Equal(t, got.Credits, DerivedBalance(got.CreditUsage))
}

func TestApplyConversion_SingleFileScenario(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	a := openTestAccount(t, e, "jane@x.com")

	got, err := e.ApplyConversion(ctx, a.ID, []FileEstimate{{Name: "a.pdf", Pages: 5}})
	require.NoError(t, err)
	assert.Equal(t, 20, got.Credits)
	require.Len(t, got.ConvertHistory, 1)
	assert.Equal(t, 5, got.ConvertHistory[0].Pages)
}

func TestApplyConversion_InsufficientCreditsIsAllOrNothing(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	a := openTestAccount(t, e, "jane@x.com")

	// drain down to 3 credits
	_, err := e.ApplyConversion(ctx, a.ID, []FileEstimate{
		{Name: "big.pdf", Pages: 5}, {Name: "big2.pdf", Pages: 5},
		{Name: "big3.pdf", Pages: 5}, {Name: "big4.pdf", Pages: 5},
		{Name: "small.pdf", Pages: 2},
	})
	require.NoError(t, err)

	before, err := store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, 3, before.Credits)

	_, err = e.ApplyConversion(ctx, a.ID, []FileEstimate{
		{Name: "c.pdf", Pages: 2}, {Name: "d.pdf", Pages: 3},
	})
	assert.ErrorIs(t, err, shared.ErrInsufficientCredits)

	after, err := store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after, "account must be unchanged after a failed batch")
}

func TestApplyConversion_UnknownAccount(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.ApplyConversion(context.Background(), "missing", []FileEstimate{{Name: "a.pdf", Pages: 1}})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestApplyConversion_RejectsNonPositivePages(t *testing.T) {
	e, _ := newTestEngine(t)

	a := openTestAccount(t, e, "jane@x.com")
	_, err := e.ApplyConversion(context.Background(), a.ID, []FileEstimate{{Name: "a.pdf", Pages: 0}})
	assert.Error(t, err)
}

func TestApplyConversion_SecondBatchWhileInFlight(t *testing.T) {
	e, _ := newTestEngine(t)

	a := openTestAccount(t, e, "jane@x.com")

	require.NoError(t, e.acquire(a.ID))
	defer e.release(a.ID)

	_, err := e.ApplyConversion(context.Background(), a.ID, []FileEstimate{{Name: "a.pdf", Pages: 1}})
	assert.ErrorIs(t, err, shared.ErrConversionInFlight)
}

func TestRunConversion_SlotHeldThroughWait(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	a := openTestAccount(t, e, "jane@x.com")

	waiting := make(chan struct{})
	finish := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		_, err := e.RunConversion(ctx, a.ID, []FileEstimate{{Name: "a.pdf", Pages: 2}}, func() {
			close(waiting)
			<-finish
		})
		done <- err
	}()

	// While the first batch sits in its simulated delay, a second one for the
	// same account must be rejected.
	<-waiting
	_, err := e.ApplyConversion(ctx, a.ID, []FileEstimate{{Name: "b.pdf", Pages: 1}})
	assert.ErrorIs(t, err, shared.ErrConversionInFlight)

	close(finish)
	require.NoError(t, <-done)

	// Once the slot is released, the next batch goes through.
	_, err = e.ApplyConversion(ctx, a.ID, []FileEstimate{{Name: "b.pdf", Pages: 1}})
	require.NoError(t, err)
}

func TestApplyConversion_ConcurrentBatchesNeverOverspend(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	a := openTestAccount(t, e, "jane@x.com")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.ApplyConversion(ctx, a.ID, []FileEstimate{{Name: "x.pdf", Pages: 4}})
		}()
	}
	wg.Wait()

	got, err := store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.Credits, 0)
	assert.Equal(t, got.Credits, DerivedBalance(got.CreditUsage))
}

func TestGrantDailyBonus_OncePerDay(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	a := openTestAccount(t, e, "jane@x.com")

	applied, err := e.GrantDailyBonus(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = e.GrantDailyBonus(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, applied, "second grant on the same day must be a no-op")

	got, err := store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, got.Credits)
	require.NotNil(t, got.LastDailyBonus)
	assert.Equal(t, got.Credits, DerivedBalance(got.CreditUsage))
}

func TestGrantDailyBonus_AppliesAgainNextDay(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	a := openTestAccount(t, e, "jane@x.com")

	got, err := store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	got.LastDailyBonus = &yesterday
	require.NoError(t, store.Update(ctx, got))

	applied, err := e.GrantDailyBonus(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestGrantReferralBonus(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	referrer := openTestAccount(t, e, "ref@x.com")
	referred := openTestAccount(t, e, "new@x.com")

	credited, err := e.GrantReferralBonus(ctx, referrer.ReferralCode, referred.ID)
	require.NoError(t, err)
	assert.True(t, credited)

	got, err := store.GetByID(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, got.Credits)
	assert.Equal(t, LabelReferralBonus, got.CreditUsage[0].Label)
	assert.Equal(t, -15, got.CreditUsage[0].CreditsUsed)
	assert.Equal(t, accounts.EntryTypeEarned, got.CreditUsage[0].Type)
}

func TestGrantReferralBonus_UnknownOrOwnCodeIgnored(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	a := openTestAccount(t, e, "jane@x.com")

	credited, err := e.GrantReferralBonus(ctx, "REFDOESNOTEXIST", a.ID)
	require.NoError(t, err)
	assert.False(t, credited)

	credited, err = e.GrantReferralBonus(ctx, a.ReferralCode, a.ID)
	require.NoError(t, err)
	assert.False(t, credited)

	got, err := store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, got.Credits)
}
