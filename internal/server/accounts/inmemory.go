package accounts

import (
	"context"
	"sync"

	"github.com/statementkit/statementkit/internal/shared"
)

// InMemoryStore is a map-backed Store used by tests and by the "memory" DSN.
// WithinTx snapshots the whole state and restores it when fn fails, so the
// all-or-nothing contract holds without a database.
type InMemoryStore struct {
	mu       sync.Mutex
	accounts map[string]*Account // keyed by id, histories newest first
	byEmail  map[string]string
	byCode   map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		accounts: make(map[string]*Account),
		byEmail:  make(map[string]string),
		byCode:   make(map[string]string),
	}
}

func cloneAccount(a *Account) *Account {
	c := *a
	if a.LastDailyBonus != nil {
		d := *a.LastDailyBonus
		c.LastDailyBonus = &d
	}
	c.PasswordHash = append([]byte(nil), a.PasswordHash...)
	c.PasswordSalt = append([]byte(nil), a.PasswordSalt...)
	c.ConvertHistory = append([]ConversionRecord(nil), a.ConvertHistory...)
	c.CreditUsage = append([]LedgerEntry(nil), a.CreditUsage...)
	return &c
}

func (s *InMemoryStore) snapshot() map[string]*Account {
	snap := make(map[string]*Account, len(s.accounts))
	for id, a := range s.accounts {
		snap[id] = cloneAccount(a)
	}
	return snap
}

func (s *InMemoryStore) restore(snap map[string]*Account) {
	s.accounts = snap
	s.byEmail = make(map[string]string, len(snap))
	s.byCode = make(map[string]string, len(snap))
	for id, a := range snap {
		s.byEmail[a.Email] = id
		s.byCode[a.ReferralCode] = id
	}
}

// WithinTx runs fn against an unlocked view of the store while holding the
// store lock; on error every change fn made is rolled back.
func (s *InMemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx, (*unlockedStore)(s)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// unlockedStore exposes the repository methods without taking the lock;
// only WithinTx hands it out.
type unlockedStore InMemoryStore

func (s *InMemoryStore) Create(ctx context.Context, a *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*unlockedStore)(s).Create(ctx, a)
}

func (s *InMemoryStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*unlockedStore)(s).GetByEmail(ctx, email)
}

func (s *InMemoryStore) GetByID(ctx context.Context, id string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*unlockedStore)(s).GetByID(ctx, id)
}

func (s *InMemoryStore) GetByReferralCode(ctx context.Context, code string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*unlockedStore)(s).GetByReferralCode(ctx, code)
}

func (s *InMemoryStore) Update(ctx context.Context, a *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*unlockedStore)(s).Update(ctx, a)
}

func (s *InMemoryStore) AppendConversion(ctx context.Context, accountID string, rec *ConversionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*unlockedStore)(s).AppendConversion(ctx, accountID, rec)
}

func (s *InMemoryStore) AppendLedgerEntry(ctx context.Context, accountID string, e *LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*unlockedStore)(s).AppendLedgerEntry(ctx, accountID, e)
}

func (s *InMemoryStore) ListConversions(ctx context.Context, accountID string) ([]ConversionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*unlockedStore)(s).ListConversions(ctx, accountID)
}

func (s *InMemoryStore) ListLedgerEntries(ctx context.Context, accountID string) ([]LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*unlockedStore)(s).ListLedgerEntries(ctx, accountID)
}

func (s *InMemoryStore) GetConversion(ctx context.Context, accountID, id string) (*ConversionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*unlockedStore)(s).GetConversion(ctx, accountID, id)
}

func (s *unlockedStore) Create(ctx context.Context, a *Account) error {
	if _, ok := s.byEmail[a.Email]; ok {
		return shared.ErrEmailTaken
	}
	s.accounts[a.ID] = cloneAccount(a)
	s.byEmail[a.Email] = a.ID
	s.byCode[a.ReferralCode] = a.ID
	return nil
}

func (s *unlockedStore) get(id string) (*Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneAccount(a), nil
}

func (s *unlockedStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	id, ok := s.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return s.get(id)
}

func (s *unlockedStore) GetByID(ctx context.Context, id string) (*Account, error) {
	return s.get(id)
}

func (s *unlockedStore) GetByReferralCode(ctx context.Context, code string) (*Account, error) {
	id, ok := s.byCode[code]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return s.get(id)
}

func (s *unlockedStore) Update(ctx context.Context, a *Account) error {
	stored, ok := s.accounts[a.ID]
	if !ok {
		return shared.ErrNotFound
	}
	stored.Credits = a.Credits
	stored.Name = a.Name
	if a.LastDailyBonus != nil {
		d := *a.LastDailyBonus
		stored.LastDailyBonus = &d
	} else {
		stored.LastDailyBonus = nil
	}
	return nil
}

func (s *unlockedStore) AppendConversion(ctx context.Context, accountID string, rec *ConversionRecord) error {
	a, ok := s.accounts[accountID]
	if !ok {
		return shared.ErrNotFound
	}
	a.ConvertHistory = append([]ConversionRecord{*rec}, a.ConvertHistory...)
	return nil
}

func (s *unlockedStore) AppendLedgerEntry(ctx context.Context, accountID string, e *LedgerEntry) error {
	a, ok := s.accounts[accountID]
	if !ok {
		return shared.ErrNotFound
	}
	a.CreditUsage = append([]LedgerEntry{*e}, a.CreditUsage...)
	return nil
}

func (s *unlockedStore) ListConversions(ctx context.Context, accountID string) ([]ConversionRecord, error) {
	a, ok := s.accounts[accountID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return append([]ConversionRecord(nil), a.ConvertHistory...), nil
}

func (s *unlockedStore) ListLedgerEntries(ctx context.Context, accountID string) ([]LedgerEntry, error) {
	a, ok := s.accounts[accountID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return append([]LedgerEntry(nil), a.CreditUsage...), nil
}

func (s *unlockedStore) GetConversion(ctx context.Context, accountID, id string) (*ConversionRecord, error) {
	a, ok := s.accounts[accountID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	for i := range a.ConvertHistory {
		if a.ConvertHistory[i].ID == id {
			rec := a.ConvertHistory[i]
			return &rec, nil
		}
	}
	return nil, shared.ErrNotFound
}
