package accounts

import "context"

// Repository is the durable collection of accounts, keyed by unique email.
// Mutation goes through Update only: callers read, copy, modify, then Update.
// History rows are append-only and listed newest first.
type Repository interface {
	// Create persists a new account. It fails with shared.ErrEmailTaken when
	// the email is already registered.
	Create(ctx context.Context, account *Account) error

	// GetByEmail / GetByID / GetByReferralCode return the account with its
	// histories loaded, or shared.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByReferralCode(ctx context.Context, code string) (*Account, error)

	// Update overwrites the mutable fields (credits, last daily bonus) of the
	// stored record matching account.ID; shared.ErrNotFound if it is gone.
	Update(ctx context.Context, account *Account) error

	AppendConversion(ctx context.Context, accountID string, rec *ConversionRecord) error
	AppendLedgerEntry(ctx context.Context, accountID string, entry *LedgerEntry) error

	ListConversions(ctx context.Context, accountID string) ([]ConversionRecord, error)
	ListLedgerEntries(ctx context.Context, accountID string) ([]LedgerEntry, error)
	GetConversion(ctx context.Context, accountID, id string) (*ConversionRecord, error)
}

// Store is a Repository that can additionally run a sequence of repository
// operations atomically: either every operation inside fn is applied, or
// none is.
type Store interface {
	Repository
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error
}
