// Package accounts implements the account store: the single source of truth
// for identity, credit balance and per-account history.
package accounts

import "time"

// Conversion / ledger entry states.
const (
	StatusCompleted = "completed"

	EntryTypeEarned     = "earned"
	EntryTypeConversion = "conversion"
)

// Account is a registered user together with its credit and usage state.
// Credits are stored redundantly alongside the ledger; the ledger engine is
// the sole writer of both and keeps them consistent in one transaction.
type Account struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   []byte
	PasswordSalt   []byte
	Credits        int
	ReferralCode   string
	JoinDate       time.Time
	LastDailyBonus *time.Time
	ConvertHistory []ConversionRecord
	CreditUsage    []LedgerEntry
}

// ConversionRecord is an immutable record of one completed conversion.
// Credits always equals Pages (1 credit = 1 converted page).
type ConversionRecord struct {
	ID       string
	FileName string
	Date     time.Time
	Pages    int
	Credits  int
	Status   string
}

// LedgerEntry records a single credit movement. CreditsUsed is signed:
// negative = credit granted, positive = credit spent. Label is a file name
// for conversions or a synthetic grant label ("Welcome Bonus", ...).
type LedgerEntry struct {
	ID          string
	Label       string
	Date        time.Time
	CreditsUsed int
	Type        string
}
