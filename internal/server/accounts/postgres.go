package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/statementkit/statementkit/internal/dbx"
	"github.com/statementkit/statementkit/internal/shared"
)

// PostgresRepository implements Repository over a DBTX
// (either *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// PostgresStore wraps PostgresRepository with transaction support.
type PostgresStore struct {
	*PostgresRepository
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{PostgresRepository: NewPostgresRepository(db), db: db}
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, NewPostgresRepository(tx))
	})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PostgresRepository) Create(ctx context.Context, a *Account) error {

	query :=
		`INSERT INTO accounts (id, name, email, password_hash, password_salt, credits, referral_code, join_date)
	     VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 `

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Name, a.Email, a.PasswordHash, a.PasswordSalt, a.Credits, a.ReferralCode, a.JoinDate)

	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrEmailTaken
		}
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}

func (r *PostgresRepository) getByField(ctx context.Context, field, value string) (*Account, error) {
	query := fmt.Sprintf(
		`SELECT id, name, email, password_hash, password_salt, credits, referral_code, join_date, last_daily_bonus
		 FROM accounts WHERE %s = $1`, field)

	a := &Account{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.PasswordSalt,
		&a.Credits, &a.ReferralCode, &a.JoinDate, &a.LastDailyBonus)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	if a.ConvertHistory, err = r.ListConversions(ctx, a.ID); err != nil {
		return nil, err
	}
	if a.CreditUsage, err = r.ListLedgerEntries(ctx, a.ID); err != nil {
		return nil, err
	}

	return a, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return r.getByField(ctx, "email", email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Account, error) {
	return r.getByField(ctx, "id", id)
}

func (r *PostgresRepository) GetByReferralCode(ctx context.Context, code string) (*Account, error) {
	return r.getByField(ctx, "referral_code", code)
}

func (r *PostgresRepository) Update(ctx context.Context, a *Account) error {
	query :=
		`UPDATE accounts SET credits = $1, last_daily_bonus = $2, name = $3
		 WHERE id = $4`

	res, err := r.db.ExecContext(ctx, query, a.Credits, a.LastDailyBonus, a.Name, a.ID)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return shared.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) AppendConversion(ctx context.Context, accountID string, rec *ConversionRecord) error {
	query :=
		`INSERT INTO conversions (id, account_id, file_name, pages, credits, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, accountID, rec.FileName, rec.Pages, rec.Credits, rec.Status, rec.Date)
	if err != nil {
		return fmt.Errorf("failed to insert conversion: %w", err)
	}
	return nil
}

func (r *PostgresRepository) AppendLedgerEntry(ctx context.Context, accountID string, e *LedgerEntry) error {
	query :=
		`INSERT INTO ledger_entries (id, account_id, label, credits_used, entry_type, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		e.ID, accountID, e.Label, e.CreditsUsed, e.Type, e.Date)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return nil
}

// ListConversions returns the account's conversion history, newest first.
// Ordering is by the insertion sequence, not the timestamp, so entries of a
// single batch keep their relative order.
func (r *PostgresRepository) ListConversions(ctx context.Context, accountID string) ([]ConversionRecord, error) {
	query :=
		`SELECT id, file_name, pages, credits, status, created_at
		 FROM conversions WHERE account_id = $1 ORDER BY seq DESC`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to select conversions: %w", err)
	}
	defer rows.Close()

	var result []ConversionRecord
	for rows.Next() {
		var item ConversionRecord
		if err := rows.Scan(&item.ID, &item.FileName, &item.Pages, &item.Credits, &item.Status, &item.Date); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListLedgerEntries returns the account's credit usage, newest first.
func (r *PostgresRepository) ListLedgerEntries(ctx context.Context, accountID string) ([]LedgerEntry, error) {
	query :=
		`SELECT id, label, credits_used, entry_type, created_at
		 FROM ledger_entries WHERE account_id = $1 ORDER BY seq DESC`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to select ledger entries: %w", err)
	}
	defer rows.Close()

	var result []LedgerEntry
	for rows.Next() {
		var item LedgerEntry
		if err := rows.Scan(&item.ID, &item.Label, &item.CreditsUsed, &item.Type, &item.Date); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) GetConversion(ctx context.Context, accountID, id string) (*ConversionRecord, error) {
	query :=
		`SELECT id, file_name, pages, credits, status, created_at
		 FROM conversions WHERE account_id = $1 AND id = $2`

	rec := &ConversionRecord{}
	err := r.db.QueryRowContext(ctx, query, accountID, id).Scan(
		&rec.ID, &rec.FileName, &rec.Pages, &rec.Credits, &rec.Status, &rec.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return rec, nil
}
