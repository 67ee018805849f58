package guests

import (
	"context"
	"fmt"

	"github.com/statementkit/statementkit/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) TryIncrement(ctx context.Context, ip, monthYear string, limit int) (bool, error) {

	// The guarded upsert makes check and increment one statement: a bucket at
	// the limit matches no row and RowsAffected stays zero.
	query :=
		`INSERT INTO guest_conversions (ip_address, month_year, conversions, last_conversion)
		 VALUES ($1, $2, 1, now())
		 ON CONFLICT (ip_address, month_year)
		 DO UPDATE SET conversions = guest_conversions.conversions + 1, last_conversion = now()
		 WHERE guest_conversions.conversions < $3
		 `

	res, err := r.db.ExecContext(ctx, query, ip, monthYear, limit)
	if err != nil {
		return false, fmt.Errorf("error performing sql request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading affected rows: %w", err)
	}

	return affected > 0, nil
}
