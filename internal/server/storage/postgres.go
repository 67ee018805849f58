package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/statementkit/statementkit/internal/server/accounts"
	"github.com/statementkit/statementkit/internal/server/guests"
	"github.com/statementkit/statementkit/internal/server/migrations"
	"github.com/statementkit/statementkit/internal/server/sessions"
)

type PostgresManager struct {
	db       *sql.DB
	accounts accounts.Store
	sessions sessions.Repository
	guests   guests.Repository
}

func NewPostgresManager(dsn string) (*PostgresManager, error) {

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresManager{
		db:       db,
		accounts: accounts.NewPostgresStore(db),
		sessions: sessions.NewPostgresRepository(db),
		guests:   guests.NewPostgresRepository(db),
	}

	if err := m.runMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}

func (m *PostgresManager) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	return goose.UpContext(ctx, m.db, ".")
}

func (m *PostgresManager) Accounts() accounts.Store      { return m.accounts }
func (m *PostgresManager) Sessions() sessions.Repository { return m.sessions }
func (m *PostgresManager) Guests() guests.Repository     { return m.guests }
func (m *PostgresManager) Close() error                  { return m.db.Close() }
