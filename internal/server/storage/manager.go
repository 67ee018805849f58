// Package storage selects and wires the persistence backend: Postgres for
// real deployments, in-memory for tests and local runs.
package storage

import (
	"github.com/statementkit/statementkit/internal/server/accounts"
	"github.com/statementkit/statementkit/internal/server/guests"
	"github.com/statementkit/statementkit/internal/server/sessions"
)

// Manager hands out the repositories of one backend. All repositories of a
// manager share the same underlying state.
type Manager interface {
	Accounts() accounts.Store
	Sessions() sessions.Repository
	Guests() guests.Repository
	Close() error
}

// NewManager picks the backend from the DSN: the literal "memory" selects the
// in-memory backend, anything else is treated as a Postgres DSN.
func NewManager(dsn string) (Manager, error) {
	if dsn == "memory" {
		return NewInMemoryManager(), nil
	}
	return NewPostgresManager(dsn)
}
