package storage

import (
	"github.com/statementkit/statementkit/internal/server/accounts"
	"github.com/statementkit/statementkit/internal/server/guests"
	"github.com/statementkit/statementkit/internal/server/sessions"
)

type InMemoryManager struct {
	accounts *accounts.InMemoryStore
	sessions *sessions.InMemoryRepository
	guests   *guests.InMemoryRepository
}

func NewInMemoryManager() *InMemoryManager {
	return &InMemoryManager{
		accounts: accounts.NewInMemoryStore(),
		sessions: sessions.NewInMemoryRepository(),
		guests:   guests.NewInMemoryRepository(),
	}
}

func (m *InMemoryManager) Accounts() accounts.Store      { return m.accounts }
func (m *InMemoryManager) Sessions() sessions.Repository { return m.sessions }
func (m *InMemoryManager) Guests() guests.Repository     { return m.guests }
func (m *InMemoryManager) Close() error                  { return nil }
