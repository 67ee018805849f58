// Package sessions tracks who is logged in: it validates signups, checks
// credentials, issues and rotates token pairs, and restores sessions
// fail-closed against the authoritative account store.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/statementkit/statementkit/internal/server/accounts"
	"github.com/statementkit/statementkit/internal/server/config"
	"github.com/statementkit/statementkit/internal/server/ledger"
	"github.com/statementkit/statementkit/internal/shared"
)

const minPasswordLength = 6

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type Manager struct {
	store                        accounts.Store
	tokens                       Repository
	engine                       *ledger.Engine
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewManager(store accounts.Store, tokens Repository, engine *ledger.Engine, cfg *config.Config) *Manager {
	return &Manager{
		store:                        store,
		tokens:                       tokens,
		engine:                       engine,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

func (m *Manager) issueTokens(ctx context.Context, accountID string) (*TokenPair, error) {
	accessToken, err := GenerateToken(accountID, m.jwtSecret, m.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	refreshToken, err := shared.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}

	if err := m.tokens.Create(ctx, accountID, refreshToken, m.refreshTokenValidityDuration); err != nil {
		return nil, fmt.Errorf("error saving refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Signup validates the form and creates the account. The check order is part
// of the contract: missing fields, then password mismatch, then password
// length, then duplicate email — the first failing rule is the one the user
// sees. On success the new account is logged in immediately; a referral code
// that resolves to an existing account credits the referrer.
func (m *Manager) Signup(ctx context.Context, name, email, password, confirmPassword, referralCode string) (*accounts.Account, *TokenPair, error) {

	if name == "" || email == "" || password == "" || confirmPassword == "" {
		return nil, nil, shared.ErrMissingFields
	}
	if password != confirmPassword {
		return nil, nil, shared.ErrPasswordMismatch
	}
	if len(password) < minPasswordLength {
		return nil, nil, shared.ErrPasswordTooShort
	}

	hash, salt, err := accounts.HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("error hashing password: %w", err)
	}

	account, err := m.engine.OpenAccount(ctx, name, email, hash, salt)
	if err != nil {
		return nil, nil, err
	}

	// The account is committed at this point; a referral grant that fails is
	// dropped rather than turning a successful signup into an error.
	if referralCode != "" {
		_, _ = m.engine.GrantReferralBonus(ctx, referralCode, account.ID)
	}

	pair, err := m.issueTokens(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}

	return account, pair, nil
}

// Login checks the credentials against the store. Neither failure path
// mutates anything. A successful login triggers the daily bonus check and
// returns whether it was applied.
func (m *Manager) Login(ctx context.Context, email, password string) (*accounts.Account, *TokenPair, bool, error) {

	if email == "" || password == "" {
		return nil, nil, false, shared.ErrMissingFields
	}

	account, err := m.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, false, shared.ErrUserNotFound
		}
		return nil, nil, false, err
	}

	if !accounts.CheckPassword(password, account.PasswordHash, account.PasswordSalt) {
		return nil, nil, false, shared.ErrWrongPassword
	}

	bonusApplied, err := m.engine.GrantDailyBonus(ctx, account.ID)
	if err != nil {
		return nil, nil, false, err
	}
	if bonusApplied {
		if account, err = m.store.GetByID(ctx, account.ID); err != nil {
			return nil, nil, false, err
		}
	}

	pair, err := m.issueTokens(ctx, account.ID)
	if err != nil {
		return nil, nil, false, err
	}

	return account, pair, bonusApplied, nil
}

// Restore resolves an access token back to the current account. It does not
// trust the token alone: the account is re-fetched from the store, and a
// token whose account is gone fails closed with shared.ErrUnauthorized.
func (m *Manager) Restore(ctx context.Context, accessToken string) (*accounts.Account, error) {

	accountID, err := GetAccountIDFromToken(accessToken, m.jwtSecret)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}

	account, err := m.store.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}

	return account, nil
}

// Refresh rotates a refresh token: the old token is deleted and a new pair
// is issued. Expired or unknown tokens fail with shared.ErrUnauthorized.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {

	rt, err := m.tokens.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}

	if time.Now().UTC().After(rt.Expires) {
		_ = m.tokens.Delete(ctx, refreshToken)
		return nil, shared.ErrUnauthorized
	}

	if err := m.tokens.Delete(ctx, refreshToken); err != nil {
		return nil, err
	}

	return m.issueTokens(ctx, rt.AccountID)
}

// Logout clears the session; the account itself is never deleted.
func (m *Manager) Logout(ctx context.Context, refreshToken string) error {
	return m.tokens.Delete(ctx, refreshToken)
}
