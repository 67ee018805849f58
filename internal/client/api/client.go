// Package api is the HTTP client for the statementkit backend. It mirrors the
// server's JSON API and translates error codes back into the shared sentinel
// taxonomy so callers can match with errors.Is.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/statementkit/statementkit/internal/shared"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Credits      int       `json:"credits"`
	ReferralCode string    `json:"referral_code"`
	JoinDate     time.Time `json:"join_date"`
}

type Conversion struct {
	ID       string    `json:"id"`
	FileName string    `json:"file_name"`
	Date     time.Time `json:"date"`
	Pages    int       `json:"pages"`
	Credits  int       `json:"credits"`
	Status   string    `json:"status"`
}

type LedgerEntry struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Date        time.Time `json:"date"`
	CreditsUsed int       `json:"credits_used"`
	Type        string    `json:"type"`
}

type AuthResult struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	Account      Account `json:"account"`
	DailyBonus   bool    `json:"daily_bonus"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type FileUpload struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type ConvertResult struct {
	Conversions      []Conversion `json:"conversions"`
	CreditsUsed      int          `json:"credits_used"`
	RemainingCredits int          `json:"remaining_credits"`
}

type CreditsResult struct {
	Credits     int           `json:"credits"`
	CreditUsage []LedgerEntry `json:"credit_usage"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// sentinelFor maps a wire error code back to the shared taxonomy. Unknown
// codes surface as plain errors carrying the server message.
func sentinelFor(code, message string) error {
	switch code {
	case "missing_fields":
		return shared.ErrMissingFields
	case "password_mismatch":
		return shared.ErrPasswordMismatch
	case "password_too_short":
		return shared.ErrPasswordTooShort
	case "email_taken":
		return shared.ErrEmailTaken
	case "user_not_found":
		return shared.ErrUserNotFound
	case "wrong_password":
		return shared.ErrWrongPassword
	case "unauthorized":
		return shared.ErrUnauthorized
	case "insufficient_credits":
		return shared.ErrInsufficientCredits
	case "conversion_in_flight":
		return shared.ErrConversionInFlight
	case "guest_quota_exceeded":
		return shared.ErrGuestQuota
	case "guest_page_limit":
		return shared.ErrGuestPageLimit
	case "not_found":
		return shared.ErrNotFound
	default:
		return errors.New(message)
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error encoding request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error calling server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var er errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return sentinelFor(er.Error, er.Message)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) Signup(ctx context.Context, name, email, password, confirmPassword, referralCode string) (*AuthResult, error) {
	req := map[string]string{
		"name":             name,
		"email":            email,
		"password":         password,
		"confirm_password": confirmPassword,
		"referral_code":    referralCode,
	}
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/signup", "", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	req := map[string]string{"email": email, "password": password}
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/login", "", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	req := map[string]string{"refresh_token": refreshToken}
	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/api/refresh", "", req, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	req := map[string]string{"refresh_token": refreshToken}
	return c.do(ctx, http.MethodPost, "/api/logout", "", req, nil)
}

func (c *Client) Me(ctx context.Context, accessToken string) (*Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodGet, "/api/me", accessToken, nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) Convert(ctx context.Context, accessToken string, files []FileUpload) (*ConvertResult, error) {
	req := map[string]any{"files": files}
	var result ConvertResult
	if err := c.do(ctx, http.MethodPost, "/api/convert", accessToken, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) History(ctx context.Context, accessToken string) ([]Conversion, error) {
	var result struct {
		Conversions []Conversion `json:"conversions"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/history", accessToken, nil, &result); err != nil {
		return nil, err
	}
	return result.Conversions, nil
}

func (c *Client) Credits(ctx context.Context, accessToken string) (*CreditsResult, error) {
	var result CreditsResult
	if err := c.do(ctx, http.MethodGet, "/api/credits", accessToken, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Download fetches the synthesized workbook for one conversion. The file name
// is taken from the Content-Disposition header.
func (c *Client) Download(ctx context.Context, accessToken, conversionID string) (string, []byte, error) {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/conversions/"+conversionID+"/download", nil)
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("error calling server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var er errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
			return "", nil, fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return "", nil, sentinelFor(er.Error, er.Message)
	}

	name := "statement.xlsx"
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if fn, ok := params["filename"]; ok {
			name = fn
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, err
	}

	return name, data, nil
}
