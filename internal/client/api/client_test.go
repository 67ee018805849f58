package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statementkit/statementkit/internal/shared"
)

func TestLogin(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/login", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user@example.com", req["email"])
		json.NewEncoder(w).Encode(AuthResult{
			AccessToken:  "access",
			RefreshToken: "refresh",
			Account:      Account{Email: "user@example.com", Credits: 30},
			DailyBonus:   true,
		})
	}))
	defer ts.Close()

	result, err := NewClient(ts.URL).Login(context.Background(), "user@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "access", result.AccessToken)
	assert.Equal(t, 30, result.Account.Credits)
	assert.True(t, result.DailyBonus)
}

func TestSentinelMapping(t *testing.T) {
	tests := []struct {
		code   string
		status int
		want   error
	}{
		{"email_taken", http.StatusConflict, shared.ErrEmailTaken},
		{"wrong_password", http.StatusUnauthorized, shared.ErrWrongPassword},
		{"unauthorized", http.StatusUnauthorized, shared.ErrUnauthorized},
		{"insufficient_credits", http.StatusPaymentRequired, shared.ErrInsufficientCredits},
		{"not_found", http.StatusNotFound, shared.ErrNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				json.NewEncoder(w).Encode(errorResponse{Error: tc.code, Message: tc.code})
			}))
			defer ts.Close()

			_, err := NewClient(ts.URL).Me(context.Background(), "token")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUnknownErrorCode(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		json.NewEncoder(w).Encode(errorResponse{Error: "weird", Message: "something odd"})
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).Me(context.Background(), "token")
	require.Error(t, err)
	assert.Equal(t, "something odd", err.Error())
}

func TestDownload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/conversions/abc/download", r.URL.Path)
		w.Header().Set("Content-Disposition", `attachment; filename="jan.xlsx"`)
		w.Write([]byte("workbook-bytes"))
	}))
	defer ts.Close()

	name, data, err := NewClient(ts.URL).Download(context.Background(), "token", "abc")
	require.NoError(t, err)
	assert.Equal(t, "jan.xlsx", name)
	assert.Equal(t, []byte("workbook-bytes"), data)
}
