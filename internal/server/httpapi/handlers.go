package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/statementkit/statementkit/internal/server/convert"
	"github.com/statementkit/statementkit/internal/server/ledger"
	"github.com/statementkit/statementkit/internal/shared"
)

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "malformed JSON body"})
		return
	}

	account, pair, err := s.sessions.Signup(r.Context(), req.Name, req.Email, req.Password, req.ConfirmPassword, req.ReferralCode)
	if err != nil {
		respondError(w, err)
		return
	}

	s.logger.Info(r.Context(), "account created", "email", account.Email)
	respondJSON(w, http.StatusCreated, authResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Account:      toAccountView(account),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "malformed JSON body"})
		return
	}

	account, pair, dailyBonus, err := s.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, authResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Account:      toAccountView(account),
		DailyBonus:   dailyBonus,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "malformed JSON body"})
		return
	}

	pair, err := s.sessions.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "malformed JSON body"})
		return
	}

	if err := s.sessions.Logout(r.Context(), req.RefreshToken); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, toAccountView(accountFrom(r.Context())))
}

// handleConvert runs one conversion batch: the simulator fabricates page
// counts and waits out the simulated latency, then the ledger engine applies
// the whole batch atomically.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r.Context())

	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "malformed JSON body"})
		return
	}
	if len(req.Files) == 0 {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "no files uploaded"})
		return
	}

	descriptors := make([]convert.FileDescriptor, 0, len(req.Files))
	for _, f := range req.Files {
		if f.Name == "" {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "file name is required"})
			return
		}
		descriptors = append(descriptors, convert.FileDescriptor{Name: f.Name, Size: f.Size})
	}

	estimates := s.simulator.EstimateBatch(descriptors)

	files := make([]ledger.FileEstimate, 0, len(estimates))
	totalCost := 0
	for _, e := range estimates {
		files = append(files, ledger.FileEstimate{Name: e.Name, Pages: e.Pages})
		totalCost += e.Pages
	}

	// The simulated conversion runs inside the account's in-flight slot, so
	// an overlapping batch is rejected for the whole delay.
	updated, err := s.engine.RunConversion(r.Context(), account.ID, files, s.simulator.Wait)
	if err != nil {
		respondError(w, err)
		return
	}

	conversionsTotal.Add(float64(len(files)))
	creditsSpentTotal.Add(float64(totalCost))

	recent := updated.ConvertHistory
	if len(recent) > len(files) {
		recent = recent[:len(files)]
	}

	respondJSON(w, http.StatusOK, convertResponse{
		Conversions:      toConversionViews(recent),
		CreditsUsed:      totalCost,
		RemainingCredits: updated.Credits,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{
		"conversions": toConversionViews(account.ConvertHistory),
	})
}

func (s *Server) handleCredits(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r.Context())
	respondJSON(w, http.StatusOK, creditsResponse{
		Credits:     account.Credits,
		CreditUsage: toLedgerEntryViews(account.CreditUsage),
	})
}

// handleDownload synthesizes the xlsx result for one completed conversion.
// Results are never stored; the workbook is rebuilt on every request.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r.Context())
	id := mux.Vars(r)["id"]

	rec, err := s.store.GetConversion(r.Context(), account.ID, id)
	if err != nil {
		respondError(w, err)
		return
	}

	workbook, err := convert.BuildWorkbook(rec)
	if err != nil {
		s.logger.Error(r.Context(), "workbook build failed", "error", err.Error())
		respondError(w, shared.ErrInternal)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", convert.WorkbookFileName(rec.FileName)))
	_, _ = w.Write(workbook)
}

// handleGuestConvert serves unauthenticated conversions: one per IP per
// month, single-page files only, no ledger involvement.
func (s *Server) handleGuestConvert(w http.ResponseWriter, r *http.Request) {
	var req guestConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "malformed JSON body"})
		return
	}
	if req.File.Name == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "file name is required"})
		return
	}

	estimate := s.simulator.EstimateBatch([]convert.FileDescriptor{{Name: req.File.Name, Size: req.File.Size}})[0]
	if estimate.Pages > s.guests.PageLimit() {
		respondError(w, shared.ErrGuestPageLimit)
		return
	}

	// The quota unit is consumed up front, in one atomic step, so overlapping
	// requests from one IP cannot both slip through during the delay.
	if err := s.guests.Reserve(r.Context(), clientIP(r)); err != nil {
		respondError(w, err)
		return
	}

	s.simulator.Wait()

	guestConversionsTotal.Inc()
	respondJSON(w, http.StatusOK, guestConvertResponse{
		FileName: convert.WorkbookFileName(estimate.Name),
		Pages:    estimate.Pages,
		Status:   "completed",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
