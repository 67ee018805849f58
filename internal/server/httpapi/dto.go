package httpapi

import (
	"time"

	"github.com/statementkit/statementkit/internal/server/accounts"
)

type accountView struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Credits      int       `json:"credits"`
	ReferralCode string    `json:"referral_code"`
	JoinDate     time.Time `json:"join_date"`
}

type conversionView struct {
	ID       string    `json:"id"`
	FileName string    `json:"file_name"`
	Date     time.Time `json:"date"`
	Pages    int       `json:"pages"`
	Credits  int       `json:"credits"`
	Status   string    `json:"status"`
}

type ledgerEntryView struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Date        time.Time `json:"date"`
	CreditsUsed int       `json:"credits_used"`
	Type        string    `json:"type"`
}

func toAccountView(a *accounts.Account) accountView {
	return accountView{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		Credits:      a.Credits,
		ReferralCode: a.ReferralCode,
		JoinDate:     a.JoinDate,
	}
}

func toConversionViews(recs []accounts.ConversionRecord) []conversionView {
	views := make([]conversionView, 0, len(recs))
	for _, r := range recs {
		views = append(views, conversionView{
			ID:       r.ID,
			FileName: r.FileName,
			Date:     r.Date,
			Pages:    r.Pages,
			Credits:  r.Credits,
			Status:   r.Status,
		})
	}
	return views
}

func toLedgerEntryViews(entries []accounts.LedgerEntry) []ledgerEntryView {
	views := make([]ledgerEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, ledgerEntryView{
			ID:          e.ID,
			Label:       e.Label,
			Date:        e.Date,
			CreditsUsed: e.CreditsUsed,
			Type:        e.Type,
		})
	}
	return views
}

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	ReferralCode    string `json:"referral_code,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	Account      accountView `json:"account"`
	DailyBonus   bool        `json:"daily_bonus,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type fileUpload struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type convertRequest struct {
	Files []fileUpload `json:"files"`
}

type convertResponse struct {
	Conversions      []conversionView `json:"conversions"`
	CreditsUsed      int              `json:"credits_used"`
	RemainingCredits int              `json:"remaining_credits"`
}

type guestConvertRequest struct {
	File fileUpload `json:"file"`
}

type guestConvertResponse struct {
	FileName string `json:"file_name"`
	Pages    int    `json:"pages"`
	Status   string `json:"status"`
}

type creditsResponse struct {
	Credits     int               `json:"credits"`
	CreditUsage []ledgerEntryView `json:"credit_usage"`
}
