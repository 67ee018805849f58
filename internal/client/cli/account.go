package cli

import (
	"context"
	"fmt"
)

func (a *App) Me(ctx context.Context) error {

	sess, err := a.restore(ctx)
	if err != nil {
		return err
	}

	account := sess.Account
	fmt.Fprintf(a.out, "Name:          %s\n", account.Name)
	fmt.Fprintf(a.out, "Email:         %s\n", account.Email)
	fmt.Fprintf(a.out, "Credits:       %d\n", account.Credits)
	fmt.Fprintf(a.out, "Referral code: %s\n", account.ReferralCode)
	fmt.Fprintf(a.out, "Member since:  %s\n", account.JoinDate.Format("2006-01-02"))
	return nil
}

func (a *App) Credits(ctx context.Context) error {

	sess, err := a.restore(ctx)
	if err != nil {
		return err
	}

	result, err := a.api.Credits(ctx, sess.AccessToken)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Balance: %d credits\n", result.Credits)
	for _, entry := range result.CreditUsage {
		sign := "-"
		amount := entry.CreditsUsed
		if amount < 0 {
			sign = "+"
			amount = -amount
		}
		fmt.Fprintf(a.out, "%s  %s%d  %s\n", entry.Date.Format("2006-01-02"), sign, amount, entry.Label)
	}
	return nil
}

func (a *App) History(ctx context.Context) error {

	sess, err := a.restore(ctx)
	if err != nil {
		return err
	}

	conversions, err := a.api.History(ctx, sess.AccessToken)
	if err != nil {
		return err
	}

	if len(conversions) == 0 {
		fmt.Fprintln(a.out, "No conversions yet.")
		return nil
	}

	for _, c := range conversions {
		fmt.Fprintf(a.out, "%s  %s  %d page(s)  %d credit(s)  %s  [%s]\n",
			c.Date.Format("2006-01-02 15:04"), c.FileName, c.Pages, c.Credits, c.Status, c.ID)
	}
	return nil
}
