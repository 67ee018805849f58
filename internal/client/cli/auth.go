package cli

import (
	"context"
	"fmt"
)

func (a *App) Register(ctx context.Context) error {

	name, err := GetSimpleText(a.reader, "Enter your name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	confirm, err := GetPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	referralCode, err := GetSimpleText(a.reader, "Referral code (leave empty if none)", a.out)
	if err != nil {
		return err
	}

	result, err := a.api.Signup(ctx, name, email, password, confirm, referralCode)
	if err != nil {
		return err
	}

	if err := a.saveAuth(result); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s! You start with %d credits.\n", result.Account.Name, result.Account.Credits)
	fmt.Fprintf(a.out, "Your referral code: %s\n", result.Account.ReferralCode)
	return nil
}

func (a *App) Login(ctx context.Context) error {

	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		return err
	}

	result, err := a.api.Login(ctx, email, password)
	if err != nil {
		return err
	}

	if err := a.saveAuth(result); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s (%d credits)\n", result.Account.Email, result.Account.Credits)
	if result.DailyBonus {
		fmt.Fprintln(a.out, "Daily login bonus applied!")
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {

	sess, err := a.sessions.Load()
	if err != nil {
		return err
	}

	if err := a.api.Logout(ctx, sess.RefreshToken); err != nil {
		return err
	}

	if err := a.sessions.Clear(); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
