// Package cli implements the statementkit command-line client. Commands talk
// to the backend HTTP API and cache the current login in a local session
// blob, revalidating it on every authenticated command.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/statementkit/statementkit/internal/client/api"
	"github.com/statementkit/statementkit/internal/client/config"
	"github.com/statementkit/statementkit/internal/client/session"
	"github.com/statementkit/statementkit/internal/shared"
)

type App struct {
	config   *config.Config
	api      *api.Client
	sessions *session.Store
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(c *config.Config) (*App, error) {

	store, err := session.NewStore()
	if err != nil {
		return nil, err
	}

	return &App{
		config:   c,
		api:      api.NewClient(c.ServerEndpointAddr),
		sessions: store,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context, args []string) error {

	if len(args) == 0 {
		a.printUsage()
		return nil
	}

	switch args[0] {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "me":
		return a.Me(ctx)
	case "convert":
		return a.Convert(ctx, args[1:])
	case "history":
		return a.History(ctx)
	case "credits":
		return a.Credits(ctx)
	case "download":
		return a.Download(ctx, args[1:])
	case "logout":
		return a.Logout(ctx)
	default:
		a.printUsage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func (a *App) printUsage() {
	fmt.Fprintln(a.out, `Usage: statementkit [flags] <command>

Commands:
  register              create an account and log in
  login                 log in with email and password
  me                    show the current account
  convert <files...>    convert PDF statements to Excel
  history               list past conversions
  credits               show credit balance and usage
  download <id>         download a conversion result
  logout                log out and forget the local session`)
}

// restore resolves the cached session against the server. An access token the
// server rejects is retried once through the refresh token; if that fails too
// the blob is cleared and the user has to log in again.
func (a *App) restore(ctx context.Context) (*session.Session, error) {

	sess, err := a.sessions.Load()
	if err != nil {
		return nil, err
	}

	account, err := a.api.Me(ctx, sess.AccessToken)
	if err == nil {
		sess.Account = *account
		return sess, nil
	}
	if !errors.Is(err, shared.ErrUnauthorized) {
		return nil, err
	}

	pair, err := a.api.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		_ = a.sessions.Clear()
		return nil, session.ErrNoSession
	}

	sess.AccessToken = pair.AccessToken
	sess.RefreshToken = pair.RefreshToken

	account, err = a.api.Me(ctx, sess.AccessToken)
	if err != nil {
		_ = a.sessions.Clear()
		return nil, session.ErrNoSession
	}
	sess.Account = *account

	if err := a.sessions.Save(sess); err != nil {
		return nil, err
	}

	return sess, nil
}

func (a *App) saveAuth(result *api.AuthResult) error {
	return a.sessions.Save(&session.Session{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Account:      result.Account,
	})
}
