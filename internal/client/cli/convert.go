package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/statementkit/statementkit/internal/client/api"
)

func (a *App) Convert(ctx context.Context, paths []string) error {

	if len(paths) == 0 {
		return errors.New("usage: convert <files...>")
	}

	sess, err := a.restore(ctx)
	if err != nil {
		return err
	}

	files := make([]api.FileUpload, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}
		files = append(files, api.FileUpload{Name: filepath.Base(path), Size: info.Size()})
	}

	fmt.Fprintf(a.out, "Converting %d file(s)...\n", len(files))

	result, err := a.api.Convert(ctx, sess.AccessToken, files)
	if err != nil {
		return err
	}

	for _, c := range result.Conversions {
		fmt.Fprintf(a.out, "%s: %d page(s), %d credit(s)  [%s]\n", c.FileName, c.Pages, c.Credits, c.ID)
	}
	fmt.Fprintf(a.out, "Used %d credit(s), %d remaining.\n", result.CreditsUsed, result.RemainingCredits)
	return nil
}

func (a *App) Download(ctx context.Context, args []string) error {

	if len(args) == 0 {
		return errors.New("usage: download <conversion-id> [output-file]")
	}

	sess, err := a.restore(ctx)
	if err != nil {
		return err
	}

	name, data, err := a.api.Download(ctx, sess.AccessToken, args[0])
	if err != nil {
		return err
	}

	if len(args) > 1 {
		name = args[1]
	}

	if err := os.WriteFile(name, data, 0o644); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Saved %s (%d bytes)\n", name, len(data))
	return nil
}
