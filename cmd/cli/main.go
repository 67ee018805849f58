package main

import (
	"context"
	"log"
	"os"

	"github.com/statementkit/statementkit/internal/client/cli"
	"github.com/statementkit/statementkit/internal/client/config"
	"github.com/statementkit/statementkit/internal/flagx"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
	}

	// Everything that is not a recognized flag is the command and its args.
	args := flagx.StripFlags(os.Args[1:], []string{"-a", "-c", "-config"})

	if err := app.Run(ctx, args); err != nil {
		log.Fatalf("%v", err)
	}
}
