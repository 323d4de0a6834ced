// Package main is the flashcards command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/jsamuelsen/flashcards/internal/bootstrap"
	"github.com/jsamuelsen/flashcards/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCmd(open).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// open loads the profile and builds the services. Logs go to stderr so
// command output stays parseable.
func open(_ context.Context, profile string) (*cli.Services, func() error, error) {
	cfg, err := bootstrap.LoadConfig(profile)
	if err != nil {
		return nil, nil, err
	}

	comps, err := bootstrap.Build(cfg, bootstrap.NewLogger(cfg, os.Stderr))
	if err != nil {
		return nil, nil, err
	}

	return &cli.Services{Words: comps.Words, Quizzes: comps.Quizzes}, comps.Close, nil
}
