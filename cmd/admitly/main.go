package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/admitly/admitly"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	var (
		jsonOutput bool
		showVersion bool
	)
	flag.BoolVar(&jsonOutput, "json", false, "print the raw Answer as JSON instead of formatted text")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		return 0
	}

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: admitly [-json] <query>")
		return 2
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := run(ctx, logger, query, jsonOutput)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errAbstained):
		return 2
	default:
		logger.Error("fatal error", "error", err)
		return 1
	}
}

func run(ctx context.Context, logger *slog.Logger, query string, jsonOutput bool) error {
	app, err := admitly.New(admitly.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer func() {
		if err := app.Close(context.Background()); err != nil {
			logger.Warn("shutdown error", "error", err)
		}
	}()

	answer, err := app.Ask(ctx, query)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}

	rendered, err := app.Format(ctx, answer)
	if err != nil {
		return fmt.Errorf("format: %w", err)
	}
	fmt.Println(rendered)

	if answer.IsAbstention() {
		return errAbstained
	}
	return nil
}

// errAbstained signals a clean abstention to the shell via a non-zero exit
// code (2), distinct from the fatal-error code (1) run0 uses otherwise.
var errAbstained = errors.New("abstained")
