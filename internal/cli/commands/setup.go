package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zmasarw3h/munero-hybrid-dashboard/internal/config"
	"github.com/zmasarw3h/munero-hybrid-dashboard/internal/engine"
)

// setupKey is used to store the command setup in context.
type setupKey struct{}

// Setup carries the loaded configuration and logger into subcommands.
type Setup struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

// WithSetup stores the loaded configuration and logger in ctx.
func WithSetup(ctx context.Context, cfg *config.Config, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, setupKey{}, &Setup{Cfg: cfg, Logger: logger})
}

// getSetup retrieves the setup from the command context, falling back to
// defaults so commands stay usable in tests that skip the root command.
func getSetup(cmd *cobra.Command) (*Setup, error) {
	if s, ok := cmd.Context().Value(setupKey{}).(*Setup); ok {
		return s, nil
	}
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}
	return &Setup{Cfg: cfg, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}, nil
}

// newEngine builds the rewrite engine from the command's setup.
func newEngine(cmd *cobra.Command) (*engine.Engine, *Setup, error) {
	s, err := getSetup(cmd)
	if err != nil {
		return nil, nil, err
	}
	eng, err := engine.New(s.Cfg, s.Logger)
	if err != nil {
		return nil, nil, err
	}
	return eng, s, nil
}

// readInput returns the raw input for a command: the file named by the first
// argument, or stdin when no argument (or "-") is given.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("no input: pass a file argument or pipe text on stdin")
	}
	return string(data), nil
}
