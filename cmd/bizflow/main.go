package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/haricheung/bizflow/internal/config"
	"github.com/haricheung/bizflow/internal/logging"
	"github.com/haricheung/bizflow/internal/roles/evaluator"
	"github.com/haricheung/bizflow/internal/tools"
	"github.com/haricheung/bizflow/internal/ui"
)

var configPath string

func main() {
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "bizflow",
		Short: "AI business workflow assistant",
		Long: `bizflow drafts emails, builds sales reports, summarizes meetings and
remembers your preferences. Run without arguments for an interactive session.`,
		SilenceUsage: true,
		RunE:         runInteractive,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to YAML config file")

	root.AddCommand(&cobra.Command{
		Use:   "ask <request...>",
		Short: "Handle a single request and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	})
	root.AddCommand(&cobra.Command{
		Use:   "metrics",
		Short: "Summarize recorded evaluation scores per task type",
		Args:  cobra.NoArgs,
		RunE:  runMetrics,
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// loadConfig reads configuration and installs logging. Interactive sessions
// own the terminal, so their log lines go to the file only.
func loadConfig(interactive bool) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if interactive {
		cfg.Logging.Console = false
	}
	if _, err := logging.Setup(cfg.Logging); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	defer logging.Close()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	historyFile := filepath.Join(cfg.DataDir, ".bizflow_history")
	_ = tools.EnsureParentDir(historyFile)
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "You: ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	ctx, cancel := signalContext()
	defer cancel()

	slog.Info("[CLI] starting interactive session")
	s := &session{
		in:      rl,
		out:     cmd.OutOrStdout(),
		handle:  a.planner.Handle,
		spinner: readline.IsTerminal(int(os.Stdout.Fd())),
	}
	s.run(ctx)
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	defer logging.Close()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	input := strings.Join(args, " ")
	slog.Info("[CLI] one-shot request", "input", ui.Clip(input, 120))
	resp, err := a.planner.Handle(ctx, input)
	if err != nil {
		return fmt.Errorf("handle request: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp)
	return nil
}

func runMetrics(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	defer logging.Close()

	stats, err := evaluator.Summarize(cfg.Metrics.Path)
	if errors.Is(err, tools.ErrNotFound) {
		stats, err = nil, nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), evaluator.RenderStats(stats))
	return nil
}

// isExit reports whether line ends the session.
func isExit(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "exit", "quit":
		return true
	}
	return false
}
