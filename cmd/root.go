// Package cmd wires the CLI commands: the root command launches the
// interactive terminal wiki, ask runs a single lookup, version prints
// build information.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/jama7777/Inifinite-wiki/internal/app"
	"github.com/jama7777/Inifinite-wiki/internal/config"
	"github.com/jama7777/Inifinite-wiki/internal/i18n"
	"github.com/jama7777/Inifinite-wiki/internal/log"
	"github.com/jama7777/Inifinite-wiki/internal/tui"
)

var debugLog bool

var rootCmd = &cobra.Command{
	Use:   "infinitewiki",
	Short: i18n.T("app.description"),
	Long: `Infinite Wiki is an AI-generated encyclopedia in your terminal.

Type any topic to generate an article about it, paste a URL or YouTube
link to read or summarize it, attach a PDF to question it, and follow
bracketed terms to explore forever. Runs on the Gemini API.`,
	RunE: runWiki,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "enable debug logging to ~/.infinitewiki/debug.log")
}

func runWiki(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf(i18n.T("error.config"), err)
	}

	logger, closeLog, err := newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	application, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = application.Close() }()

	model, err := tui.New(application.Context(), application.Store, application.Fetcher)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithContext(application.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running interface: %w", err)
	}

	fmt.Println(i18n.T("goodbye"))
	return nil
}

// newLogger builds the application logger. The TUI owns the terminal, so
// logs go to a file under the config directory instead of stderr.
func newLogger() (log.Logger, func(), error) {
	level := slog.LevelInfo
	if debugLog {
		level = slog.LevelDebug
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil, fmt.Errorf("getting home directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(home, ".infinitewiki", "debug.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger := log.NewWithWriter(f, log.Config{Level: level, JSON: true})
	return logger, func() { _ = f.Close() }, nil
}
