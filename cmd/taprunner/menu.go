package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/taprunner/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start with the title menu",
	Long: `Start in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to select.
After a game, B or Esc returns to the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select
  Tab          - Switch top / recent runs
  Q            - Quit

Examples:
  taprunner menu
  taprunner menu --fps 30
  taprunner menu --store sqlite --dsn ./taprunner.db`,
	Args: cobra.NoArgs,
	Run:  runMenu,
}

func runMenu(_ *cobra.Command, _ []string) {
	cfg, err := loadGameConfig()
	if err != nil {
		exitErr("%v", err)
	}

	logger, closeLog, err := newLogger(true)
	if err != nil {
		exitErr("%v", err)
	}
	defer closeLog()

	svc, closeStore, err := openServices(context.Background(), logger, true, false)
	if err != nil {
		exitErr("%v", err)
	}

	runErr := tui.RunSession(svc, cfg, runtimeConfig(), playerName())
	closeStore()

	if runErr != nil {
		exitErr("%v", runErr)
	}
}
