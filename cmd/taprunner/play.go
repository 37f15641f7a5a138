package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/taprunner/internal/platform/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game",
	Long: `Start playing right away.

Controls:
  Space/Up/W/Click - Flap (starts the run)
  P                - Pause
  R/Enter/Click    - Restart (on the game over screen)
  Ctrl+S           - Save a screenshot to ~/.taprunner/screenshots
  Q/Ctrl+C         - Quit

Examples:
  taprunner play
  taprunner play --seed 42
  taprunner play --config ./my-taprunner.yaml
  taprunner play --store gdata`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func runPlay(_ *cobra.Command, _ []string) {
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

	opts := svc.GameOptions(cfg, playerName())
	opts.Runtime = runtimeConfig()
	runErr := tui.Run(opts)

	// Close store before potential exit
	closeStore()

	if runErr != nil {
		exitErr("running game: %v", runErr)
	}
}
