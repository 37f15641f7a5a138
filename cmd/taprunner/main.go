// taprunner is a single-button tap runner played in the terminal.
//
// Usage:
//
//	taprunner play            - Play a game
//	taprunner menu            - Title menu with play and run history
//	taprunner serve           - Serve sessions over SSH and metrics over HTTP
//	taprunner scores          - Show the best score and top runs
//	taprunner sim             - Run a headless session and print the outcome
//	taprunner config          - Print or check the resolved game config
//	taprunner stores          - List storage backends
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 60)
//	--seed <value>      - Set RNG seed for reproducible gameplay
//	--config <path>     - Game config YAML
//	--store <name>      - Storage backend (default: sqlite)
//	--dsn <value>       - Backend path, URL or app name
//	--log-level <level> - debug, info, warn, error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/taprunner/internal/config"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagConfig   string
	flagStore    string
	flagDSN      string
	flagLogLevel string
	flagLogFile  string
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}
	registerFlags()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "taprunner",
	Short: "Tap Runner - a one-button runner in your terminal",
	Long: `Tap Runner is a terminal game: tap to flap through gaps between
scrolling obstacle pairs. Every pair passed scores a point.

Available commands:
  play     - Play directly
  menu     - Title menu with run history
  serve    - Start SSH server for remote play
  scores   - View the best score and top runs
  sim      - Run a scripted headless session
  config   - Print or check the game config
  stores   - List storage backends

Examples:
  taprunner play
  taprunner play --seed 42 --config ./taprunner.yaml
  taprunner serve --ssh :2222 --http :9090 --store redis --dsn redis://localhost:6379/0
  taprunner sim --autopilot --seed 7`,
	SilenceUsage: true,
}

// registerFlags sets up flags after .env was loaded, so environment values
// become flag defaults.
func registerFlags() {
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&flagFPS, "fps", config.EnvIntOr(config.EnvFPS, 60), "Tick rate (frames per second)")
	pf.Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = config seed, or random based on time)")
	pf.StringVar(&flagConfig, "config", config.EnvOr(config.EnvConfig, ""), "Path to custom game config YAML")
	pf.StringVar(&flagStore, "store", config.EnvOr(config.EnvStore, "sqlite"), "Storage backend (see 'taprunner stores')")
	pf.StringVar(&flagDSN, "dsn", config.EnvOr(config.EnvDSN, ""), "Backend path, URL or app name (empty = backend default)")
	pf.StringVar(&flagLogLevel, "log-level", config.EnvOr(config.EnvLogLevel, "info"), "Log level: debug, info, warn, error")
	pf.StringVar(&flagLogFile, "log-file", "", "Write logs of interactive commands to this file")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(storesCmd)
}
