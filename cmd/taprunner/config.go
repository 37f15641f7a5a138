package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/taprunner/internal/config"
)

var flagConfigResolved bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the game config",
	Long: `Load the game config the same way 'play' does, validate it and print
it as YAML. An invalid config lists every problem and exits non-zero.

Lookup order: --config, ~/.taprunner/configs/taprunner.yaml,
./configs/taprunner.yaml, built-in defaults.

Examples:
  taprunner config > ~/.taprunner/configs/taprunner.yaml
  taprunner config --config ./mine.yaml --resolved`,
	Args: cobra.NoArgs,
	Run:  runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagConfigResolved, "resolved", false, "Fill in derived values")
}

func runConfig(_ *cobra.Command, _ []string) {
	cfg, err := loadGameConfig()
	if err != nil {
		exitErr("%v", err)
	}
	if flagConfigResolved {
		cfg = cfg.Resolved()
	}

	data, err := config.Marshal(cfg)
	if err != nil {
		exitErr("encoding config: %v", err)
	}
	fmt.Fprint(os.Stdout, string(data))
}
