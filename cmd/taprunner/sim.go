package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/taprunner/internal/games/taprunner"
)

var (
	flagSimTicks     int
	flagSimFrame     float64
	flagSimTaps      string
	flagSimAutopilot bool
	flagSimRestarts  bool
	flagSimEvents    bool
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run a headless session and print the outcome",
	Long: `Run the engine without a terminal, with a fixed frame time, and
print the result as YAML. Runs are reproducible from the config, the seed
and the tap schedule. Nothing is stored.

Examples:
  taprunner sim --seed 7 --taps 0,30,60,90
  taprunner sim --seed 7 --autopilot --ticks 10000
  taprunner sim --autopilot --restarts --events`,
	Args: cobra.NoArgs,
	Run:  runSim,
}

func init() {
	simCmd.Flags().IntVar(&flagSimTicks, "ticks", 3600, "Maximum ticks to run")
	simCmd.Flags().Float64Var(&flagSimFrame, "frame-ms", 0, "Elapsed milliseconds per tick (0 = reference frame)")
	simCmd.Flags().StringVar(&flagSimTaps, "taps", "", "Comma separated tick indexes that tap")
	simCmd.Flags().BoolVar(&flagSimAutopilot, "autopilot", false, "Tap to follow the gaps")
	simCmd.Flags().BoolVar(&flagSimRestarts, "restarts", false, "Restart after game over until --ticks")
	simCmd.Flags().BoolVar(&flagSimEvents, "events", false, "Include every event in the output")
}

func runSim(_ *cobra.Command, _ []string) {
	cfg, err := loadGameConfig()
	if err != nil {
		exitErr("%v", err)
	}
	taps, err := parseTaps(flagSimTaps)
	if err != nil {
		exitErr("%v", err)
	}

	res, err := taprunner.Simulate(cfg, taprunner.SimOptions{
		MaxTicks:  flagSimTicks,
		FrameMs:   flagSimFrame,
		Taps:      taps,
		Autopilot: flagSimAutopilot,
		Restarts:  flagSimRestarts,
	})
	if err != nil {
		exitErr("%v", err)
	}
	if !flagSimEvents {
		res.Events = nil
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		exitErr("encoding result: %v", err)
	}
	enc.Close()
}

// parseTaps parses "0,30,60" into tick indexes.
func parseTaps(s string) ([]uint64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	taps := make([]uint64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid tap tick %q", p)
		}
		taps = append(taps, n)
	}
	return taps, nil
}
