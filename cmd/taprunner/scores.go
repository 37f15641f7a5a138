package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/taprunner/internal/storage"
)

var (
	flagScoresLimit  int
	flagScoresRecent bool
	flagScoresClear  bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the best score and top runs",
	Long: `Display the stored best score and the top runs.

Run history is kept by the sqlite and memory stores only.

Examples:
  taprunner scores
  taprunner scores --recent --limit 20
  taprunner scores --store redis --dsn localhost:6379`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of runs to show")
	scoresCmd.Flags().BoolVar(&flagScoresRecent, "recent", false, "Show the newest runs instead of the best")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete the run history (sqlite only)")
}

func runScores(_ *cobra.Command, _ []string) {
	cfg, err := loadGameConfig()
	if err != nil {
		exitErr("%v", err)
	}
	logger, closeLog, err := newLogger(false)
	if err != nil {
		exitErr("%v", err)
	}
	defer closeLog()

	ctx := context.Background()
	svc, closeStore, err := openServices(ctx, logger, false, true)
	if err != nil {
		exitErr("opening store: %v", err)
	}
	defer closeStore()

	if flagScoresClear {
		sq, ok := svc.Store.(*storage.SQLiteStore)
		if !ok {
			exitErr("--clear needs the sqlite store")
		}
		if err := sq.ClearRuns(ctx); err != nil {
			exitErr("clearing runs: %v", err)
		}
		fmt.Println("Run history cleared.")
		return
	}

	fmt.Printf("Best score: %d\n", svc.BestScore(ctx, cfg))

	if svc.Runs == nil {
		fmt.Printf("\nThe %s store keeps no run history.\n", flagStore)
		return
	}

	var runs []storage.Run
	title := "Top runs"
	if flagScoresRecent {
		title = "Recent runs"
		runs, err = svc.Runs.RecentRuns(ctx, flagScoresLimit)
	} else {
		runs, err = svc.Runs.TopRuns(ctx, flagScoresLimit)
	}
	if err != nil {
		exitErr("retrieving runs: %v", err)
	}

	fmt.Println()
	fmt.Println(title)
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'taprunner play' to set the first high score!")
		return
	}

	// Print header
	fmt.Printf("  %-4s  %-6s  %-9s  %-12s  %s\n", "Rank", "Score", "Died", "Player", "Date")
	fmt.Printf("  %-4s  %-6s  %-9s  %-12s  %s\n", "----", "-----", "----", "------", "----")

	for i, r := range runs {
		dateStr := r.CreatedAt.Local().Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-6d  %-9s  %-12s  %s\n", i+1, r.Score, r.Reason, r.Player, dateStr)
	}

	if sq, ok := svc.Store.(*storage.SQLiteStore); ok {
		if stats, err := sq.RunStats(ctx); err == nil && stats.RunsCount > 0 {
			fmt.Println()
			fmt.Printf("Runs: %d  Average: %.1f  Last played: %s\n",
				stats.RunsCount, stats.AvgScore, stats.LastPlayed.Local().Format("2006-01-02 15:04"))
		}
	}
}
