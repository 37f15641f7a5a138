package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/taprunner/internal/registry"
	_ "github.com/vovakirdan/taprunner/internal/storage" // Register backends
)

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "List storage backends",
	Long:  `Shows the storage backends that can be chosen with --store.`,
	Args:  cobra.NoArgs,
	Run:   runStores,
}

func runStores(_ *cobra.Command, _ []string) {
	backends := registry.List()

	if len(backends) == 0 {
		fmt.Println("No storage backends available.")
		return
	}

	fmt.Println("Available stores:")
	fmt.Println()

	// Calculate column widths
	maxNameLen := 4 // "Name" header
	for _, b := range backends {
		if len(b.Name) > maxNameLen {
			maxNameLen = len(b.Name)
		}
	}

	fmt.Printf("  %-*s  %-28s  %s\n", maxNameLen, "Name", "Default DSN", "Description")
	fmt.Printf("  %-*s  %-28s  %s\n", maxNameLen, "----", "-----------", "-----------")

	for _, b := range backends {
		dsn := b.DefaultDSN
		if dsn == "" {
			dsn = "-"
		}
		fmt.Printf("  %-*s  %-28s  %s\n", maxNameLen, b.Name, dsn, b.Description)
	}

	fmt.Println()
	fmt.Println("Select one with 'taprunner --store <name> [--dsn <value>] play'.")
}
