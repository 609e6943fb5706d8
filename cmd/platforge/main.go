// platforge is a terminal platform builder: place footprints on a shared
// grid, watch sockets connect, and save the resulting layouts.
//
// Usage:
//
//	platforge build              - Open the interactive builder
//	platforge layouts            - List saved layouts
//	platforge render <layout>    - Render a saved layout to PNG
//	platforge blueprints         - List the blueprint catalog
//	platforge serve              - Start SSH server for remote building
//
// Global flags:
//
//	--db <path>       - Layouts database path (default: ~/.platforge/layouts.db)
//	--catalog <path>  - Blueprint catalog YAML (default: built-in search order)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mivchik/platforge/internal/blueprint"
)

var (
	// Global flags
	flagDBPath      string
	flagCatalogPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "platforge",
	Short: "Platforge - Build platform layouts in your terminal",
	Long: `Platforge is a terminal-based platform builder. Platforms snap to a
shared grid, their edge sockets connect to adjacent platforms, and finished
layouts can be saved, rendered to PNG, or edited remotely over SSH.

Available commands:
  build      - Open the interactive builder
  layouts    - Manage saved layouts
  render     - Render a saved layout to PNG
  blueprints - Inspect the blueprint catalog
  serve      - Start SSH server for remote building

Examples:
  platforge build
  platforge build --layout harbor --grid 48x32
  platforge layouts
  platforge render harbor -o harbor.png
  platforge serve --ssh :2222`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.platforge/layouts.db", "Path to layouts database")
	rootCmd.PersistentFlags().StringVar(&flagCatalogPath, "catalog", "", "Path to blueprint catalog YAML")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(layoutsCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(blueprintsCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadCatalog loads the blueprint catalog honoring the global flag.
func loadCatalog() blueprint.Catalog {
	cat, err := blueprint.Load(flagCatalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading blueprint catalog: %v\n", err)
		os.Exit(1)
	}
	return cat
}
