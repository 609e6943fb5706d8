package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mivchik/platforge/internal/blueprint"
)

var blueprintsCmd = &cobra.Command{
	Use:   "blueprints",
	Short: "List the blueprint catalog",
	Long: `List every blueprint in the active catalog with its footprint,
placement rules and cost.

The catalog search order is: --catalog flag, ~/.platforge/blueprints.yaml,
./blueprints.yaml, then the built-in defaults.

Examples:
  platforge blueprints
  platforge blueprints --catalog ./my-catalog.yaml`,
	Run: runBlueprints,
}

var blueprintsValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a blueprint catalog file",
	Args:  cobra.ExactArgs(1),
	Run:   runBlueprintsValidate,
}

func init() {
	blueprintsCmd.AddCommand(blueprintsValidateCmd)
}

func runBlueprints(_ *cobra.Command, _ []string) {
	cat := loadCatalog()

	fmt.Printf("  %-10s  %-12s  %-9s  %-6s  %s\n", "ID", "Name", "Footprint", "Cost", "Rules")
	fmt.Printf("  %-10s  %-12s  %-9s  %-6s  %s\n", "--", "----", "---------", "----", "-----")
	for _, b := range cat.Blueprints {
		var rules []byte
		if b.Rules.RequireEdgeAdjacency {
			rules = append(rules, 'E')
		}
		if b.Rules.DisallowCornerAdjacency {
			rules = append(rules, 'C')
		}
		if len(rules) == 0 {
			rules = []byte{'-'}
		}
		fmt.Printf("  %-10s  %-12s  %-9s  %-6.1f  %s\n",
			b.ID, b.Name, fmt.Sprintf("%dx%d", b.Width, b.Length), b.Cost(), rules)
	}
	fmt.Println()
	fmt.Println("Rules: E = requires edge adjacency, C = corner contact disallowed")
}

func runBlueprintsValidate(_ *cobra.Command, args []string) {
	cat, err := blueprint.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s: OK (%d blueprints)\n", args[0], len(cat.Blueprints))
}
