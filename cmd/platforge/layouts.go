package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mivchik/platforge/internal/storage"
	"github.com/mivchik/platforge/internal/tui"
)

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "List saved layouts",
	Long: `List all saved layouts with their board size and last edit time.

Examples:
  platforge layouts
  platforge layouts browse
  platforge layouts delete harbor`,
	Run: runLayouts,
}

var layoutsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved layout",
	Args:  cobra.ExactArgs(1),
	Run:   runLayoutsDelete,
}

var layoutsBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse saved layouts interactively",
	Run:   runLayoutsBrowse,
}

func init() {
	layoutsCmd.AddCommand(layoutsDeleteCmd)
	layoutsCmd.AddCommand(layoutsBrowseCmd)
}

func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening layouts database: %v\n", err)
		os.Exit(1)
	}
	return store
}

func runLayouts(_ *cobra.Command, _ []string) {
	store := openStore()
	defer store.Close()

	layouts, err := store.ListLayouts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing layouts: %v\n", err)
		os.Exit(1)
	}

	if len(layouts) == 0 {
		fmt.Println("No layouts saved yet.")
		fmt.Println()
		fmt.Println("Run 'platforge build' to create one.")
		return
	}

	fmt.Printf("  %-20s  %-10s  %s\n", "Name", "Board", "Updated")
	fmt.Printf("  %-20s  %-10s  %s\n", "----", "-----", "-------")
	for _, l := range layouts {
		board := fmt.Sprintf("%dx%d", l.GridW, l.GridH)
		fmt.Printf("  %-20s  %-10s  %s\n", l.Name, board, l.UpdatedAt.Format("2006-01-02 15:04"))
	}
}

func runLayoutsBrowse(_ *cobra.Command, _ []string) {
	store := openStore()
	defer store.Close()

	if err := tui.RunBrowser(store); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runLayoutsDelete(_ *cobra.Command, args []string) {
	store := openStore()
	defer store.Close()

	if err := store.DeleteLayout(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted layout %q\n", args[0])
}
