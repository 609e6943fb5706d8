package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mivchik/platforge/internal/storage"
	"github.com/mivchik/platforge/internal/tui"
)

var (
	flagGrid         string
	flagLayout       string
	flagCellSize     float64
	flagFPS          int
	flagAllowPartial bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Open the interactive builder",
	Long: `Open the interactive terminal builder.

When --layout names a saved layout it is loaded and edited in place;
otherwise a fresh board is created and saved under that name.

Controls:
  arrows/wasd  move cursor
  tab          cycle blueprints
  enter        start / confirm placement
  r            rotate the held footprint
  u            pick up the platform under the cursor
  esc          cancel placement
  x            remove the platform under the cursor
  ctrl+s       save the layout
  ctrl+p       save a PNG snapshot
  q            quit

Examples:
  platforge build
  platforge build --layout harbor --grid 48x32
  platforge build --allow-partial`,
	Run: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&flagGrid, "grid", "32x24", "Board size in cells (WxH)")
	buildCmd.Flags().StringVar(&flagLayout, "layout", "default", "Layout name to edit")
	buildCmd.Flags().Float64Var(&flagCellSize, "cell-size", 1.0, "World units per cell")
	buildCmd.Flags().IntVar(&flagFPS, "fps", 30, "Tick rate (frames per second)")
	buildCmd.Flags().BoolVar(&flagAllowPartial, "allow-partial", false, "Allow footprints clipped by the map edge")
}

func runBuild(_ *cobra.Command, _ []string) {
	w, h, err := parseGrid(flagGrid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The board renders two characters per cell plus the blueprint panel.
	if tw, th, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		if w*2+30 > tw || h+2 > th {
			fmt.Fprintf(os.Stderr, "Warning: a %dx%d board may not fit a %dx%d terminal\n", w, h, tw, th)
		}
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: layouts database unavailable: %v\n", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	cfg := tui.Config{
		GridW:        w,
		GridH:        h,
		CellSize:     flagCellSize,
		TickRate:     flagFPS,
		LayoutName:   flagLayout,
		AllowPartial: flagAllowPartial,
	}

	// A saved layout overrides the grid flags so its platforms still fit.
	var saved *storage.Layout
	if store != nil {
		if l, err := store.LoadLayout(flagLayout); err == nil {
			cfg.GridW, cfg.GridH, cfg.CellSize = l.GridW, l.GridH, l.CellSize
			saved = &l
		}
	}

	model, err := tui.NewModel(loadCatalog(), store, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if saved != nil {
		if err := model.RestoreLayout(*saved); err != nil {
			fmt.Fprintf(os.Stderr, "Error restoring layout %q: %v\n", flagLayout, err)
			os.Exit(1)
		}
	}

	if err := tui.Run(model); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseGrid parses "WxH" into board dimensions.
func parseGrid(s string) (w, h int, err error) {
	if _, err := fmt.Sscanf(s, "%dx%d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("invalid grid %q, expected WxH (e.g. 32x24)", s)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("grid dimensions must be positive, got %dx%d", w, h)
	}
	return w, h, nil
}
