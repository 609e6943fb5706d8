// Package blueprint provides YAML-based platform blueprint catalogs: the
// named footprints, placement rules and display hints the builder offers.
package blueprint

import (
	"fmt"

	"github.com/mivchik/platforge/internal/board"
	"github.com/mivchik/platforge/internal/footprint"
)

// Blueprint describes one placeable platform kind.
type Blueprint struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Width       int     `yaml:"width"`
	Length      int     `yaml:"length"`
	Color       string  `yaml:"color"`
	CostPerCell float64 `yaml:"cost_per_cell"`
	Rules       Rules   `yaml:"rules"`
}

// Rules mirrors the board's placement rules in YAML form.
type Rules struct {
	RequireEdgeAdjacency    bool `yaml:"require_edge_adjacency"`
	DisallowCornerAdjacency bool `yaml:"disallow_corner_adjacency"`
}

// Footprint returns the blueprint's footprint at identity rotation.
func (b Blueprint) Footprint() footprint.Footprint {
	return footprint.Footprint{W: b.Width, L: b.Length}
}

// BoardRules converts the YAML rules to the board package's form.
func (b Blueprint) BoardRules() board.Rules {
	return board.Rules{
		RequireEdgeAdjacency:    b.Rules.RequireEdgeAdjacency,
		DisallowCornerAdjacency: b.Rules.DisallowCornerAdjacency,
	}
}

// Cost returns the full placement cost of the blueprint.
func (b Blueprint) Cost() float64 {
	return b.CostPerCell * float64(b.Footprint().Area())
}

// Catalog is an ordered set of blueprints keyed by ID.
type Catalog struct {
	Blueprints []Blueprint `yaml:"blueprints"`
}

// ValidationError reports a bad entry in a loaded catalog.
type ValidationError struct {
	ID    string
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("blueprint %q: %s: %s", e.ID, e.Field, e.Msg)
}

// Validate checks every entry for usable dimensions and unique IDs.
func (c Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Blueprints))
	for _, b := range c.Blueprints {
		if b.ID == "" {
			return &ValidationError{ID: b.Name, Field: "id", Msg: "must not be empty"}
		}
		if seen[b.ID] {
			return &ValidationError{ID: b.ID, Field: "id", Msg: "duplicate"}
		}
		seen[b.ID] = true
		if b.Width <= 0 {
			return &ValidationError{ID: b.ID, Field: "width", Msg: "must be positive"}
		}
		if b.Length <= 0 {
			return &ValidationError{ID: b.ID, Field: "length", Msg: "must be positive"}
		}
		if b.CostPerCell < 0 {
			return &ValidationError{ID: b.ID, Field: "cost_per_cell", Msg: "must not be negative"}
		}
	}
	return nil
}

// Get returns the blueprint with the given ID.
func (c Catalog) Get(id string) (Blueprint, bool) {
	for _, b := range c.Blueprints {
		if b.ID == id {
			return b, true
		}
	}
	return Blueprint{}, false
}

// IDs returns the catalog's blueprint IDs in declaration order.
func (c Catalog) IDs() []string {
	ids := make([]string, len(c.Blueprints))
	for i, b := range c.Blueprints {
		ids[i] = b.ID
	}
	return ids
}
