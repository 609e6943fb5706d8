package blueprint

import (
	_ "embed"
)

//go:embed defaults/blueprints.yaml
var defaultBlueprintsYAML []byte

// DefaultCatalog returns the built-in blueprint catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		Blueprints: []Blueprint{
			{
				ID:          "plaza",
				Name:        "Plaza",
				Width:       4,
				Length:      4,
				Color:       "#8a9ba8",
				CostPerCell: 1.0,
			},
			{
				ID:          "walkway",
				Name:        "Walkway",
				Width:       4,
				Length:      2,
				Color:       "#b8a88a",
				CostPerCell: 0.5,
				Rules: Rules{
					RequireEdgeAdjacency:    true,
					DisallowCornerAdjacency: true,
				},
			},
			{
				ID:          "pad",
				Name:        "Pad",
				Width:       3,
				Length:      3,
				Color:       "#8ab8a0",
				CostPerCell: 0.75,
				Rules: Rules{
					RequireEdgeAdjacency: true,
				},
			},
			{
				ID:          "strip",
				Name:        "Strip",
				Width:       1,
				Length:      5,
				Color:       "#a88ab8",
				CostPerCell: 0.4,
				Rules: Rules{
					RequireEdgeAdjacency:    true,
					DisallowCornerAdjacency: true,
				},
			},
		},
	}
}
