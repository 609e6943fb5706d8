package blueprint

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load loads the blueprint catalog.
// Search order: customPath -> ~/.platforge/blueprints.yaml -> ./blueprints.yaml -> embedded default
func Load(customPath string) (Catalog, error) {
	var cat Catalog

	// A custom path must exist and parse; its errors are not swallowed.
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cat, fmt.Errorf("failed to read catalog %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cat); err != nil {
			return cat, fmt.Errorf("failed to parse catalog %s: %w", customPath, err)
		}
		if err := cat.Validate(); err != nil {
			return cat, fmt.Errorf("invalid catalog %s: %w", customPath, err)
		}
		return cat, nil
	}

	// Try user config directory
	if userPath := userCatalogPath("blueprints.yaml"); userPath != "" {
		if c, err := loadFile(userPath); err == nil {
			return c, nil
		}
	}

	// Try local catalog file
	if c, err := loadFile("blueprints.yaml"); err == nil {
		return c, nil
	}

	// Use embedded default catalog
	if err := yaml.Unmarshal(defaultBlueprintsYAML, &cat); err != nil {
		return DefaultCatalog(), nil // Fallback to hardcoded if embed fails
	}
	return cat, nil
}

func loadFile(path string) (Catalog, error) {
	var cat Catalog
	data, err := os.ReadFile(path)
	if err != nil {
		return cat, err
	}
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return cat, err
	}
	if err := cat.Validate(); err != nil {
		return cat, err
	}
	return cat, nil
}

// userCatalogPath returns the path to the user catalog file, or empty if home
// is unavailable.
func userCatalogPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".platforge", filename)
}
