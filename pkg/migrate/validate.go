package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Validate checks the migrations directory for duplicate version prefixes
// and non-SQL files before goose ever touches the database.
func Validate(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	seen := map[string]string{}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ".sql" {
			return fmt.Errorf("unexpected non-sql file %q in migrations dir", name)
		}
		version, _, ok := strings.Cut(name, "_")
		if !ok || version == "" {
			return fmt.Errorf("migration %q missing version prefix", name)
		}
		if prior, dup := seen[version]; dup {
			return fmt.Errorf("duplicate migration version %s (%s, %s)", version, prior, name)
		}
		seen[version] = name
		names = append(names, name)
	}

	if len(names) == 0 {
		return fmt.Errorf("no migrations found in %s", dir)
	}
	sort.Strings(names)
	return nil
}
