package scenarios

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog/*.yaml
var embeddedCatalog embed.FS

// Catalog is the read-only scenario lookup. It is constructed once at
// startup and never mutated afterwards, so it is safe to share across
// concurrent sessions without synchronization.
type Catalog struct {
	ordered []*Scenario
	byID    map[string]*Scenario
}

// NewEmbeddedCatalog loads the scenario definitions compiled into the
// binary.
func NewEmbeddedCatalog() (*Catalog, error) {
	entries, err := embeddedCatalog.ReadDir("catalog")
	if err != nil {
		return nil, fmt.Errorf("read embedded catalog: %w", err)
	}
	var files [][]byte
	for _, entry := range entries {
		data, err := embeddedCatalog.ReadFile("catalog/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read embedded scenario %s: %w", entry.Name(), err)
		}
		files = append(files, data)
	}
	return newCatalog(files)
}

// NewCatalogFromDir loads scenario YAML files from a directory, replacing
// the embedded catalog. Files are read once; later changes on disk are not
// observed.
func NewCatalogFromDir(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}
	var files [][]byte
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read scenario %s: %w", entry.Name(), err)
		}
		files = append(files, data)
	}
	return newCatalog(files)
}

func newCatalog(files [][]byte) (*Catalog, error) {
	catalog := &Catalog{byID: make(map[string]*Scenario)}
	for _, data := range files {
		// Each file holds one or more scenario documents.
		var batch []*Scenario
		if err := yaml.Unmarshal(data, &batch); err != nil {
			var single Scenario
			if err2 := yaml.Unmarshal(data, &single); err2 != nil {
				return nil, fmt.Errorf("parse scenario file: %w", err)
			}
			batch = []*Scenario{&single}
		}
		for _, scenario := range batch {
			if err := validateScenario(scenario); err != nil {
				return nil, err
			}
			if _, exists := catalog.byID[scenario.ID]; exists {
				return nil, fmt.Errorf("duplicate scenario id %q", scenario.ID)
			}
			catalog.byID[scenario.ID] = scenario
			catalog.ordered = append(catalog.ordered, scenario)
		}
	}
	if len(catalog.ordered) == 0 {
		return nil, fmt.Errorf("scenario catalog is empty")
	}
	sort.Slice(catalog.ordered, func(i, j int) bool {
		a, b := catalog.ordered[i], catalog.ordered[j]
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		return a.ID < b.ID
	})
	return catalog, nil
}

func validateScenario(s *Scenario) error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("scenario is missing an id")
	}
	if strings.TrimSpace(s.Prompt) == "" {
		return fmt.Errorf("scenario %s is missing a prompt", s.ID)
	}
	if strings.TrimSpace(s.OpeningLine) == "" {
		return fmt.Errorf("scenario %s is missing an opening line", s.ID)
	}
	for _, tool := range s.Tools {
		if tool.Name == "" {
			return fmt.Errorf("scenario %s has a tool without a name", s.ID)
		}
	}
	return nil
}

// List returns the catalog index ordered by level, then id.
func (c *Catalog) List() []Summary {
	out := make([]Summary, 0, len(c.ordered))
	for _, s := range c.ordered {
		out = append(out, Summary{ID: s.ID, Level: s.Level, Title: s.Title})
	}
	return out
}

// Get returns the scenario for an id, with ok reporting whether it exists.
// Absence is an expected outcome, not an error: the bridge uses it to
// reject a connection attempt with a specific message.
func (c *Catalog) Get(id string) (*Scenario, bool) {
	s, ok := c.byID[id]
	return s, ok
}
