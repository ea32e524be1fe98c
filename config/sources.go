package config

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"clearfeed/types"

	"gopkg.in/yaml.v3"
)

//go:embed feeds.yaml
var defaultFeedsFS embed.FS

// Category groups the feed sources shown under one tab
type Category struct {
	ID      string         `yaml:"id"`
	Sources []types.Source `yaml:"sources"`
}

// Sources is the static category → source table. It is never mutated after loading.
type Sources struct {
	categories []Category
	index      map[string]int
}

type sourcesFile struct {
	Categories []Category `yaml:"categories"`
}

// LoadSources reads the source table from path, or the embedded default when path is empty.
func LoadSources(path string) (*Sources, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = defaultFeedsFS.ReadFile("feeds.yaml")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading feeds config: %w", err)
	}
	return ParseSources(data)
}

// ParseSources decodes a YAML source table.
func ParseSources(data []byte) (*Sources, error) {
	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing feeds config: %w", err)
	}
	return NewSources(f.Categories)
}

// NewSources validates categories and builds a lookup table preserving their order.
func NewSources(categories []Category) (*Sources, error) {
	s := &Sources{
		categories: make([]Category, 0, len(categories)),
		index:      make(map[string]int, len(categories)),
	}
	for _, c := range categories {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return nil, fmt.Errorf("category with empty id")
		}
		if _, dup := s.index[id]; dup {
			return nil, fmt.Errorf("duplicate category %q", id)
		}
		for i, src := range c.Sources {
			if src.Name == "" || src.URL == "" {
				return nil, fmt.Errorf("category %q: source %d needs a name and url", id, i)
			}
		}
		srcs := make([]types.Source, len(c.Sources))
		copy(srcs, c.Sources)
		s.index[id] = len(s.categories)
		s.categories = append(s.categories, Category{ID: id, Sources: srcs})
	}
	return s, nil
}

// Categories returns category ids in configured order.
func (s *Sources) Categories() []string {
	ids := make([]string, len(s.categories))
	for i, c := range s.categories {
		ids[i] = c.ID
	}
	return ids
}

// Lookup returns the sources of a category and whether it exists.
func (s *Sources) Lookup(category string) ([]types.Source, bool) {
	i, ok := s.index[category]
	if !ok {
		return nil, false
	}
	srcs := make([]types.Source, len(s.categories[i].Sources))
	copy(srcs, s.categories[i].Sources)
	return srcs, true
}

// Has reports whether category is configured.
func (s *Sources) Has(category string) bool {
	_, ok := s.index[category]
	return ok
}

// Info describes every category with a display name and its source names.
func (s *Sources) Info() []types.CategoryInfo {
	out := make([]types.CategoryInfo, 0, len(s.categories))
	for _, c := range s.categories {
		names := make([]string, len(c.Sources))
		for i, src := range c.Sources {
			names[i] = src.Name
		}
		out = append(out, types.CategoryInfo{
			ID:      c.ID,
			Name:    DisplayName(c.ID),
			Sources: names,
		})
	}
	return out
}

// DisplayName upper-cases the first letter of a category id.
func DisplayName(id string) string {
	if id == "" {
		return id
	}
	r := []rune(id)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
