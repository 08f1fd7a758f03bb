package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Company is one watchlist entry. Query defaults to Name.
type Company struct {
	Name     string `yaml:"name"`
	Industry string `yaml:"industry"`
	Query    string `yaml:"query"`
}

// Watchlist is the collector's YAML input.
type Watchlist struct {
	Companies []Company `yaml:"companies"`
}

func loadWatchlist(path string) (*Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parseWatchlist(data)
}

func parseWatchlist(data []byte) (*Watchlist, error) {
	var w Watchlist
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("unmarshal watchlist: %w", err)
	}

	seen := make(map[string]struct{}, len(w.Companies))
	out := w.Companies[:0]
	for i, c := range w.Companies {
		c.Name = strings.TrimSpace(c.Name)
		c.Industry = strings.TrimSpace(c.Industry)
		c.Query = strings.TrimSpace(c.Query)
		if c.Name == "" {
			return nil, fmt.Errorf("watchlist entry %d: name is required", i)
		}
		if c.Query == "" {
			c.Query = c.Name
		}
		key := strings.ToLower(c.Name + "|" + c.Query)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("watchlist has no companies")
	}

	w.Companies = out
	return &w, nil
}
