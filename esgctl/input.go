package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/DeafMist/esg-risk-radar/internal/country"
	"github.com/DeafMist/esg-risk-radar/internal/models"
)

// decodeFile reads path as YAML for .yaml/.yml and JSON otherwise. Both a
// bare list and an object wrapping the list under one of keys are accepted.
func decodeFile[T any](path string, keys ...string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	unmarshal := json.Unmarshal
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	}

	var list []T
	if err := unmarshal(data, &list); err == nil {
		return list, nil
	}

	// type errors on sibling fields leave the wanted key decoded
	var wrapped map[string][]T
	decodeErr := unmarshal(data, &wrapped)
	for _, key := range keys {
		if list, ok := wrapped[key]; ok {
			return list, nil
		}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode %s: %w", path, decodeErr)
	}
	return nil, fmt.Errorf("decode %s: expected a list or one of the keys %q", path, keys)
}

func readArticles(path string) ([]models.Article, error) {
	return decodeFile[models.Article](path, "articles", "data")
}

func readIncidents(path string) ([]country.Incident, error) {
	return decodeFile[country.Incident](path, "incidents")
}
