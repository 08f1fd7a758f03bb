package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/DeafMist/esg-risk-radar/internal/models"
)

// Extract pulls the JSON object out of raw model text. The candidate span
// runs from the first '{' to the last '}'; anything around it is ignored.
func Extract(raw string) (map[string]any, error) {
	const op = "extract model output"

	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return nil, newError(KindMalformedModelOutput, op, errors.New("no JSON object found"))
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &doc); err != nil {
		return nil, newError(KindMalformedModelOutput, op, fmt.Errorf("decode json object: %w", err))
	}
	if doc == nil {
		return nil, newError(KindMalformedModelOutput, op, errors.New("empty JSON object"))
	}
	return doc, nil
}

// Parse extracts and normalizes raw model text for one analysis batch. It
// fails only when no JSON object can be extracted.
func Parse(raw, company string, articles []models.Article) (models.AnalysisResult, error) {
	doc, err := Extract(raw)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	return Normalize(doc, company, articles), nil
}
