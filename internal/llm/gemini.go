package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Gemini calls the Gemini API through the genai SDK.
type Gemini struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGemini creates a Gemini backend from cfg.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.GeminiAPIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(cfg.Temperature),
	}
	if cfg.JSONOutput {
		gc.ResponseMIMEType = "application/json"
		gc.ResponseSchema = AnalysisSchema()
	}

	return &Gemini{client: client, model: model, config: gc}, nil
}

// Generate implements Generator.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini generate: empty response")
	}
	return text, nil
}

// AnalysisSchema describes the analysis object requested from the model.
func AnalysisSchema() *genai.Schema {
	finding := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"text": {
				Type:        genai.TypeString,
				Description: "One specific risk finding",
			},
			"source": {
				Type:        genai.TypeString,
				Description: "Id of the article supporting the finding; omit when unsure",
			},
		},
		Required: []string{"text"},
	}
	findings := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Description: desc, Items: finding}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {Type: genai.TypeString, Description: "Short overall assessment"},
			"esgRisks": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"environmental": findings("Environmental risks"),
					"social":        findings("Social risks"),
					"governance":    findings("Governance risks"),
					"compliance":    findings("Compliance risks"),
				},
			},
			"riskLevel": {
				Type: genai.TypeString,
				Enum: []string{"Low", "Medium", "High"},
			},
			"keyFindings":     findings("Most important findings"),
			"recommendations": findings("Suggested actions"),
		},
		Required: []string{"summary", "esgRisks", "riskLevel"},
	}
}
