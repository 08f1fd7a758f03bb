package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/DeafMist/esg-risk-radar/internal/models"
)

// modelOutputSchema is the shape requested from the model. Violations are
// reported, not enforced: Normalize repairs them.
const modelOutputSchema = `{
  "type": "object",
  "required": ["summary", "esgRisks", "riskLevel"],
  "properties": {
    "summary": {"type": "string"},
    "esgRisks": {
      "type": "object",
      "required": ["environmental", "social", "governance", "compliance"],
      "properties": {
        "environmental": {"$ref": "#/$defs/findings"},
        "social": {"$ref": "#/$defs/findings"},
        "governance": {"$ref": "#/$defs/findings"},
        "compliance": {"$ref": "#/$defs/findings"}
      }
    },
    "riskLevel": {"enum": ["Low", "Medium", "High"]},
    "keyFindings": {"$ref": "#/$defs/findings"},
    "recommendations": {"$ref": "#/$defs/findings"}
  },
  "$defs": {
    "findings": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["text"],
        "properties": {
          "text": {"type": "string", "minLength": 1},
          "source": {"type": ["string", "null"]}
        }
      }
    }
  }
}`

// resultSchema is what every normalized AnalysisResult satisfies.
const resultSchema = `{
  "type": "object",
  "required": ["summary", "esgRisks", "riskLevel", "keyFindings", "recommendations"],
  "properties": {
    "summary": {"type": "string"},
    "esgRisks": {
      "type": "object",
      "required": ["environmental", "social", "governance", "compliance"],
      "additionalProperties": false,
      "properties": {
        "environmental": {"$ref": "#/$defs/findings"},
        "social": {"$ref": "#/$defs/findings"},
        "governance": {"$ref": "#/$defs/findings"},
        "compliance": {"$ref": "#/$defs/findings"}
      }
    },
    "riskLevel": {"enum": ["Low", "Medium", "High"]},
    "keyFindings": {"$ref": "#/$defs/findings"},
    "recommendations": {"$ref": "#/$defs/findings"}
  },
  "$defs": {
    "findings": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["text"],
        "additionalProperties": false,
        "properties": {
          "text": {"type": "string", "minLength": 1},
          "source": {"type": "string", "pattern": "^https?://"}
        }
      }
    }
  }
}`

var (
	schemasOnce sync.Once
	schemas     struct {
		model  *jsonschema.Schema
		result *jsonschema.Schema
		err    error
	}
)

func compiled() (*jsonschema.Schema, *jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		schemas.model, schemas.err = compileSchema("model-output", modelOutputSchema)
		if schemas.err != nil {
			return
		}
		schemas.result, schemas.err = compileSchema("analysis-result", resultSchema)
	})
	return schemas.model, schemas.result, schemas.err
}

func compileSchema(name, schema string) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	schemaURL := fmt.Sprintf("https://esg-risk-radar.local/schemas/%s.schema.json", name)
	if err := c.AddResource(schemaURL, strings.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("load %s schema: %w", name, err)
	}
	s, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", name, err)
	}
	return s, nil
}

// CheckModelOutput reports how an extracted object deviates from the
// requested shape. A nil error means the model followed instructions.
func CheckModelOutput(doc map[string]any) error {
	model, _, err := compiled()
	if err != nil {
		return err
	}
	return model.Validate(doc)
}

// ValidateResult checks a normalized result against the output contract.
func ValidateResult(res models.AnalysisResult) error {
	_, result, err := compiled()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode analysis result: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode analysis result: %w", err)
	}
	return result.Validate(doc)
}
