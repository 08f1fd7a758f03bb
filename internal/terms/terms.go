// Package terms holds the static keyword tables used by the heuristic
// classifiers and the environmental backstop. All lists are lower-case and
// ordered: callers rely on the order for first-match semantics.
package terms

import (
	"strings"

	"github.com/DeafMist/esg-risk-radar/internal/models"
)

// CategoryTerms is an ordered keyword list for one category.
type CategoryTerms struct {
	Category models.Category
	Terms    []string
}

// Basic is scanned by the first-match classifier, in category order.
var Basic = []CategoryTerms{
	{
		Category: models.Environmental,
		Terms: []string{
			"pollution", "emission", "climate", "carbon", "environmental",
			"waste", "sustainable", "green", "eco",
		},
	},
	{
		Category: models.Social,
		Terms: []string{
			"worker", "labor", "employee", "safety", "diversity", "discrimination",
			"human rights", "privacy", "data breach", "community",
		},
	},
	{
		Category: models.Governance,
		Terms: []string{
			"corruption", "bribery", "executive", "board", "compensation",
			"accountability", "transparency", "ethics", "conduct",
		},
	},
	{
		Category: models.Compliance,
		Terms: []string{
			"regulation", "compliance", "legal", "lawsuit", "fine", "penalty",
			"investigation", "violation", "audit", "regulatory",
		},
	},
}

// HighSeverityContext escalates a match to high severity.
var HighSeverityContext = []string{
	"violation", "serious", "major", "significant", "critical", "illegal", "investigation",
}

// MediumSeverityContext escalates a match to medium severity when no high
// context word is present.
var MediumSeverityContext = []string{
	"issue", "problem", "concern", "risk", "lawsuit",
}

// NegativeSentiment triggers the governance catch-all when no category matched.
var NegativeSentiment = []string{
	"issue", "problem", "concern", "risk", "challenge", "difficulty",
}

// SeverityScale maps the number of matching terms in a group to a severity.
type SeverityScale func(matches int) models.Severity

// Group is one counted term group of the rich classifier.
type Group struct {
	Name     string
	Category models.Category
	Terms    []string
	Scale    SeverityScale
}

func tiered(matches int) models.Severity {
	switch {
	case matches > 3:
		return models.SeverityHigh
	case matches > 1:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// Rich holds the counted groups of the rich classifier, in evaluation order.
// Security hits are reported under compliance.
var Rich = []Group{
	{
		Name:     "environmental",
		Category: models.Environmental,
		Terms: []string{
			"energy consumption", "carbon footprint", "emissions", "climate", "renewable",
			"sustainability", "water usage", "waste", "recycling", "environmental impact",
		},
		Scale: tiered,
	},
	{
		Name:     "social",
		Category: models.Social,
		Terms: []string{
			"labor", "worker", "employee", "diversity", "inclusion", "discrimination",
			"harassment", "mental health", "wellbeing", "community",
		},
		Scale: func(matches int) models.Severity {
			if matches > 3 {
				return models.SeverityMedium
			}
			return models.SeverityLow
		},
	},
	{
		Name:     "governance",
		Category: models.Governance,
		Terms: []string{
			"board", "executive", "leadership", "transparency", "accountability", "ethics",
			"lobbying", "political", "antitrust", "monopoly", "reporting",
		},
		Scale: tiered,
	},
	{
		Name:     "compliance",
		Category: models.Compliance,
		Terms: []string{
			"regulation", "compliance", "legal", "lawsuit", "fine", "penalty", "investigation",
			"regulatory", "privacy", "data protection", "gdpr", "ccpa",
		},
		Scale: tiered,
	},
	{
		Name:     "security",
		Category: models.Compliance,
		Terms: []string{
			"breach", "hack", "cybersecurity", "data breach", "vulnerability", "exploit",
			"malware", "ransomware", "phishing", "security flaw",
		},
		Scale: func(matches int) models.Severity {
			if matches > 2 {
				return models.SeverityHigh
			}
			return models.SeverityMedium
		},
	},
}

// Cluster is a company-context term cluster with a fixed outcome.
type Cluster struct {
	Name     string
	Category models.Category
	Severity models.Severity
	Terms    []string
}

// Clusters are evaluated after the counted groups.
var Clusters = []Cluster{
	{
		Name:     "ai-ethics",
		Category: models.Governance,
		Severity: models.SeverityMedium,
		Terms: []string{
			"ai ethics", "algorithmic bias", "facial recognition", "surveillance",
			"ai transparency", "responsible ai",
		},
	},
	{
		Name:     "privacy",
		Category: models.Compliance,
		Severity: models.SeverityMedium,
		Terms: []string{
			"privacy", "user data", "data collection", "tracking", "surveillance",
			"cookies", "data sharing",
		},
	},
	{
		Name:     "content-moderation",
		Category: models.Social,
		Severity: models.SeverityMedium,
		Terms: []string{
			"moderation", "harmful content", "misinformation", "disinformation",
			"hate speech", "content policy",
		},
	},
}

// HumanRights phrases trigger the human-rights rule of the rich classifier.
var HumanRights = []string{"human rights", "child labor", "forced labor", "labor rights"}

// HumanRightsEvidence upgrades a human-rights hit to high severity.
var HumanRightsEvidence = []string{"violation", "abuse", "allegation", "lawsuit"}

// EnvironmentalSignals trigger the environmental backstop when found in
// headlines.
var EnvironmentalSignals = []string{"climate", "environment", "emission", "carbon"}

// FirstIn returns the first term of list contained in text.
func FirstIn(text string, list []string) (string, bool) {
	for _, term := range list {
		if containsTerm(text, term) {
			return term, true
		}
	}
	return "", false
}

// CountIn returns the terms of list contained in text, in list order.
func CountIn(text string, list []string) []string {
	var out []string
	for _, term := range list {
		if containsTerm(text, term) {
			out = append(out, term)
		}
	}
	return out
}

// containsTerm is plain substring matching: "fine" also hits "fined".
func containsTerm(text, term string) bool {
	return term != "" && strings.Contains(text, term)
}
