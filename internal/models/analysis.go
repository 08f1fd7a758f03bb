package models

// RiskLevel is the overall verdict of an analysis.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Finding is one risk, key finding or recommendation. Source, once
// attributed, is an absolute URL or empty.
type Finding struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

// ESGRisks groups findings by category. All four slices are always non-nil
// in a normalized result.
type ESGRisks struct {
	Environmental []Finding `json:"environmental"`
	Social        []Finding `json:"social"`
	Governance    []Finding `json:"governance"`
	Compliance    []Finding `json:"compliance"`
}

// Get returns the findings stored for c.
func (r *ESGRisks) Get(c Category) []Finding {
	switch c {
	case Environmental:
		return r.Environmental
	case Social:
		return r.Social
	case Governance:
		return r.Governance
	case Compliance:
		return r.Compliance
	}
	return nil
}

// Set replaces the findings stored for c.
func (r *ESGRisks) Set(c Category, findings []Finding) {
	switch c {
	case Environmental:
		r.Environmental = findings
	case Social:
		r.Social = findings
	case Governance:
		r.Governance = findings
	case Compliance:
		r.Compliance = findings
	}
}

// AnalysisResult is the structured output of one analysis request.
type AnalysisResult struct {
	Summary         string    `json:"summary"`
	ESGRisks        ESGRisks  `json:"esgRisks"`
	RiskLevel       RiskLevel `json:"riskLevel"`
	KeyFindings     []Finding `json:"keyFindings"`
	Recommendations []Finding `json:"recommendations"`
}
