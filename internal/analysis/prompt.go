package analysis

import (
	"fmt"
	"strings"

	"github.com/DeafMist/esg-risk-radar/internal/models"
)

const articleSeparator = "\n\n---\n\n"

const responseShape = `{
  "summary": "Concise summary of the key risks",
  "esgRisks": {
    "environmental": [{"text": "Risk", "source": "<article id>"}],
    "social": [{"text": "Risk", "source": "<article id>"}],
    "governance": [{"text": "Risk", "source": "<article id>"}],
    "compliance": [{"text": "Risk", "source": "<article id>"}]
  },
  "riskLevel": "Low|Medium|High",
  "keyFindings": [{"text": "Finding", "source": "<article id>"}],
  "recommendations": [{"text": "Recommendation", "source": "<article id>"}]
}`

// BuildPrompt renders the instruction sent to the model for one analysis.
// Articles are expected to carry unique ids already.
func BuildPrompt(company, industry string, articles []models.Article) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an ESG analyst assessing supply chain risk. "+
		"Analyze the news articles below about %s, a company in the %s industry.\n\n", company, industry)

	for i, a := range articles {
		if i > 0 {
			b.WriteString(articleSeparator)
		}
		writeArticle(&b, a)
	}

	b.WriteString("\n\nReport:\n" +
		"1. A short summary of the main ESG and compliance risks in these articles.\n" +
		"2. The specific risks, grouped as environmental, social, governance and compliance.\n" +
		"3. An overall risk level of Low, Medium or High reflecting how severe and frequent the risks are.\n" +
		"4. The key findings.\n" +
		"5. Recommendations for mitigation and due diligence.\n\n")

	b.WriteString("Examine every article for environmental issues such as climate, pollution, emissions, " +
		"waste, energy or water, including subtle or implied ones. ESG reporting depends on them.\n\n")

	b.WriteString("Reference the article id each risk, finding and recommendation is based on in its \"source\" field. " +
		"If you are not sure which article supports an item, leave \"source\" out instead of guessing.\n\n")

	b.WriteString("Respond with a single JSON object of exactly this shape:\n")
	b.WriteString(responseShape)
	b.WriteString("\n\nStay factual and limit the analysis to what the articles state.\n")

	return b.String()
}

func writeArticle(b *strings.Builder, a models.Article) {
	url := a.URL
	if url == "" {
		url = "N/A"
	}
	fmt.Fprintf(b, "Article ID: %s\n", a.ID)
	fmt.Fprintf(b, "Title: %s\n", a.Title)
	fmt.Fprintf(b, "Source: %s\n", a.Source)
	fmt.Fprintf(b, "Date: %s\n", a.Date)
	fmt.Fprintf(b, "URL: %s\n", url)
	fmt.Fprintf(b, "Content: %s\n", a.Snippet)
	fmt.Fprintf(b, "Risk Factors: %s", riskHints(a.RiskFactors))
}

func riskHints(factors []models.RiskFactor) string {
	if len(factors) == 0 {
		return "none"
	}
	hints := make([]string, 0, len(factors))
	for _, f := range factors {
		hints = append(hints, fmt.Sprintf("%s (%s): %s", f.Category, f.Severity, f.Text))
	}
	return strings.Join(hints, ", ")
}
