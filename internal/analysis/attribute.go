package analysis

import (
	"net/url"
	"strings"

	"github.com/DeafMist/esg-risk-radar/internal/models"
	"github.com/DeafMist/esg-risk-radar/internal/processing"
)

// Attribute resolves the source of every finding to an article URL. The
// result has the same length and order as items; items is not modified.
//
// Resolution, first rule wins:
//  1. a source present in idToURL is replaced by the mapped URL;
//  2. a source already equal to an article URL is kept;
//  3. the first article whose title, then the first whose snippet, contains
//     the finding text (case-insensitive) supplies its URL;
//  4. otherwise the source is cleared, including URLs of no article in the
//     batch.
func Attribute(items []models.Finding, idToURL map[string]string, articles []models.Article) []models.Finding {
	out := make([]models.Finding, len(items))
	for i, item := range items {
		item.Source = resolve(item, idToURL, articles)
		out[i] = item
	}
	return out
}

func resolve(item models.Finding, idToURL map[string]string, articles []models.Article) string {
	src := strings.TrimSpace(item.Source)
	if u, ok := idToURL[src]; ok && src != "" {
		return processing.EnsureAbsoluteURL(u)
	}
	if isAbsoluteURL(src) && isArticleURL(src, articles) {
		return src
	}
	if a, ok := MatchArticle(item.Text, articles); ok {
		return processing.EnsureAbsoluteURL(a.URL)
	}
	return ""
}

// MatchArticle returns the first article whose title contains text, or
// failing that the first whose snippet does. Ties go to the earlier
// article. Empty text matches nothing.
func MatchArticle(text string, articles []models.Article) (models.Article, bool) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return models.Article{}, false
	}
	for _, a := range articles {
		if strings.Contains(strings.ToLower(a.Title), needle) {
			return a, true
		}
	}
	for _, a := range articles {
		if strings.Contains(strings.ToLower(a.Snippet), needle) {
			return a, true
		}
	}
	return models.Article{}, false
}

func isArticleURL(src string, articles []models.Article) bool {
	for _, a := range articles {
		if u := processing.EnsureAbsoluteURL(a.URL); u != "" && u == src {
			return true
		}
	}
	return false
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
