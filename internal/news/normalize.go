package news

import (
	"fmt"
	"strings"
	"time"

	"github.com/DeafMist/esg-risk-radar/internal/models"
	"github.com/DeafMist/esg-risk-radar/internal/processing"
)

// NoDescription replaces a missing feed description.
const NoDescription = "No description available"

// DateLayout formats a fallback publication date (UTC, HTTP style).
const DateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

const generatedTitleWords = 12

// Normalize maps raw feed items to articles. Items without an id receive
// "news-<index>-<unixMillis>" computed from now.
func Normalize(items []models.FeedItem, now time.Time) []models.Article {
	out := make([]models.Article, 0, len(items))
	for i, item := range items {
		out = append(out, normalizeItem(i, item, now))
	}
	return out
}

func normalizeItem(index int, item models.FeedItem, now time.Time) models.Article {
	snippet := processing.StripHTML(item.Description)

	title, source := headline(item)
	if title == "" {
		title = processing.GenerateTitleFromText(snippet, generatedTitleWords)
	}
	if snippet == "" {
		snippet = NoDescription
	}

	date := strings.TrimSpace(item.Published)
	if date == "" {
		date = now.UTC().Format(DateLayout)
	}

	id := strings.TrimSpace(item.ID)
	if id == "" {
		id = fmt.Sprintf("news-%d-%d", index, now.UnixMilli())
	}

	return models.Article{
		ID:      id,
		Title:   title,
		Source:  source,
		Date:    date,
		URL:     processing.EnsureAbsoluteURL(item.Link),
		Snippet: snippet,
	}
}

func headline(item models.FeedItem) (string, string) {
	raw := processing.StripHTML(item.Title)
	source := strings.TrimSpace(item.Source)
	if source == "" {
		return processing.SplitHeadline(raw)
	}
	return strings.TrimSpace(strings.TrimSuffix(raw, " - "+source)), source
}

// EnsureIDs returns a copy of articles in which every id is present and
// unique. Missing or repeated ids become "article-<index>".
func EnsureIDs(articles []models.Article) []models.Article {
	out := make([]models.Article, len(articles))
	taken := make(map[string]struct{}, len(articles))
	for _, a := range articles {
		if id := strings.TrimSpace(a.ID); id != "" {
			taken[id] = struct{}{}
		}
	}

	used := make(map[string]struct{}, len(articles))
	for i, a := range articles {
		a.ID = strings.TrimSpace(a.ID)
		if _, dup := used[a.ID]; a.ID == "" || dup {
			a.ID = freeID(i, taken)
		}
		used[a.ID] = struct{}{}
		taken[a.ID] = struct{}{}
		out[i] = a
	}
	return out
}

func freeID(index int, taken map[string]struct{}) string {
	id := fmt.Sprintf("article-%d", index)
	for n := 1; ; n++ {
		if _, ok := taken[id]; !ok {
			return id
		}
		id = fmt.Sprintf("article-%d-%d", index, n)
	}
}

// URLIndex maps article ids to their absolute URLs. Articles without either
// are skipped.
func URLIndex(articles []models.Article) map[string]string {
	idx := make(map[string]string, len(articles))
	for _, a := range articles {
		u := processing.EnsureAbsoluteURL(a.URL)
		if a.ID == "" || u == "" {
			continue
		}
		idx[a.ID] = u
	}
	return idx
}
