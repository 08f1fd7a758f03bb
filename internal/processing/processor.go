package processing

import (
	"crypto/sha1"
	"encoding/hex"
	"html"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var urlRegex = regexp.MustCompile(`https?://[^\s]+`)

var (
	tags        = regexp.MustCompile(`<[^>]*>`)
	whitespace  = regexp.MustCompile(`\s+`)
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "to": {}, "in": {}, "for": {}, "of": {}, "on": {},
	"and": {}, "or": {}, "with": {}, "from": {}, "by": {}, "at": {}, "as": {}, "is": {},
	"are": {}, "was": {}, "were": {}, "be": {}, "its": {}, "it": {}, "this": {}, "that": {},
	"after": {}, "over": {}, "about": {}, "into": {}, "has": {}, "have": {}, "will": {},
}

// headlineSeparator divides a Google News headline from its publisher.
const headlineSeparator = " - "

// UnknownSource is used when a headline carries no publisher suffix.
const UnknownSource = "Unknown Source"

// RemoveURLs removes all URLs from the input text.
func RemoveURLs(input string) string {
	return urlRegex.ReplaceAllString(input, " ")
}

// StripHTML decodes entities, drops markup and squeezes whitespace. Feed
// descriptions arrive as HTML fragments.
func StripHTML(input string) string {
	if input == "" {
		return ""
	}
	out := tags.ReplaceAllString(html.UnescapeString(input), " ")
	// entities can survive one pass when feeds double-encode
	out = html.UnescapeString(out)
	out = whitespace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// CleanText strips markup, URLs and punctuation and squeezes whitespace.
func CleanText(input string) string {
	if input == "" {
		return ""
	}
	decoded := StripHTML(input)
	decoded = RemoveURLs(decoded)
	decoded = punctuation.ReplaceAllString(decoded, " ")
	decoded = whitespace.ReplaceAllString(decoded, " ")
	return strings.TrimSpace(decoded)
}

// SplitHeadline separates "Title - Publisher" headlines. The last separator
// wins; without one the source is UnknownSource.
func SplitHeadline(headline string) (title, source string) {
	headline = strings.TrimSpace(headline)
	idx := strings.LastIndex(headline, headlineSeparator)
	if idx < 0 {
		return headline, UnknownSource
	}
	title = strings.TrimSpace(headline[:idx])
	source = strings.TrimSpace(headline[idx+len(headlineSeparator):])
	if source == "" {
		source = UnknownSource
	}
	return title, source
}

// EnsureAbsoluteURL prefixes scheme-less links with https://.
func EnsureAbsoluteURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + strings.TrimPrefix(raw, "//")
}

// ExtractKeywords returns the most frequent words that are not stop-words.
func ExtractKeywords(text string, limit, minLen int) []string {
	clean := strings.ToLower(CleanText(text))
	if clean == "" {
		return nil
	}

	freq := make(map[string]int)
	for _, token := range strings.Fields(clean) {
		token = strings.TrimFunc(token, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if len([]rune(token)) < minLen {
			continue
		}
		if _, skip := stopwords[token]; skip {
			continue
		}
		freq[token]++
	}

	if len(freq) == 0 {
		return nil
	}

	type kv struct {
		word  string
		count int
	}

	pairs := make([]kv, 0, len(freq))
	for word, count := range freq {
		pairs = append(pairs, kv{word: word, count: count})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count == pairs[j].count {
			return pairs[i].word < pairs[j].word
		}
		return pairs[i].count > pairs[j].count
	})

	max := limit
	if max <= 0 || max > len(pairs) {
		max = len(pairs)
	}

	keywords := make([]string, 0, max)
	for i := 0; i < max; i++ {
		keywords = append(keywords, pairs[i].word)
	}

	return keywords
}

// BuildDocumentID hashes company and link (or title when the link is
// missing) so re-fetched articles land on the same document.
func BuildDocumentID(company, link, title string) string {
	key := strings.TrimSpace(link)
	if key == "" {
		key = strings.ToLower(strings.TrimSpace(title))
	}
	if key == "" {
		return ""
	}
	s := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(company)) + "|" + key))
	return hex.EncodeToString(s[:])
}

// GenerateTitleFromText creates a title from the first sentence or first N words of text.
// Returns empty string if text is empty.
func GenerateTitleFromText(text string, maxWords int) string {
	if text == "" {
		return ""
	}

	textWithoutURLs := RemoveURLs(text)

	sentenceEnd := strings.IndexAny(textWithoutURLs, ".!?")
	var firstSentence string
	if sentenceEnd > 0 {
		firstSentence = strings.TrimSpace(textWithoutURLs[:sentenceEnd])
	} else {
		firstSentence = textWithoutURLs
	}

	words := strings.Fields(firstSentence)
	if len(words) == 0 {
		return ""
	}

	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
		return strings.Join(words, " ") + "..."
	}

	return strings.Join(words, " ")
}
