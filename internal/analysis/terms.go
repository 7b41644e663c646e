package analysis

import (
	"os"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"review_dashboard/internal/domain"
)

// DefaultStopwords is used when no stopword file is configured.
var DefaultStopwords = []string{
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "from", "had", "has", "have",
	"i", "if", "in", "is", "it", "its", "me", "my", "not", "of", "on", "or", "so", "that", "the",
	"this", "to", "was", "we", "were", "with", "you", "they", "them", "very", "just", "would",
}

// Stoplist is the YAML shape of a stopword file: `terms: [..]`.
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

func LoadStopwords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}
	return sl.Terms, nil
}

// TermCounter counts word frequencies across a text corpus.
type TermCounter struct {
	stop map[string]struct{}
}

func NewTermCounter(stopwords []string) *TermCounter {
	stop := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &TermCounter{stop: stop}
}

// Tokenize lowercases text and splits it on anything but letters, digits and
// inner apostrophes. Stopwords, one-letter and pure-numeric tokens are dropped.
func (c *TermCounter) Tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(w, "'")
		if len([]rune(w)) <= 1 || numeric(w) {
			continue
		}
		if _, ok := c.stop[w]; ok {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Top returns the limit most frequent terms, ties broken alphabetically.
// limit <= 0 returns all terms.
func (c *TermCounter) Top(texts []string, limit int) []domain.TermCount {
	counts := map[string]int{}
	for _, t := range texts {
		for _, w := range c.Tokenize(t) {
			counts[w]++
		}
	}
	out := make([]domain.TermCount, 0, len(counts))
	for term, n := range counts {
		out = append(out, domain.TermCount{Term: term, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Term < out[j].Term
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func numeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
