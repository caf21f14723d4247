package library

import (
	"github.com/sahilm/fuzzy"
)

// articleSource adapts a slice of articles to fuzzy.Source. Each article is
// matched on its number followed by its content.
type articleSource []Article

func (s articleSource) String(i int) string {
	return s[i].Number + " " + s[i].Content
}

func (s articleSource) Len() int { return len(s) }

// Search returns the articles in category that fuzzily match query, best
// match first. An empty query returns Filter(category).
func (l *Library) Search(query, category string) []Article {
	l.mu.RLock()
	defer l.mu.RUnlock()

	candidates := l.filter(category)
	query = normalize(query)
	if query == "" {
		return candidates
	}

	matches := fuzzy.FindFrom(query, articleSource(candidates))
	out := make([]Article, 0, len(matches))
	for _, m := range matches {
		out = append(out, candidates[m.Index])
	}
	return out
}
