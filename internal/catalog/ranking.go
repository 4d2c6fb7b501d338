package catalog

import (
	"sort"
	"strings"

	"github.com/nutridesk/server/internal/storage"
)

// Ranking tiers, highest signal first. A candidate lands in exactly one.
const (
	scoreExactName  = 1000
	scoreNamePrefix = 500
	scoreWordPrefix = 300
	scoreNameSubstr = 200
	scoreAllTokens  = 100
	scorePerToken   = 30
)

// Score rates how well a recipe name matches a query. Zero means no
// match. Whole-phrase tiers are tried first; failing those, a query
// with every token present in the name scores 100, and a partial token
// match scores 30 per matching token.
func Score(r storage.Recipe, query string) int {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return 0
	}
	name := strings.ToLower(r.Name)

	switch {
	case name == query:
		return scoreExactName
	case strings.HasPrefix(name, query):
		return scoreNamePrefix
	case wordPrefix(name, query):
		return scoreWordPrefix
	case strings.Contains(name, query):
		return scoreNameSubstr
	}

	tokens := strings.Fields(query)
	matching := 0
	for _, tok := range tokens {
		if strings.Contains(name, tok) {
			matching++
		}
	}
	switch {
	case matching == 0:
		return 0
	case matching == len(tokens):
		return scoreAllTokens
	default:
		return scorePerToken * matching
	}
}

func wordPrefix(name, query string) bool {
	for _, word := range strings.Fields(name) {
		if strings.HasPrefix(word, query) {
			return true
		}
	}
	return false
}

type scored struct {
	recipe storage.Recipe
	score  int
}

// Rank orders recipes by descending score, breaking ties
// alphabetically, and drops non-matches. An empty query returns the
// full list in catalog order, unranked.
func Rank(recipes []storage.Recipe, query string) []storage.Recipe {
	if strings.TrimSpace(query) == "" {
		out := make([]storage.Recipe, len(recipes))
		copy(out, recipes)
		return out
	}

	var matches []scored
	for _, r := range recipes {
		if s := Score(r, query); s > 0 {
			matches = append(matches, scored{recipe: r, score: s})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return strings.ToLower(matches[i].recipe.Name) < strings.ToLower(matches[j].recipe.Name)
	})

	out := make([]storage.Recipe, len(matches))
	for i, m := range matches {
		out[i] = m.recipe
	}
	return out
}

// Paginate slices a ranked list. Ranking always runs over the full set
// first; pagination is a view on the result.
func Paginate(recipes []storage.Recipe, limit, offset int) []storage.Recipe {
	if offset >= len(recipes) {
		return []storage.Recipe{}
	}
	end := offset + limit
	if limit <= 0 || end > len(recipes) {
		end = len(recipes)
	}
	return recipes[offset:end]
}
