// ABOUTME: Thin wrapper over sahilm/fuzzy for fuzzy name matching
// ABOUTME: Ranks candidates for a query and picks a "did you mean" suggestion

package fuzzy

import "github.com/sahilm/fuzzy"

// Match represents a single fuzzy match result.
type Match struct {
	Str            string
	Index          int
	MatchedIndexes []int
	Score          int
}

// Find performs fuzzy matching of pattern against the given items.
// Returns matches sorted by score (best first).
func Find(pattern string, items []string) []Match {
	results := fuzzy.Find(pattern, items)
	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{
			Str:            r.Str,
			Index:          r.Index,
			MatchedIndexes: r.MatchedIndexes,
			Score:          r.Score,
		}
	}
	return matches
}

// Suggest returns the candidate closest to name. A candidate matches when
// name is a fuzzy subsequence of it, or, failing that, when it is a fuzzy
// subsequence of name (catches typos with an extra character).
func Suggest(name string, candidates []string) (string, bool) {
	if name == "" {
		return "", false
	}
	if matches := Find(name, candidates); len(matches) > 0 {
		return matches[0].Str, true
	}

	best, bestScore := "", 0
	for _, c := range candidates {
		if c == "" {
			continue
		}
		m := Find(c, []string{name})
		if len(m) > 0 && (best == "" || m[0].Score > bestScore) {
			best, bestScore = c, m[0].Score
		}
	}
	return best, best != ""
}
