// Package search ranks pages against free text
package search

import (
	"sort"
	"strings"
	"unicode"
)

// Item is a candidate to be matched
type Item struct {
	ID   int64
	Text string
}

// Result is a matched item with its score; lower scores are better
type Result struct {
	ID    int64
	Text  string
	Score float64
}

// Rank scores query against each item and keeps those scoring within threshold.
// Results are sorted by score ascending, then text, then ID, and cut to limit (0 = no limit).
func Rank(query string, items []Item, threshold float64, limit int) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	queryTokens := tokenize(query)

	var results []Result
	for _, item := range items {
		score := scoreText(query, queryTokens, item.Text)
		if score <= threshold {
			results = append(results, Result{ID: item.ID, Text: item.Text, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score < results[j].Score
		}
		ti, tj := strings.ToLower(results[i].Text), strings.ToLower(results[j].Text)
		if ti != tj {
			return ti < tj
		}
		return results[i].ID < results[j].ID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Score returns how far text is from query: 0 is identical, 1 is unrelated
func Score(query, text string) float64 {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return 1
	}
	return scoreText(query, tokenize(query), text)
}

// scoreText takes the better of the whole-string distance and the token distance
func scoreText(query string, queryTokens []string, text string) float64 {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return 1
	}
	if query == text {
		return 0
	}

	score := normalizedDistance(query, text)
	if ts, ok := tokenScore(queryTokens, tokenize(text)); ok && ts < score {
		score = ts
	}
	if score > 1 {
		score = 1
	}
	return score
}

// tokenScore averages, over the query tokens, the distance to the closest text token.
// Text tokens the query leaves uncovered add a small penalty.
func tokenScore(queryTokens, textTokens []string) (float64, bool) {
	if len(queryTokens) == 0 || len(textTokens) == 0 {
		return 0, false
	}

	var total float64
	for _, q := range queryTokens {
		best := 1.0
		for _, t := range textTokens {
			if d := tokenDistance(q, t); d < best {
				best = d
			}
		}
		total += best
	}
	score := total / float64(len(queryTokens))

	if extra := len(textTokens) - len(queryTokens); extra > 0 {
		score += 0.1 * float64(extra) / float64(len(textTokens))
	}
	return score, true
}

// tokenDistance treats a query token that prefixes the text token as a partial word
func tokenDistance(q, t string) float64 {
	if q == t {
		return 0
	}
	ql, tl := len([]rune(q)), len([]rune(t))
	if strings.HasPrefix(t, q) {
		return 0.5 * (1 - float64(ql)/float64(tl))
	}
	return normalizedDistance(q, t)
}

// normalizedDistance is the Levenshtein distance divided by the longer length
func normalizedDistance(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 0
	}
	return float64(levenshtein(ra, rb)) / float64(longest)
}

// levenshtein computes the edit distance with two rolling rows
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// tokenize splits text into lower-cased letter/digit runs
func tokenize(s string) []string {
	s = strings.ToLower(s)
	// Split on whitespace and common separators
	var tokens []string
	var current strings.Builder

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
		} else if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}
