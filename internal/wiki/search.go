package wiki

import (
	"strings"

	"github.com/AbdouB/wiki/internal/links"
	"github.com/AbdouB/wiki/internal/models"
)

const (
	maxContentMatches = 50
	searchBatch       = 200
	snippetRadius     = 40
)

// SearchPages matches query against page titles (subsequence match) and cell text (substring)
func (s *Service) SearchPages(ref, query string) (*models.SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("query", "must not be empty")
	}
	st, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	ix, err := s.index(st)
	if err != nil {
		return nil, err
	}

	res := &models.SearchResults{
		TitleMatches:   ix.MatchTitles(query),
		ContentMatches: []models.ContentMatch{},
	}
	res.ContentMatches, err = contentMatches(st, query)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// contentMatches pages through LIKE hits until enough cells match on their visible text.
// LIKE also hits tag names and attributes, so every hit is checked again.
func contentMatches(st *store, query string) ([]models.ContentMatch, error) {
	matches := []models.ContentMatch{}
	for offset := 0; ; offset += searchBatch {
		hits, err := st.cells.FindByText(query, searchBatch, offset)
		if err != nil {
			return nil, err
		}
		for _, hit := range hits {
			snippet, ok := snippetAround(cellText(&hit.Cell), query)
			if !ok {
				continue
			}
			matches = append(matches, models.ContentMatch{
				PageID:    hit.PageID,
				PageTitle: hit.PageTitle,
				CellID:    hit.ID,
				Snippet:   snippet,
			})
			if len(matches) == maxContentMatches {
				return matches, nil
			}
		}
		if len(hits) < searchBatch {
			return matches, nil
		}
	}
}

// cellText is the searchable plain text of a cell
func cellText(c *models.Cell) string {
	b, err := c.Block()
	if err != nil {
		return c.Content
	}
	switch v := b.(type) {
	case models.TextBlock:
		return links.PlainText(v.HTML)
	case models.HeaderBlock:
		return links.PlainText(v.HTML)
	case models.SubheaderBlock:
		return links.PlainText(v.HTML)
	case models.TableBlock:
		parts := append([]string{}, v.Headers...)
		for _, row := range v.Rows {
			parts = append(parts, row...)
		}
		return strings.Join(parts, " ")
	case models.RankingBlock:
		parts := make([]string, 0, len(v.Items)*2)
		for _, item := range v.Items {
			parts = append(parts, item.Label, item.Note)
		}
		return strings.Join(parts, " ")
	}
	return c.Content
}

// snippetAround cuts text around the first case-insensitive occurrence of query
func snippetAround(text, query string) (string, bool) {
	runes := []rune(text)
	lower := []rune(strings.ToLower(text))
	q := []rune(strings.ToLower(query))
	if len(lower) != len(runes) {
		// case folding changed the length; fall back to byte search on the whole text
		if !strings.Contains(strings.ToLower(text), strings.ToLower(query)) {
			return "", false
		}
		return strings.Join(strings.Fields(text), " "), true
	}

	at := indexRunes(lower, q)
	if at < 0 {
		return "", false
	}
	from := max(0, at-snippetRadius)
	to := min(len(runes), at+len(q)+snippetRadius)
	snippet := strings.Join(strings.Fields(string(runes[from:to])), " ")
	if from > 0 {
		snippet = "…" + snippet
	}
	if to < len(runes) {
		snippet += "…"
	}
	return snippet, true
}

func indexRunes(s, sub []rune) int {
	if len(sub) == 0 {
		return 0
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		match := true
		for j := range sub {
			if s[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
