package search

import (
	"github.com/AbdouB/wiki/internal/models"
	"github.com/sahilm/fuzzy"
)

// NoPage disables page exclusion in resolver queries
const NoPage int64 = -1

// Defaults for Suggest
const (
	DefaultThreshold = 0.4
	DefaultLimit     = 10
)

// PageIndex is an in-memory view of a project's pages used to resolve link phrases
type PageIndex struct {
	pages     []*models.Page
	byID      map[int64]*models.Page
	threshold float64
	limit     int
}

// Option configures a PageIndex
type Option func(*PageIndex)

// WithThreshold sets the worst score Suggest keeps
func WithThreshold(threshold float64) Option {
	return func(ix *PageIndex) {
		if threshold > 0 {
			ix.threshold = threshold
		}
	}
}

// WithLimit sets the maximum number of suggestions
func WithLimit(limit int) Option {
	return func(ix *PageIndex) {
		if limit > 0 {
			ix.limit = limit
		}
	}
}

// NewPageIndex indexes pages; the main page is skipped
func NewPageIndex(pages []*models.Page, opts ...Option) *PageIndex {
	ix := &PageIndex{
		byID:      make(map[int64]*models.Page, len(pages)),
		threshold: DefaultThreshold,
		limit:     DefaultLimit,
	}
	for _, p := range pages {
		if p.IsMain() {
			continue
		}
		ix.pages = append(ix.pages, p)
		ix.byID[p.ID] = p
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Page returns an indexed page by ID
func (ix *PageIndex) Page(id int64) (*models.Page, bool) {
	p, ok := ix.byID[id]
	return p, ok
}

// Len returns the number of indexed pages
func (ix *PageIndex) Len() int {
	return len(ix.pages)
}

// Suggest ranks page titles by similarity to text, best first.
// The page excludeID never suggests itself.
func (ix *PageIndex) Suggest(text string, excludeID int64) []models.RankedPage {
	items := make([]Item, 0, len(ix.pages))
	for _, p := range ix.pages {
		if p.ID == excludeID {
			continue
		}
		items = append(items, Item{ID: p.ID, Text: p.Title})
	}

	results := Rank(text, items, ix.threshold, ix.limit)
	ranked := make([]models.RankedPage, 0, len(results))
	for _, r := range results {
		p := ix.byID[r.ID]
		ranked = append(ranked, models.RankedPage{
			ID:    p.ID,
			Title: p.Title,
			Path:  p.Path,
			Score: r.Score,
		})
	}
	return ranked
}

// FindExactTitle returns the page whose title equals phrase ignoring case.
// The lowest ID wins when titles repeat.
func (ix *PageIndex) FindExactTitle(phrase string, excludeID int64) *models.Page {
	var found *models.Page
	for _, p := range ix.pages {
		if p.ID == excludeID || !models.SameTitle(p.Title, phrase) {
			continue
		}
		if found == nil || p.ID < found.ID {
			found = p
		}
	}
	return found
}

// pageTitles adapts a page list to fuzzy.Source
type pageTitles []*models.Page

func (p pageTitles) String(i int) string { return p[i].Title }
func (p pageTitles) Len() int            { return len(p) }

// MatchTitles runs a subsequence search over page titles, best first
func (ix *PageIndex) MatchTitles(query string) []models.TitleMatch {
	matches := fuzzy.FindFrom(query, pageTitles(ix.pages))
	out := make([]models.TitleMatch, 0, len(matches))
	for _, m := range matches {
		p := ix.pages[m.Index]
		out = append(out, models.TitleMatch{
			PageID:     p.ID,
			Title:      p.Title,
			Path:       p.Path,
			Score:      m.Score,
			Highlights: m.MatchedIndexes,
		})
	}
	return out
}
