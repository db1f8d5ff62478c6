package links

import (
	"context"
	"sync/atomic"

	"github.com/AbdouB/wiki/internal/models"
	"github.com/sirupsen/logrus"
)

// SuggestFunc asks a resolver for pages matching text
type SuggestFunc func(ctx context.Context, text string, excludeID int64) ([]models.RankedPage, error)

// Suggester issues resolver queries for a picker and drops responses that
// arrive after a newer query was issued.
type Suggester struct {
	fn  SuggestFunc
	log logrus.FieldLogger
	seq atomic.Uint64
}

// NewSuggester wraps fn
func NewSuggester(fn SuggestFunc, log logrus.FieldLogger) *Suggester {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Suggester{fn: fn, log: log}
}

// Query runs a suggestion query. The second result is false when a newer query
// superseded this one; the suggestions are then nil and must not be shown.
// Resolver failures are logged and yield an empty list.
func (s *Suggester) Query(ctx context.Context, text string, excludeID int64) ([]models.RankedPage, bool) {
	id := s.seq.Add(1)

	pages, err := s.fn(ctx, text, excludeID)
	if s.seq.Load() != id {
		return nil, false
	}
	if err != nil {
		s.log.WithError(err).WithField("text", text).Warn("link suggestions unavailable")
		return []models.RankedPage{}, true
	}
	if pages == nil {
		pages = []models.RankedPage{}
	}
	return pages, true
}
