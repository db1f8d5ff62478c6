package wiki

import (
	"context"
	"fmt"
	"strings"

	"github.com/AbdouB/wiki/internal/links"
	"github.com/AbdouB/wiki/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// LinkTarget is the page a selection links to. With PageID nil a new page is
// created under ParentID, titled NewTitle or the selected text.
type LinkTarget struct {
	PageID   *int64
	NewTitle string
	ParentID *int64
}

// LinkOutcome is the result of linking a selection
type LinkOutcome struct {
	Cell        *models.Cell `json:"cell"`
	Page        *models.Page `json:"page"`
	Snippet     string       `json:"snippet"`
	CreatedPage bool         `json:"created_page"`
}

// LinkPreview is what a link picker shows for a selection
type LinkPreview struct {
	CellID      int64               `json:"cell_id"`
	Snippet     string              `json:"snippet"`
	Suggestions []models.RankedPage `json:"suggestions"`
}

// SuggestLinks ranks the project's pages against text, best first.
// excludeID (search.NoPage for none) is never suggested.
func (s *Service) SuggestLinks(ctx context.Context, ref, text string, excludeID int64) ([]models.RankedPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return []models.RankedPage{}, nil
	}
	st, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	ix, err := s.index(st)
	if err != nil {
		return nil, err
	}
	return ix.Suggest(text, excludeID), nil
}

// Suggester returns the picker-side query runner of a project.
// Every call with the same ref shares one runner, so a newer query always wins.
func (s *Service) Suggester(ref string) *links.Suggester {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sg, ok := s.suggesters[ref]; ok {
		return sg
	}
	sg := links.NewSuggester(func(ctx context.Context, text string, excludeID int64) ([]models.RankedPage, error) {
		return s.SuggestLinks(ctx, ref, text, excludeID)
	}, s.log.WithField("project", ref))
	s.suggesters[ref] = sg
	return sg
}

func requireLinkable(cell *models.Cell) error {
	if !cell.Type.Linkable() {
		return models.NewValidationError("cell", fmt.Sprintf("%s cells can not hold links", cell.Type))
	}
	return nil
}

// PreviewLink captures the selection [start,end) of a cell and suggests pages for it.
// The cell is left unchanged.
func (s *Service) PreviewLink(ctx context.Context, ref string, cellID int64, start, end int) (*LinkPreview, error) {
	st, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	cell, err := requireCell(st, cellID)
	if err != nil {
		return nil, err
	}
	if err := requireLinkable(cell); err != nil {
		return nil, err
	}
	pending, err := links.NewBuffer(cell.Content).BeginLink(start, end)
	if err != nil {
		return nil, err
	}
	pending.Abandon()

	suggestions, _ := s.Suggester(ref).Query(ctx, pending.Snippet, cell.PageID)
	return &LinkPreview{CellID: cellID, Snippet: pending.Snippet, Suggestions: suggestions}, nil
}

// LinkSelection turns the selection [start,end) of a cell into a link to target.
// The label is the selected text verbatim.
func (s *Service) LinkSelection(ref string, cellID int64, start, end int, target LinkTarget) (*LinkOutcome, error) {
	st, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	cell, err := requireCell(st, cellID)
	if err != nil {
		return nil, err
	}
	if err := requireLinkable(cell); err != nil {
		return nil, err
	}

	buf := links.NewBuffer(cell.Content)
	pending, err := buf.BeginLink(start, end)
	if err != nil {
		return nil, err
	}

	out := &LinkOutcome{Cell: cell, Snippet: pending.Snippet}
	if target.PageID != nil {
		out.Page, err = s.linkTarget(st, cell, *target.PageID)
	} else {
		title := target.NewTitle
		if strings.TrimSpace(title) == "" {
			title = pending.Snippet
		}
		out.Page, err = newPage(st, title, target.ParentID)
		out.CreatedPage = err == nil
	}
	if err != nil {
		pending.Abandon()
		return nil, err
	}

	// a new page only exists if the cell update commits with it
	err = st.db.WithTx(func(tx *sqlx.Tx) error {
		if out.CreatedPage {
			if err := insertPage(st, tx, out.Page); err != nil {
				return err
			}
		}
		if !pending.Link(out.Page.ID) {
			return fmt.Errorf("selection marker lost in cell %d", cellID)
		}
		cell.Content = buf.Markup()
		msg := fmt.Sprintf("linked %q to page %d", pending.Snippet, out.Page.ID)
		return writeLinkEdit(st, tx, cell, models.ActivityLinkAdd, msg)
	})
	if err != nil {
		return nil, err
	}
	if out.CreatedPage {
		st.log.WithFields(logrus.Fields{"page_id": out.Page.ID, "path": out.Page.Path}).Info("page created")
	}

	st.log.WithFields(logrus.Fields{
		"cell_id":      cellID,
		"target_id":    out.Page.ID,
		"created_page": out.CreatedPage,
	}).Info("selection linked")
	s.touch(st)
	return out, nil
}

func (s *Service) linkTarget(st *store, cell *models.Cell, pageID int64) (*models.Page, error) {
	if pageID == models.MainPageID {
		return nil, models.NewValidationError("target", "the main page can not be linked")
	}
	if pageID == cell.PageID {
		return nil, models.NewValidationError("target", "a page can not link to itself")
	}
	return requirePage(st, pageID)
}

// saveLinkEdit writes rewritten cell markup with an activity entry
func saveLinkEdit(st *store, cell *models.Cell, kind, msg string) error {
	return st.db.WithTx(func(tx *sqlx.Tx) error {
		return writeLinkEdit(st, tx, cell, kind, msg)
	})
}

func writeLinkEdit(st *store, tx *sqlx.Tx, cell *models.Cell, kind, msg string) error {
	cell.UpdatedAt = models.Now()
	if err := st.cells.WithTx(tx).Update(cell); err != nil {
		return fmt.Errorf("failed to update cell: %w", err)
	}
	return st.devlog.WithTx(tx).Record(kind, cell.ID, msg)
}

// UnlinkInCell replaces the first link to pageID labelled label with its plain text
func (s *Service) UnlinkInCell(ref string, cellID, pageID int64, label string) (*models.Cell, error) {
	return s.unlink(ref, cellID, fmt.Sprintf("%q to page %d", label, pageID), func(markup string) (string, bool) {
		return links.Unlink(markup, pageID, label)
	})
}

// UnlinkAt replaces the ordinal-th link of a cell with its plain text
func (s *Service) UnlinkAt(ref string, cellID int64, ordinal int) (*models.Cell, error) {
	return s.unlink(ref, cellID, fmt.Sprintf("#%d", ordinal), func(markup string) (string, bool) {
		return links.UnlinkAt(markup, ordinal)
	})
}

func (s *Service) unlink(ref string, cellID int64, what string, fn func(string) (string, bool)) (*models.Cell, error) {
	st, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	cell, err := requireCell(st, cellID)
	if err != nil {
		return nil, err
	}
	if err := requireLinkable(cell); err != nil {
		return nil, err
	}
	content, ok := fn(cell.Content)
	if !ok {
		return nil, models.NewNotFoundError("link", fmt.Sprintf("%s in cell %d", what, cellID))
	}
	cell.Content = content
	if err := saveLinkEdit(st, cell, models.ActivityLinkRemove, "unlinked "+what); err != nil {
		return nil, err
	}
	st.log.WithFields(logrus.Fields{"cell_id": cellID, "link": what}).Info("link removed")
	s.touch(st)
	return cell, nil
}

// Backlinks lists every link pointing at pageID
func (s *Service) Backlinks(ref string, pageID int64) ([]models.LinkRef, error) {
	st, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	if _, err := requirePage(st, pageID); err != nil {
		return nil, err
	}
	return collectLinks(st, func(l links.Link) bool { return l.PageID == pageID })
}

// BrokenLinks lists links whose target page no longer exists
func (s *Service) BrokenLinks(ref string) ([]models.LinkRef, error) {
	st, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	ix, err := s.index(st)
	if err != nil {
		return nil, err
	}
	return collectLinks(st, func(l links.Link) bool {
		_, ok := ix.Page(l.PageID)
		return !ok
	})
}

func collectLinks(st *store, keep func(links.Link) bool) ([]models.LinkRef, error) {
	hits, err := st.cells.ListWithLinks()
	if err != nil {
		return nil, err
	}
	refs := []models.LinkRef{}
	for _, hit := range hits {
		for _, l := range links.ExtractLinks(hit.Content) {
			if !keep(l) {
				continue
			}
			refs = append(refs, models.LinkRef{
				CellID:    hit.ID,
				PageID:    hit.PageID,
				TargetID:  l.PageID,
				Label:     l.Label,
				Ordinal:   l.Ordinal,
				PageTitle: hit.PageTitle,
			})
		}
	}
	return refs, nil
}
