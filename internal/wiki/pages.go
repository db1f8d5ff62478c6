package wiki

import (
	"fmt"
	"strings"

	"github.com/AbdouB/wiki/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// DeleteResult counts what a page deletion removed
type DeleteResult struct {
	PageID int64 `json:"page_id"`
	Pages  int   `json:"pages"`
	Cells  int   `json:"cells"`
}

// ListPages lists the ordinary pages of a project ordered by path
func (s *Service) ListPages(ref string) ([]*models.Page, error) {
	st, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	pages, err := st.pages.List()
	if err != nil {
		return nil, err
	}
	if pages == nil {
		pages = []*models.Page{}
	}
	return pages, nil
}

// GetPage returns a page with its cells in order. MainPageID returns the main page.
func (s *Service) GetPage(ref string, pageID int64) (*models.PageView, error) {
	st, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	page, err := requirePage(st, pageID)
	if err != nil {
		return nil, err
	}
	cells, err := st.cells.ListByPage(pageID)
	if err != nil {
		return nil, err
	}
	return &models.PageView{Page: *page, Cells: cells}, nil
}

func requirePage(st *store, pageID int64) (*models.Page, error) {
	page, err := st.pages.Get(pageID)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, models.NewNotFoundError("page", pageID)
	}
	return page, nil
}

// normalizeParent maps a nil or MainPageID parent to top level
func normalizeParent(parentID *int64) int64 {
	if parentID == nil {
		return models.MainPageID
	}
	return *parentID
}

func cleanTitle(title string) (string, error) {
	title = strings.TrimSpace(strings.ToValidUTF8(title, ""))
	if title == "" {
		return "", models.NewValidationError("title", "must not be empty")
	}
	if strings.Contains(title, models.PathSeparator) {
		return "", models.NewValidationError("title", fmt.Sprintf("must not contain %q", models.PathSeparator))
	}
	return title, nil
}

// CreatePage adds a page under parentID (nil or MainPageID for top level).
// The page starts with a summary header and an empty text cell.
func (s *Service) CreatePage(ref, title string, parentID *int64) (*models.Page, error) {
	st, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	page, err := s.createPage(st, title, parentID)
	if err != nil {
		return nil, err
	}
	s.touch(st)
	return page, nil
}

func (s *Service) createPage(st *store, title string, parentID *int64) (*models.Page, error) {
	page, err := newPage(st, title, parentID)
	if err != nil {
		return nil, err
	}
	err = st.db.WithTx(func(tx *sqlx.Tx) error {
		return insertPage(st, tx, page)
	})
	if err != nil {
		return nil, err
	}

	st.log.WithFields(logrus.Fields{"page_id": page.ID, "path": page.Path}).Info("page created")
	return page, nil
}

// newPage validates title and resolves the path under parentID without writing anything
func newPage(st *store, title string, parentID *int64) (*models.Page, error) {
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}

	parentPath := ""
	parent := normalizeParent(parentID)
	if parent != models.MainPageID {
		p, err := requirePage(st, parent)
		if err != nil {
			return nil, err
		}
		parentPath = p.Path
	}

	now := models.Now()
	page := &models.Page{
		Title:     title,
		Path:      models.JoinPath(parentPath, title),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if parent != models.MainPageID {
		page.ParentID = &parent
	}
	return page, nil
}

// insertPage writes page with its summary header and empty text cell
func insertPage(st *store, tx *sqlx.Tx, page *models.Page) error {
	if err := st.pages.WithTx(tx).Create(page); err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}
	cells := st.cells.WithTx(tx)
	seed := []*models.Cell{
		{PageID: page.ID, Type: models.CellHeader, Content: html.EscapeString(models.SummaryTitle(page.Title)), OrderIndex: 0},
		{PageID: page.ID, Type: models.CellText, Content: "", OrderIndex: 1},
	}
	for _, c := range seed {
		c.CreatedAt, c.UpdatedAt = page.CreatedAt, page.CreatedAt
		if err := cells.Create(c); err != nil {
			return fmt.Errorf("failed to seed cell: %w", err)
		}
	}
	return st.devlog.WithTx(tx).Record(models.ActivityPageCreate, page.ID, "created "+page.Path)
}

// loadTree reads every page of a project into memory
func loadTree(st *store) (*tree, error) {
	pages, err := st.pages.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	return newTree(pages), nil
}

// savePaths writes a page and the refreshed paths of its descendants in one transaction
func savePaths(st *store, tx *sqlx.Tx, page *models.Page, descendants []*models.Page) error {
	pages := st.pages.WithTx(tx)
	if err := pages.Update(page); err != nil {
		return fmt.Errorf("failed to update page %d: %w", page.ID, err)
	}
	for _, d := range descendants {
		if err := pages.UpdatePath(d.ID, d.Path, d.UpdatedAt); err != nil {
			return fmt.Errorf("failed to update path of page %d: %w", d.ID, err)
		}
	}
	return nil
}

// MovePage reparents a page. A nil or MainPageID parent makes it top level.
// Moving a page under itself or a descendant fails with a CycleError and changes nothing.
func (s *Service) MovePage(ref string, pageID int64, newParentID *int64) (*models.Page, error) {
	if pageID == models.MainPageID {
		return nil, models.NewValidationError("page", "the main page can not be moved")
	}
	st, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	t, err := loadTree(st)
	if err != nil {
		return nil, err
	}
	page, ok := t.byID[pageID]
	if !ok {
		return nil, models.NewNotFoundError("page", pageID)
	}

	parent := normalizeParent(newParentID)
	if parent != models.MainPageID {
		if _, ok := t.byID[parent]; !ok {
			return nil, models.NewNotFoundError("page", parent)
		}
		if t.isAncestor(pageID, parent) {
			return nil, &models.CycleError{PageID: pageID, ParentID: parent}
		}
	}

	oldPath := page.Path
	t.reparent(page, parent)
	descendants := t.repath(page, models.Now())

	err = st.db.WithTx(func(tx *sqlx.Tx) error {
		if err := savePaths(st, tx, page, descendants); err != nil {
			return err
		}
		return st.devlog.WithTx(tx).Record(models.ActivityPageMove, page.ID,
			fmt.Sprintf("moved %s to %s", oldPath, page.Path))
	})
	if err != nil {
		return nil, err
	}

	st.log.WithFields(logrus.Fields{
		"page_id":     page.ID,
		"path":        page.Path,
		"descendants": len(descendants),
	}).Info("page moved")
	s.touch(st)
	return page, nil
}

// RenamePage changes a page title and the path of its whole subtree.
// Links to the page keep their labels.
func (s *Service) RenamePage(ref string, pageID int64, newTitle string) (*models.Page, error) {
	if pageID == models.MainPageID {
		return nil, models.NewValidationError("page", "the main page can not be renamed")
	}
	title, err := cleanTitle(newTitle)
	if err != nil {
		return nil, err
	}
	st, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	t, err := loadTree(st)
	if err != nil {
		return nil, err
	}
	page, ok := t.byID[pageID]
	if !ok {
		return nil, models.NewNotFoundError("page", pageID)
	}

	oldTitle := page.Title
	page.Title = title
	descendants := t.repath(page, models.Now())

	err = st.db.WithTx(func(tx *sqlx.Tx) error {
		if err := savePaths(st, tx, page, descendants); err != nil {
			return err
		}
		return st.devlog.WithTx(tx).Record(models.ActivityPageRename, page.ID,
			fmt.Sprintf("renamed %s to %s", oldTitle, title))
	})
	if err != nil {
		return nil, err
	}

	st.log.WithFields(logrus.Fields{"page_id": page.ID, "path": page.Path}).Info("page renamed")
	s.touch(st)
	return page, nil
}

// DeletePage removes a page with all its descendants and their cells
func (s *Service) DeletePage(ref string, pageID int64) (*DeleteResult, error) {
	if pageID == models.MainPageID {
		return nil, models.NewValidationError("page", "the main page can not be deleted")
	}
	st, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	t, err := loadTree(st)
	if err != nil {
		return nil, err
	}
	page, ok := t.byID[pageID]
	if !ok {
		return nil, models.NewNotFoundError("page", pageID)
	}

	ids := t.subtree(pageID)
	res := &DeleteResult{PageID: pageID, Pages: len(ids)}
	err = st.db.WithTx(func(tx *sqlx.Tx) error {
		n, err := st.cells.WithTx(tx).CountByPages(ids)
		if err != nil {
			return err
		}
		res.Cells = n
		if err := st.pages.WithTx(tx).Delete(pageID); err != nil {
			return fmt.Errorf("failed to delete page: %w", err)
		}
		return st.devlog.WithTx(tx).Record(models.ActivityPageDelete, pageID,
			fmt.Sprintf("deleted %s with %d pages and %d cells", page.Path, res.Pages, res.Cells))
	})
	if err != nil {
		return nil, err
	}

	st.log.WithFields(logrus.Fields{"page_id": pageID, "pages": res.Pages, "cells": res.Cells}).Info("page deleted")
	s.touch(st)
	return res, nil
}
