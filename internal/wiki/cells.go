package wiki

import (
	"fmt"
	"strings"

	"github.com/AbdouB/wiki/internal/db"
	"github.com/AbdouB/wiki/internal/links"
	"github.com/AbdouB/wiki/internal/markup"
	"github.com/AbdouB/wiki/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// CellInput describes a new cell
type CellInput struct {
	Type       models.CellType
	Content    string
	OrderIndex *int // nil appends after the last cell
}

// CellResult is a saved cell with the links created while saving it
type CellResult struct {
	Cell    *models.Cell    `json:"cell"`
	Created []links.Created `json:"created_links,omitempty"`
}

// prepare validates content for a cell type and returns its stored form.
// Markup is sanitized, stripped of link markers and auto-linked against the
// project's pages; pageID never links to itself.
func (s *Service) prepare(st *store, pageID int64, t models.CellType, content string) (string, []links.Created, error) {
	// stored content is always valid UTF-8
	content = strings.ToValidUTF8(content, "")
	if !t.Linkable() {
		normalized, err := models.NormalizeContent(t, content)
		return normalized, nil, err
	}

	clean := links.StripMarkers(markup.Sanitize(content))
	ix, err := s.index(st)
	if err != nil {
		return "", nil, err
	}
	res := links.NewLinker(ix).Scan(clean, pageID)
	return res.Markup, res.Created, nil
}

// recordLinks writes one activity entry per auto-created link
func recordLinks(devlog *db.DevlogRepository, cellID int64, created []links.Created) error {
	for _, c := range created {
		msg := fmt.Sprintf("linked %q to page %d", c.Label, c.PageID)
		if err := devlog.Record(models.ActivityLinkAdd, cellID, msg); err != nil {
			return err
		}
	}
	return nil
}

func requireCell(st *store, cellID int64) (*models.Cell, error) {
	cell, err := st.cells.Get(cellID)
	if err != nil {
		return nil, err
	}
	if cell == nil {
		return nil, models.NewNotFoundError("cell", cellID)
	}
	return cell, nil
}

// CreateCell adds a cell to a page. The main page accepts cells too.
func (s *Service) CreateCell(ref string, pageID int64, in CellInput) (*CellResult, error) {
	t, err := models.ParseCellType(string(in.Type))
	if err != nil {
		return nil, err
	}
	st, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	res, err := s.createCell(st, pageID, t, in.Content, in.OrderIndex)
	if err != nil {
		return nil, err
	}
	s.touch(st)
	return res, nil
}

func (s *Service) createCell(st *store, pageID int64, t models.CellType, content string, orderIndex *int) (*CellResult, error) {
	if _, err := requirePage(st, pageID); err != nil {
		return nil, err
	}
	if orderIndex != nil && *orderIndex < 0 {
		return nil, models.NewValidationError("order_index", "must not be negative")
	}
	stored, created, err := s.prepare(st, pageID, t, content)
	if err != nil {
		return nil, err
	}

	now := models.Now()
	cell := &models.Cell{
		PageID:    pageID,
		Type:      t,
		Content:   stored,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = st.db.WithTx(func(tx *sqlx.Tx) error {
		cells := st.cells.WithTx(tx)
		if orderIndex != nil {
			cell.OrderIndex = *orderIndex
		} else {
			max, err := cells.MaxOrder(pageID)
			if err != nil {
				return err
			}
			cell.OrderIndex = max + 1
		}
		if err := cells.Create(cell); err != nil {
			return fmt.Errorf("failed to create cell: %w", err)
		}
		devlog := st.devlog.WithTx(tx)
		if err := devlog.Record(models.ActivityCellCreate, cell.ID,
			fmt.Sprintf("added %s cell to page %d", t, pageID)); err != nil {
			return err
		}
		return recordLinks(devlog, cell.ID, created)
	})
	if err != nil {
		return nil, err
	}

	st.log.WithFields(logrus.Fields{
		"cell_id": cell.ID,
		"page_id": pageID,
		"type":    t,
		"links":   len(created),
	}).Info("cell created")
	return &CellResult{Cell: cell, Created: created}, nil
}

// UpdateCell changes the type and/or content of a cell.
// A type change without new content carries the old payload over with models.ConvertBlock.
func (s *Service) UpdateCell(ref string, cellID int64, upd models.CellUpdate) (*CellResult, error) {
	if upd.Type == nil && upd.Content == nil {
		return nil, models.NewValidationError("update", "nothing to change")
	}
	st, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	cell, err := requireCell(st, cellID)
	if err != nil {
		return nil, err
	}

	newType := cell.Type
	if upd.Type != nil {
		if newType, err = models.ParseCellType(string(*upd.Type)); err != nil {
			return nil, err
		}
	}

	var created []links.Created
	switch {
	case upd.Content != nil:
		cell.Content, created, err = s.prepare(st, cell.PageID, newType, *upd.Content)
	case newType != cell.Type:
		cell.Content, err = convertContent(cell, newType)
	}
	if err != nil {
		return nil, err
	}
	cell.Type = newType
	cell.UpdatedAt = models.Now()

	err = st.db.WithTx(func(tx *sqlx.Tx) error {
		if err := st.cells.WithTx(tx).Update(cell); err != nil {
			return fmt.Errorf("failed to update cell: %w", err)
		}
		devlog := st.devlog.WithTx(tx)
		if err := devlog.Record(models.ActivityCellUpdate, cell.ID,
			fmt.Sprintf("updated %s cell on page %d", cell.Type, cell.PageID)); err != nil {
			return err
		}
		return recordLinks(devlog, cell.ID, created)
	})
	if err != nil {
		return nil, err
	}

	st.log.WithFields(logrus.Fields{"cell_id": cell.ID, "type": cell.Type, "links": len(created)}).Info("cell updated")
	s.touch(st)
	return &CellResult{Cell: cell, Created: created}, nil
}

// convertContent re-encodes stored content for another type. Content that no
// longer decodes falls back to the new type's empty payload.
func convertContent(cell *models.Cell, to models.CellType) (string, error) {
	b, err := cell.Block()
	if err != nil {
		return models.EncodeBlock(models.EmptyBlock(to))
	}
	return models.EncodeBlock(models.ConvertBlock(b, to))
}

// DeleteCell removes a cell; the remaining cells keep their order_index
func (s *Service) DeleteCell(ref string, cellID int64) (*models.Cell, error) {
	st, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	cell, err := requireCell(st, cellID)
	if err != nil {
		return nil, err
	}
	err = st.db.WithTx(func(tx *sqlx.Tx) error {
		if err := st.cells.WithTx(tx).Delete(cellID); err != nil {
			return fmt.Errorf("failed to delete cell: %w", err)
		}
		return st.devlog.WithTx(tx).Record(models.ActivityCellDelete, cellID,
			fmt.Sprintf("deleted %s cell from page %d", cell.Type, cell.PageID))
	})
	if err != nil {
		return nil, err
	}
	st.log.WithFields(logrus.Fields{"cell_id": cellID, "page_id": cell.PageID}).Info("cell deleted")
	s.touch(st)
	return cell, nil
}

// ReorderCells gives the i-th listed cell order_index i. IDs that are not cells
// of the page are skipped; unlisted cells keep their index. The page's cells
// are returned in their new order.
func (s *Service) ReorderCells(ref string, pageID int64, cellIDs []int64) ([]*models.Cell, error) {
	st, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	cells, err := s.reorder(st, pageID, cellIDs)
	if err != nil {
		return nil, err
	}
	s.touch(st)
	return cells, nil
}

func (s *Service) reorder(st *store, pageID int64, cellIDs []int64) ([]*models.Cell, error) {
	if _, err := requirePage(st, pageID); err != nil {
		return nil, err
	}
	now := models.Now()
	touched := 0
	err := st.db.WithTx(func(tx *sqlx.Tx) error {
		cells := st.cells.WithTx(tx)
		for i, id := range cellIDs {
			ok, err := cells.SetOrder(pageID, id, i, now)
			if err != nil {
				return fmt.Errorf("failed to order cell %d: %w", id, err)
			}
			if ok {
				touched++
			} else {
				st.log.WithFields(logrus.Fields{"cell_id": id, "page_id": pageID}).Debug("reorder skipped foreign cell")
			}
		}
		return st.devlog.WithTx(tx).Record(models.ActivityCellReorder, pageID,
			fmt.Sprintf("reordered %d cells", touched))
	})
	if err != nil {
		return nil, err
	}
	st.log.WithFields(logrus.Fields{"page_id": pageID, "cells": touched}).Info("cells reordered")
	return st.cells.ListByPage(pageID)
}

// InsertCellRelative creates a cell directly before or after anchorID on pageID
// and renumbers the page's cells 0..n-1.
func (s *Service) InsertCellRelative(ref string, pageID, anchorID int64, before bool, t models.CellType, content string) (*CellResult, error) {
	t, err := models.ParseCellType(string(t))
	if err != nil {
		return nil, err
	}
	st, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	anchor, err := requireCell(st, anchorID)
	if err != nil {
		return nil, err
	}
	if anchor.PageID != pageID {
		return nil, models.NewNotFoundError("cell", fmt.Sprintf("%d on page %d", anchorID, pageID))
	}
	existing, err := st.cells.ListByPage(anchor.PageID)
	if err != nil {
		return nil, err
	}

	res, err := s.createCell(st, anchor.PageID, t, content, nil)
	if err != nil {
		return nil, err
	}

	order := make([]int64, 0, len(existing)+1)
	for _, c := range existing {
		if c.ID == anchorID && before {
			order = append(order, res.Cell.ID)
		}
		order = append(order, c.ID)
		if c.ID == anchorID && !before {
			order = append(order, res.Cell.ID)
		}
	}
	cells, err := s.reorder(st, anchor.PageID, order)
	if err != nil {
		return nil, err
	}
	for _, c := range cells {
		if c.ID == res.Cell.ID {
			res.Cell = c
		}
	}
	s.touch(st)
	return res, nil
}
