package db

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/AbdouB/wiki/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestProject(t *testing.T) *DB {
	t.Helper()
	d, err := OpenProject(filepath.Join(t.TempDir(), "project.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func newPage(t *testing.T, repo *PageRepository, title string, parent *models.Page) *models.Page {
	t.Helper()
	now := models.Now()
	p := &models.Page{Title: title, Path: title, CreatedAt: now, UpdatedAt: now}
	if parent != nil {
		p.ParentID = &parent.ID
		p.Path = models.JoinPath(parent.Path, title)
	}
	require.NoError(t, repo.Create(p))
	return p
}

func newCell(t *testing.T, repo *CellRepository, pageID int64, content string, order int) *models.Cell {
	t.Helper()
	now := models.Now()
	c := &models.Cell{PageID: pageID, Type: models.CellText, Content: content, OrderIndex: order, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(c))
	return c
}

func TestOpenProjectSeedsMainPage(t *testing.T) {
	d := openTestProject(t)
	pages := NewPageRepository(d)

	main, err := pages.Get(models.MainPageID)
	require.NoError(t, err)
	require.NotNil(t, main)
	assert.Equal(t, models.MainPageTitle, main.Title)
	assert.Nil(t, main.ParentID)

	list, err := pages.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	// reopening runs the migrations again without duplicating the seed
	require.NoError(t, d.Close())
	d, err = OpenProject(d.Path())
	require.NoError(t, err)
	defer d.Close()
	n, err := NewPageRepository(d).Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPageRepository(t *testing.T) {
	d := openTestProject(t)
	pages := NewPageRepository(d)

	physics := newPage(t, pages, "Physics", nil)
	holes := newPage(t, pages, "Black Holes", physics)
	assert.Equal(t, int64(1), physics.ID, "ids start after the main page")

	got, err := pages.Get(holes.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, physics.ID, *got.ParentID)
	assert.Equal(t, "Physics > Black Holes", got.Path)

	missing, err := pages.Get(99)
	require.NoError(t, err)
	assert.Nil(t, missing)

	holes.Title = "Singularities"
	holes.Path = "Physics > Singularities"
	require.NoError(t, pages.Update(holes))
	require.NoError(t, pages.UpdatePath(physics.ID, "Physics", models.Now()))

	list, err := pages.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Physics", list[0].Path)
	assert.Equal(t, "Physics > Singularities", list[1].Path)

	assert.True(t, errors.Is(pages.UpdatePath(99, "x", 0), sql.ErrNoRows))
	assert.True(t, errors.Is(pages.Delete(99), sql.ErrNoRows))
}

func TestDeleteCascades(t *testing.T) {
	d := openTestProject(t)
	pages := NewPageRepository(d)
	cells := NewCellRepository(d)

	physics := newPage(t, pages, "Physics", nil)
	holes := newPage(t, pages, "Black Holes", physics)
	horizon := newPage(t, pages, "Event Horizon", holes)
	other := newPage(t, pages, "Cooking", nil)
	for _, p := range []*models.Page{holes, horizon, other} {
		newCell(t, cells, p.ID, "x", 0)
	}
	newCell(t, cells, models.MainPageID, "root", 0)

	n, err := cells.CountByPages([]int64{holes.ID, horizon.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, pages.Delete(holes.ID))

	list, err := pages.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Cooking", list[0].Title)
	assert.Equal(t, "Physics", list[1].Title)

	n, err = cells.CountByPages([]int64{holes.ID, horizon.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = cells.CountByPages([]int64{other.ID, models.MainPageID})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = cells.CountByPages(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCellRepository(t *testing.T) {
	d := openTestProject(t)
	pages := NewPageRepository(d)
	cells := NewCellRepository(d)
	page := newPage(t, pages, "Stars", nil)
	other := newPage(t, pages, "Planets", nil)

	max, err := cells.MaxOrder(page.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, max)

	a := newCell(t, cells, page.ID, "alpha", 0)
	b := newCell(t, cells, page.ID, "beta", 1)
	foreign := newCell(t, cells, other.ID, "gamma", 0)

	max, err = cells.MaxOrder(page.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, max)

	ok, err := cells.SetOrder(page.ID, b.ID, 0, models.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = cells.SetOrder(page.ID, a.ID, 1, models.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = cells.SetOrder(page.ID, foreign.ID, 5, models.Now())
	require.NoError(t, err)
	assert.False(t, ok, "cells of another page are not touched")

	list, err := cells.ListByPage(page.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)

	got, err := cells.Get(foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.OrderIndex)

	a.Type = models.CellHeader
	a.Content = "Alpha"
	require.NoError(t, cells.Update(a))
	got, err = cells.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CellHeader, got.Type)
	assert.Equal(t, "Alpha", got.Content)

	require.NoError(t, cells.Delete(b.ID))
	missing, err := cells.Get(b.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.True(t, errors.Is(cells.Delete(b.ID), sql.ErrNoRows))
}

func TestCellTypeConstraint(t *testing.T) {
	d := openTestProject(t)
	c := &models.Cell{PageID: models.MainPageID, Type: models.CellType("image"), OrderIndex: 0}
	assert.Error(t, NewCellRepository(d).Create(c))
}

func TestFindByText(t *testing.T) {
	d := openTestProject(t)
	pages := NewPageRepository(d)
	cells := NewCellRepository(d)
	page := newPage(t, pages, "Stats", nil)
	newCell(t, cells, page.ID, "growth of 50% per year", 0)
	newCell(t, cells, page.ID, "growth of 50 per year", 1)
	newCell(t, cells, page.ID, `see <a data-page-id="1">Stats</a>`, 2)

	hits, err := cells.FindByText("50%", 10, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1, "% is matched literally")
	assert.Equal(t, "Stats", hits[0].PageTitle)

	hits, err = cells.FindByText("GROWTH", 1, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	first := hits[0].ID

	hits, err = cells.FindByText("GROWTH", 1, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.NotEqual(t, first, hits[0].ID)

	hits, err = cells.FindByText("GROWTH", 10, 2)
	require.NoError(t, err)
	assert.Empty(t, hits)

	linked, err := cells.ListWithLinks()
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, 2, linked[0].OrderIndex)
}

func TestWithTxRollsBack(t *testing.T) {
	d := openTestProject(t)
	pages := NewPageRepository(d)

	boom := errors.New("boom")
	err := d.WithTx(func(tx *sqlx.Tx) error {
		now := models.Now()
		p := &models.Page{Title: "Temp", Path: "Temp", CreatedAt: now, UpdatedAt: now}
		if err := pages.WithTx(tx).Create(p); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := pages.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDevlog(t *testing.T) {
	d := openTestProject(t)
	devlog := NewDevlogRepository(d)
	require.NoError(t, devlog.Record(models.ActivityPageCreate, 1, "created Physics"))
	require.NoError(t, devlog.Record(models.ActivityPageRename, 1, "renamed Physics"))

	entries, err := devlog.List(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActivityPageRename, entries[0].Kind)

	entries, err = devlog.List(1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestProjectRepository(t *testing.T) {
	catalog, err := OpenRegistry(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	defer catalog.Close()
	repo := NewProjectRepository(catalog)

	p := models.NewProject("Physics")
	require.NoError(t, repo.Create(p))

	dup := models.NewProject("physics!")
	err = repo.Create(dup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrConflict))

	got, err := repo.GetByName("physics")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.ID, got.ID)

	got, err = repo.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Touch(p.ID))
	list, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(p.ID))
	assert.True(t, errors.Is(repo.Delete(p.ID), sql.ErrNoRows))
}

func TestRegistry(t *testing.T) {
	dir := t.TempDir()
	logger, _ := test.NewNullLogger()
	reg, err := NewRegistry(dir, logger)
	require.NoError(t, err)
	assert.Equal(t, dir, reg.Dir())

	p := models.NewProject("Physics")
	require.NoError(t, reg.Projects().Create(p))
	q := models.NewProject("Cooking")
	require.NoError(t, reg.Projects().Create(q))

	h1, err := reg.Handle(p)
	require.NoError(t, err)
	h2, err := reg.Handle(p)
	require.NoError(t, err)
	assert.Same(t, h1, h2, "a store is opened once")
	assert.FileExists(t, filepath.Join(dir, "projects", "physics.db"))

	_, err = reg.Handle(q)
	require.NoError(t, err)

	require.NoError(t, reg.Drop(p))
	_, statErr := os.Stat(filepath.Join(dir, "projects", "physics.db"))
	assert.True(t, os.IsNotExist(statErr))

	require.NoError(t, reg.Close("unknown"))
	require.NoError(t, reg.CloseAll())
	assert.FileExists(t, filepath.Join(dir, "projects", "cooking.db"))
}
