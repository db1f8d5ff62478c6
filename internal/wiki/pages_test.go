package wiki

import (
	"fmt"
	"testing"

	"github.com/AbdouB/wiki/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paths(t *testing.T, svc *Service, ref string) []string {
	t.Helper()
	pages, err := svc.ListPages(ref)
	require.NoError(t, err)
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.Path)
	}
	return out
}

func TestCreatePageSeedsCells(t *testing.T) {
	svc, ref := newService(t)
	tree := seedPhysics(t, svc, ref)
	assert.Equal(t, "Physics > Black Holes > Event Horizon", tree.horizon.Path)
	require.NotNil(t, tree.horizon.ParentID)
	assert.Equal(t, tree.holes.ID, *tree.horizon.ParentID)
	assert.Nil(t, tree.physics.ParentID)

	view, err := svc.GetPage(ref, tree.holes.ID)
	require.NoError(t, err)
	require.Len(t, view.Cells, 2)
	assert.Equal(t, models.CellHeader, view.Cells[0].Type)
	assert.Equal(t, "Black Holes Summary", view.Cells[0].Content)
	assert.Equal(t, 0, view.Cells[0].OrderIndex)
	assert.Equal(t, models.CellText, view.Cells[1].Type)
	assert.Equal(t, "", view.Cells[1].Content)
	assert.Equal(t, 1, view.Cells[1].OrderIndex)
}

func TestCreatePageErrors(t *testing.T) {
	svc, ref := newService(t)

	_, err := svc.CreatePage(ref, "  ", nil)
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = svc.CreatePage(ref, "Physics > Optics", nil)
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = svc.CreatePage(ref, "Optics", id(42))
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.CreatePage("nope", "Optics", nil)
	assert.ErrorIs(t, err, models.ErrNotFound)

	top, err := svc.CreatePage(ref, "Optics", id(models.MainPageID))
	require.NoError(t, err)
	assert.Nil(t, top.ParentID)
	assert.Equal(t, "Optics", top.Path)
}

func TestCreatePageDropsInvalidUTF8(t *testing.T) {
	svc, ref := newService(t)

	page, err := svc.CreatePage(ref, "\xffQuasars\xc3", nil)
	require.NoError(t, err)
	assert.Equal(t, "Quasars", page.Title)
	assert.Equal(t, "Quasars", page.Path)

	_, err = svc.CreatePage(ref, "\xff\xfe", nil)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestMainPage(t *testing.T) {
	svc, ref := newService(t)

	view, err := svc.GetPage(ref, models.MainPageID)
	require.NoError(t, err)
	assert.Equal(t, models.MainPageTitle, view.Title)
	assert.Empty(t, view.Cells)

	pages, err := svc.ListPages(ref)
	require.NoError(t, err)
	assert.Empty(t, pages)

	_, err = svc.MovePage(ref, models.MainPageID, nil)
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = svc.RenamePage(ref, models.MainPageID, "Home")
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = svc.DeletePage(ref, models.MainPageID)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestRenamePageCascadesPaths(t *testing.T) {
	svc, ref := newService(t)
	tree := seedPhysics(t, svc, ref)

	renamed, err := svc.RenamePage(ref, tree.physics.ID, "  Astrophysics ")
	require.NoError(t, err)
	assert.Equal(t, "Astrophysics", renamed.Title)
	assert.Equal(t, []string{
		"Astrophysics",
		"Astrophysics > Black Holes",
		"Astrophysics > Black Holes > Event Horizon",
	}, paths(t, svc, ref))

	_, err = svc.RenamePage(ref, tree.holes.ID, "")
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = svc.RenamePage(ref, 99, "Optics")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRenameKeepsLinkLabels(t *testing.T) {
	svc, ref := newService(t)
	tree := seedPhysics(t, svc, ref)

	res, err := svc.CreateCell(ref, tree.physics.ID, CellInput{Type: models.CellText, Content: "all about BLACK HOLES"})
	require.NoError(t, err)
	want := fmt.Sprintf(`all about <a data-page-id="%d">Black Holes</a>`, tree.holes.ID)
	assert.Equal(t, want, res.Cell.Content)

	_, err = svc.RenamePage(ref, tree.holes.ID, "Singularities")
	require.NoError(t, err)

	view, err := svc.GetPage(ref, tree.physics.ID)
	require.NoError(t, err)
	assert.Equal(t, want, view.Cells[2].Content)
}

func TestMovePage(t *testing.T) {
	svc, ref := newService(t)
	tree := seedPhysics(t, svc, ref)

	moved, err := svc.MovePage(ref, tree.horizon.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)
	assert.Equal(t, "Event Horizon", moved.Path)

	moved, err = svc.MovePage(ref, tree.holes.ID, &tree.horizon.ID)
	require.NoError(t, err)
	assert.Equal(t, "Event Horizon > Black Holes", moved.Path)

	moved, err = svc.MovePage(ref, tree.horizon.ID, id(models.MainPageID))
	require.NoError(t, err)
	assert.Equal(t, "Event Horizon", moved.Path)

	assert.Equal(t, []string{
		"Event Horizon",
		"Event Horizon > Black Holes",
		"Physics",
	}, paths(t, svc, ref))
}

func TestMovePageCarriesSubtree(t *testing.T) {
	svc, ref := newService(t)
	tree := seedPhysics(t, svc, ref)
	optics, err := svc.CreatePage(ref, "Optics", nil)
	require.NoError(t, err)

	_, err = svc.MovePage(ref, tree.holes.ID, &optics.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Optics",
		"Optics > Black Holes",
		"Optics > Black Holes > Event Horizon",
		"Physics",
	}, paths(t, svc, ref))
}

func TestMovePageRejectsCycles(t *testing.T) {
	svc, ref := newService(t)
	tree := seedPhysics(t, svc, ref)
	before := paths(t, svc, ref)

	_, err := svc.MovePage(ref, tree.physics.ID, &tree.horizon.ID)
	assert.ErrorIs(t, err, models.ErrCycle)
	_, err = svc.MovePage(ref, tree.holes.ID, &tree.holes.ID)
	assert.ErrorIs(t, err, models.ErrCycle)

	assert.Equal(t, before, paths(t, svc, ref))

	_, err = svc.MovePage(ref, tree.holes.ID, id(99))
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.MovePage(ref, 99, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeletePageRemovesSubtree(t *testing.T) {
	svc, ref := newService(t)
	tree := seedPhysics(t, svc, ref)
	optics, err := svc.CreatePage(ref, "Optics", nil)
	require.NoError(t, err)
	_, err = svc.CreateCell(ref, tree.horizon.ID, CellInput{Type: models.CellText, Content: "light can not escape"})
	require.NoError(t, err)
	_, err = svc.CreateCell(ref, models.MainPageID, CellInput{Type: models.CellText, Content: "index"})
	require.NoError(t, err)

	res, err := svc.DeletePage(ref, tree.physics.ID)
	require.NoError(t, err)
	assert.Equal(t, &DeleteResult{PageID: tree.physics.ID, Pages: 3, Cells: 7}, res)

	assert.Equal(t, []string{optics.Path}, paths(t, svc, ref))
	for _, p := range []*models.Page{tree.physics, tree.holes, tree.horizon} {
		_, err = svc.GetPage(ref, p.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	}

	main, err := svc.GetPage(ref, models.MainPageID)
	require.NoError(t, err)
	assert.Len(t, main.Cells, 1)

	_, err = svc.DeletePage(ref, tree.physics.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTreeIsAncestor(t *testing.T) {
	tr := newTree([]*models.Page{
		{ID: 1, Title: "Physics"},
		{ID: 2, Title: "Black Holes", ParentID: id(1)},
		{ID: 3, Title: "Event Horizon", ParentID: id(2)},
		{ID: 4, Title: "Optics"},
	})
	assert.True(t, tr.isAncestor(1, 3))
	assert.True(t, tr.isAncestor(3, 3))
	assert.False(t, tr.isAncestor(3, 1))
	assert.False(t, tr.isAncestor(4, 3))
	assert.Equal(t, []int64{1, 2, 3}, tr.subtree(1))
	assert.Equal(t, []int64{4}, tr.subtree(4))
}
