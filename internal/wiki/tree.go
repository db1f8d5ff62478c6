package wiki

import (
	"github.com/AbdouB/wiki/internal/models"
)

// tree is the page hierarchy of one project, loaded once per operation
type tree struct {
	byID     map[int64]*models.Page
	children map[int64][]*models.Page // keyed by parent, MainPageID for top level
}

func newTree(pages []*models.Page) *tree {
	t := &tree{
		byID:     make(map[int64]*models.Page, len(pages)),
		children: make(map[int64][]*models.Page),
	}
	for _, p := range pages {
		if p.IsMain() {
			continue
		}
		t.byID[p.ID] = p
		t.children[p.Parent()] = append(t.children[p.Parent()], p)
	}
	return t
}

// isAncestor reports whether ancestor lies on the parent chain of id (or is id)
func (t *tree) isAncestor(ancestor, id int64) bool {
	seen := make(map[int64]bool)
	for cur := id; cur != models.MainPageID && !seen[cur]; {
		if cur == ancestor {
			return true
		}
		seen[cur] = true
		p, ok := t.byID[cur]
		if !ok {
			return false
		}
		cur = p.Parent()
	}
	return false
}

// subtree lists id and every descendant, breadth first
func (t *tree) subtree(id int64) []int64 {
	ids := []int64{id}
	for i := 0; i < len(ids); i++ {
		for _, child := range t.children[ids[i]] {
			ids = append(ids, child.ID)
		}
	}
	return ids
}

// parentPath is the path a child of parent builds on
func (t *tree) parentPath(parent int64) string {
	if p, ok := t.byID[parent]; ok {
		return p.Path
	}
	return ""
}

// reparent moves page under parent in the in-memory tree
func (t *tree) reparent(page *models.Page, parent int64) {
	old := t.children[page.Parent()]
	for i, c := range old {
		if c.ID == page.ID {
			t.children[page.Parent()] = append(old[:i:i], old[i+1:]...)
			break
		}
	}
	if parent == models.MainPageID {
		page.ParentID = nil
	} else {
		page.ParentID = &parent
	}
	t.children[parent] = append(t.children[parent], page)
}

// repath recomputes the path of page from its parent, then of every descendant.
// Each level only reads its parent's already updated path. The descendants are returned.
func (t *tree) repath(page *models.Page, now float64) []*models.Page {
	page.Path = models.JoinPath(t.parentPath(page.Parent()), page.Title)
	page.UpdatedAt = now

	var changed []*models.Page
	queue := []*models.Page{page}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range t.children[cur.ID] {
			child.Path = models.JoinPath(cur.Path, child.Title)
			child.UpdatedAt = now
			changed = append(changed, child)
			queue = append(queue, child)
		}
	}
	return changed
}
