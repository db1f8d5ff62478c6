package models

import (
	"strings"
	"unicode"
)

// MainPageID is the sentinel page holding a project's top-level cells.
// It has no parent and is never listed among ordinary pages.
const MainPageID int64 = 0

// MainPageTitle is the title of the sentinel page
const MainPageTitle = "Main"

// PathSeparator joins titles in a page path
const PathSeparator = " > "

// Page is a node in a project's page tree
type Page struct {
	ID        int64   `json:"id" db:"id"`
	Title     string  `json:"title" db:"title"`
	ParentID  *int64  `json:"parent_id,omitempty" db:"parent_id"`
	Path      string  `json:"path" db:"path"`
	CreatedAt float64 `json:"created_at" db:"created_at"`
	UpdatedAt float64 `json:"updated_at" db:"updated_at"`
}

// IsMain reports whether p is the sentinel main page
func (p *Page) IsMain() bool {
	return p.ID == MainPageID
}

// Parent returns the parent id, or MainPageID for top-level pages
func (p *Page) Parent() int64 {
	if p.ParentID == nil {
		return MainPageID
	}
	return *p.ParentID
}

// PageView is a page together with its cells in render order
type PageView struct {
	Page
	Cells []*Cell `json:"cells"`
}

// JoinPath appends title to a parent path
func JoinPath(parentPath, title string) string {
	if parentPath == "" {
		return title
	}
	return parentPath + PathSeparator + title
}

// SummaryTitle is the label of the header cell seeded into a new page
func SummaryTitle(title string) string {
	return TitleCase(title) + " Summary"
}

// TitleCase upper-cases the first letter of every word and lower-cases the rest.
// Separators are kept as they are.
func TitleCase(phrase string) string {
	var b strings.Builder
	b.Grow(len(phrase))
	inWord := false
	for _, r := range phrase {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' {
			if inWord {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			inWord = true
			continue
		}
		inWord = false
		b.WriteRune(r)
	}
	return b.String()
}

// SameTitle is the identity comparison used for link resolution
func SameTitle(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
