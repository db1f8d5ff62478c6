package models

// Activity kinds written to the developer-activity log
const (
	ActivityPageCreate  = "page.create"
	ActivityPageMove    = "page.move"
	ActivityPageRename  = "page.rename"
	ActivityPageDelete  = "page.delete"
	ActivityCellCreate  = "cell.create"
	ActivityCellUpdate  = "cell.update"
	ActivityCellDelete  = "cell.delete"
	ActivityCellReorder = "cell.reorder"
	ActivityLinkAdd     = "link.add"
	ActivityLinkRemove  = "link.remove"
)

// Activity is one automatically recorded change in a project
type Activity struct {
	ID        int64   `json:"id" db:"id"`
	Kind      string  `json:"kind" db:"kind"`
	SubjectID int64   `json:"subject_id" db:"subject_id"`
	Message   string  `json:"message" db:"message"`
	CreatedAt float64 `json:"created_at" db:"created_at"`
}

// RankedPage is a link suggestion; lower scores are better matches
type RankedPage struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// SearchResults splits page search hits by where they matched
type SearchResults struct {
	TitleMatches   []TitleMatch   `json:"title_matches"`
	ContentMatches []ContentMatch `json:"content_matches"`
}

// TitleMatch is a page whose title matched a search query
type TitleMatch struct {
	PageID     int64  `json:"page_id"`
	Title      string `json:"title"`
	Path       string `json:"path"`
	Score      int    `json:"score"`
	Highlights []int  `json:"highlights,omitempty"` // matched rune indexes in Title
}

// ContentMatch is a cell whose text contains a search query
type ContentMatch struct {
	PageID    int64  `json:"page_id"`
	PageTitle string `json:"page_title"`
	CellID    int64  `json:"cell_id"`
	Snippet   string `json:"snippet"`
}

// LinkRef locates one inline link inside a cell
type LinkRef struct {
	CellID    int64  `json:"cell_id"`
	PageID    int64  `json:"page_id"` // page holding the cell
	TargetID  int64  `json:"target_id"`
	Label     string `json:"label"`
	Ordinal   int    `json:"ordinal"`
	PageTitle string `json:"page_title,omitempty"`
}
