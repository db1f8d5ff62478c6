package db

import (
	"database/sql"

	"github.com/AbdouB/wiki/internal/models"
	"github.com/jmoiron/sqlx"
)

// CellRepository handles cell database operations
type CellRepository struct {
	q querier
}

// NewCellRepository creates a new cell repository
func NewCellRepository(db *DB) *CellRepository {
	return &CellRepository{q: db}
}

// WithTx returns a repository bound to tx
func (r *CellRepository) WithTx(tx *sqlx.Tx) *CellRepository {
	return &CellRepository{q: tx}
}

// Create inserts a cell and sets its ID
func (r *CellRepository) Create(cell *models.Cell) error {
	query := `
		INSERT INTO cells (page_id, type, content, order_index, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.q.Exec(query,
		cell.PageID,
		cell.Type,
		cell.Content,
		cell.OrderIndex,
		cell.CreatedAt,
		cell.UpdatedAt,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	cell.ID = id
	return nil
}

// Get retrieves a cell by ID
func (r *CellRepository) Get(cellID int64) (*models.Cell, error) {
	var cell models.Cell
	err := r.q.Get(&cell, `SELECT * FROM cells WHERE id = ?`, cellID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cell, nil
}

// ListByPage lists a page's cells in render order
func (r *CellRepository) ListByPage(pageID int64) ([]*models.Cell, error) {
	cells := []*models.Cell{}
	query := `SELECT * FROM cells WHERE page_id = ? ORDER BY order_index, id`
	if err := r.q.Select(&cells, query, pageID); err != nil {
		return nil, err
	}
	return cells, nil
}

// MaxOrder returns the highest order_index on a page, or -1 for an empty page
func (r *CellRepository) MaxOrder(pageID int64) (int, error) {
	var max int
	err := r.q.Get(&max, `SELECT COALESCE(MAX(order_index), -1) FROM cells WHERE page_id = ?`, pageID)
	return max, err
}

// Update writes type and content of a cell
func (r *CellRepository) Update(cell *models.Cell) error {
	query := `UPDATE cells SET type = ?, content = ?, updated_at = ? WHERE id = ?`
	result, err := r.q.Exec(query, cell.Type, cell.Content, cell.UpdatedAt, cell.ID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// SetOrder assigns order_index to a cell only when it belongs to pageID.
// It reports whether a row was touched.
func (r *CellRepository) SetOrder(pageID, cellID int64, orderIndex int, updatedAt float64) (bool, error) {
	query := `UPDATE cells SET order_index = ?, updated_at = ? WHERE id = ? AND page_id = ?`
	result, err := r.q.Exec(query, orderIndex, updatedAt, cellID, pageID)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// Delete removes a cell; siblings keep their order_index
func (r *CellRepository) Delete(cellID int64) error {
	result, err := r.q.Exec(`DELETE FROM cells WHERE id = ?`, cellID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// CountByPages counts the cells held by the given pages
func (r *CellRepository) CountByPages(pageIDs []int64) (int, error) {
	if len(pageIDs) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM cells WHERE page_id IN (?)`, pageIDs)
	if err != nil {
		return 0, err
	}
	var n int
	err = r.q.Get(&n, r.q.Rebind(query), args...)
	return n, err
}

// CellHit is a cell joined with the title of its page
type CellHit struct {
	models.Cell
	PageTitle string `db:"page_title"`
}

// FindByText lists cells whose content contains text, case-insensitively.
// Rows are ordered stably so callers can page with offset.
func (r *CellRepository) FindByText(text string, limit, offset int) ([]*CellHit, error) {
	hits := []*CellHit{}
	query := `
		SELECT c.*, p.title AS page_title
		FROM cells c JOIN pages p ON p.id = c.page_id
		WHERE c.content LIKE ? ESCAPE '\'
		ORDER BY c.page_id, c.order_index, c.id
		LIMIT ? OFFSET ?
	`
	if err := r.q.Select(&hits, query, "%"+escapeLike(text)+"%", limit, offset); err != nil {
		return nil, err
	}
	return hits, nil
}

// ListWithLinks lists linkable cells that carry at least one page link
func (r *CellRepository) ListWithLinks() ([]*CellHit, error) {
	hits := []*CellHit{}
	query := `
		SELECT c.*, p.title AS page_title
		FROM cells c JOIN pages p ON p.id = c.page_id
		WHERE c.type IN ('text', 'header', 'subheader') AND c.content LIKE '%data-page-id%'
		ORDER BY c.page_id, c.order_index, c.id
	`
	if err := r.q.Select(&hits, query); err != nil {
		return nil, err
	}
	return hits, nil
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
