package db

import (
	"database/sql"

	"github.com/AbdouB/wiki/internal/models"
	"github.com/jmoiron/sqlx"
)

// querier is satisfied by both *DB and *sqlx.Tx so repositories can join a transaction
type querier interface {
	sqlx.Ext
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
}

// PageRepository handles page database operations
type PageRepository struct {
	q querier
}

// NewPageRepository creates a new page repository
func NewPageRepository(db *DB) *PageRepository {
	return &PageRepository{q: db}
}

// WithTx returns a repository bound to tx
func (r *PageRepository) WithTx(tx *sqlx.Tx) *PageRepository {
	return &PageRepository{q: tx}
}

// Create inserts a page and sets its ID
func (r *PageRepository) Create(page *models.Page) error {
	query := `
		INSERT INTO pages (title, parent_id, path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.q.Exec(query,
		page.Title,
		page.ParentID,
		page.Path,
		page.CreatedAt,
		page.UpdatedAt,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	page.ID = id
	return nil
}

// Get retrieves a page by ID, including the main page
func (r *PageRepository) Get(pageID int64) (*models.Page, error) {
	var page models.Page
	query := `SELECT * FROM pages WHERE id = ?`
	err := r.q.Get(&page, query, pageID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// List lists every ordinary page; the main page is never included
func (r *PageRepository) List() ([]*models.Page, error) {
	var pages []*models.Page
	query := `SELECT * FROM pages WHERE id <> ? ORDER BY path COLLATE NOCASE, id`
	if err := r.q.Select(&pages, query, models.MainPageID); err != nil {
		return nil, err
	}
	return pages, nil
}

// Update writes title, parent and path of a page
func (r *PageRepository) Update(page *models.Page) error {
	query := `
		UPDATE pages SET
			title = ?,
			parent_id = ?,
			path = ?,
			updated_at = ?
		WHERE id = ?
	`
	result, err := r.q.Exec(query,
		page.Title,
		page.ParentID,
		page.Path,
		page.UpdatedAt,
		page.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// UpdatePath rewrites the path of a single page
func (r *PageRepository) UpdatePath(pageID int64, path string, updatedAt float64) error {
	result, err := r.q.Exec(`UPDATE pages SET path = ?, updated_at = ? WHERE id = ?`, path, updatedAt, pageID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Delete removes a page; descendants and cells go with it through ON DELETE CASCADE
func (r *PageRepository) Delete(pageID int64) error {
	result, err := r.q.Exec(`DELETE FROM pages WHERE id = ?`, pageID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Count counts ordinary pages
func (r *PageRepository) Count() (int, error) {
	var n int
	err := r.q.Get(&n, `SELECT COUNT(*) FROM pages WHERE id <> ?`, models.MainPageID)
	return n, err
}

// requireRow turns an update that touched nothing into sql.ErrNoRows
func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
