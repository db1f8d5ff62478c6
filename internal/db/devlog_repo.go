package db

import (
	"github.com/AbdouB/wiki/internal/models"
	"github.com/jmoiron/sqlx"
)

// DevlogRepository handles the per-project activity log
type DevlogRepository struct {
	q querier
}

// NewDevlogRepository creates a new activity log repository
func NewDevlogRepository(db *DB) *DevlogRepository {
	return &DevlogRepository{q: db}
}

// WithTx returns a repository bound to tx
func (r *DevlogRepository) WithTx(tx *sqlx.Tx) *DevlogRepository {
	return &DevlogRepository{q: tx}
}

// Record appends an activity entry
func (r *DevlogRepository) Record(kind string, subjectID int64, message string) error {
	query := `INSERT INTO devlog (kind, subject_id, message, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.q.Exec(query, kind, subjectID, message, models.Now())
	return err
}

// List lists the newest entries first
func (r *DevlogRepository) List(limit int) ([]*models.Activity, error) {
	entries := []*models.Activity{}
	query := `SELECT * FROM devlog ORDER BY created_at DESC, id DESC LIMIT ?`
	if err := r.q.Select(&entries, query, limit); err != nil {
		return nil, err
	}
	return entries, nil
}
