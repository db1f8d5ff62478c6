package db

import (
	"database/sql"
	"strings"

	"github.com/AbdouB/wiki/internal/models"
	"github.com/mattn/go-sqlite3"
)

// ProjectRepository handles project catalog operations
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project, returning a ConflictError when the slug is taken
func (r *ProjectRepository) Create(project *models.Project) error {
	query := `
		INSERT INTO projects (id, name, display_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		project.ID,
		project.Name,
		project.DisplayName,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return &models.ConflictError{Kind: "project", Key: project.Name}
	}
	return err
}

// Get retrieves a project by ID
func (r *ProjectRepository) Get(projectID string) (*models.Project, error) {
	var project models.Project
	query := `SELECT * FROM projects WHERE id = ?`
	err := r.db.Get(&project, query, projectID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetByName retrieves a project by slug
func (r *ProjectRepository) GetByName(name string) (*models.Project, error) {
	var project models.Project
	query := `SELECT * FROM projects WHERE name = ?`
	err := r.db.Get(&project, query, name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// List lists all projects, most recently touched first
func (r *ProjectRepository) List() ([]*models.Project, error) {
	var projects []*models.Project
	query := `SELECT * FROM projects ORDER BY updated_at DESC, name ASC`
	if err := r.db.Select(&projects, query); err != nil {
		return nil, err
	}
	return projects, nil
}

// Touch bumps a project's updated_at
func (r *ProjectRepository) Touch(projectID string) error {
	query := `UPDATE projects SET updated_at = ? WHERE id = ?`
	_, err := r.db.Exec(query, models.Now(), projectID)
	return err
}

// Delete removes a project row
func (r *ProjectRepository) Delete(projectID string) error {
	result, err := r.db.Exec(`DELETE FROM projects WHERE id = ?`, projectID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint failure
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if sqliteErr, ok := err.(sqlite3.Error); ok {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
