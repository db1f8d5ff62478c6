package db

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/AbdouB/wiki/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Registry owns the project catalog and one open store per project.
// Stores are opened on first use and stay open until Close or CloseAll.
type Registry struct {
	dir      string
	catalog  *DB
	projects *ProjectRepository
	log      logrus.FieldLogger

	mu      sync.Mutex
	handles map[string]*DB
}

// NewRegistry opens the catalog under dir
func NewRegistry(dir string, log logrus.FieldLogger) (*Registry, error) {
	if dir == "" {
		dir = DefaultDataDir()
	}
	catalog, err := OpenRegistry(filepath.Join(dir, "registry.db"))
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Registry{
		dir:      dir,
		catalog:  catalog,
		projects: NewProjectRepository(catalog),
		log:      log,
		handles:  make(map[string]*DB),
	}, nil
}

// Projects returns the catalog repository
func (r *Registry) Projects() *ProjectRepository {
	return r.projects
}

// Dir returns the data directory
func (r *Registry) Dir() string {
	return r.dir
}

// projectPath is the store file of a project
func (r *Registry) projectPath(p *models.Project) string {
	return filepath.Join(r.dir, "projects", p.Name+".db")
}

// Handle returns the store of a project, opening it on first use
func (r *Registry) Handle(p *models.Project) (*DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.handles[p.ID]; ok {
		return h, nil
	}
	h, err := OpenProject(r.projectPath(p))
	if err != nil {
		return nil, fmt.Errorf("failed to open project %s: %w", p.Name, err)
	}
	r.handles[p.ID] = h
	r.log.WithFields(logrus.Fields{"project": p.Name, "path": h.Path()}).Debug("opened project store")
	return h, nil
}

// Close closes the store of one project if it is open
func (r *Registry) Close(projectID string) error {
	r.mu.Lock()
	h, ok := r.handles[projectID]
	delete(r.handles, projectID)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return h.Close()
}

// Drop closes a project's store and removes its files
func (r *Registry) Drop(p *models.Project) error {
	if err := r.Close(p.ID); err != nil {
		return err
	}
	base := r.projectPath(p)
	for _, path := range []string{base, base + "-wal", base + "-shm"} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	return nil
}

// CloseAll closes every open project store and the catalog
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	handles := r.handles
	r.handles = make(map[string]*DB)
	r.mu.Unlock()

	var g errgroup.Group
	for id, h := range handles {
		id, h := id, h
		g.Go(func() error {
			if err := h.Close(); err != nil {
				return fmt.Errorf("failed to close project %s: %w", id, err)
			}
			return nil
		})
	}
	err := g.Wait()
	if cerr := r.catalog.Close(); err == nil {
		err = cerr
	}
	r.log.WithField("stores", len(handles)).Debug("closed project stores")
	return err
}
