// Package wiki implements project, page, cell and link operations over the
// per-project stores of a db.Registry.
package wiki

import (
	"fmt"
	"strings"
	"sync"

	"github.com/AbdouB/wiki/internal/db"
	"github.com/AbdouB/wiki/internal/links"
	"github.com/AbdouB/wiki/internal/models"
	"github.com/AbdouB/wiki/internal/search"
	"github.com/sirupsen/logrus"
)

// Options tunes a Service
type Options struct {
	SuggestThreshold float64
	SuggestLimit     int
}

// Service is the entry point for every wiki operation
type Service struct {
	reg  *db.Registry
	log  logrus.FieldLogger
	opts Options

	mu         sync.Mutex
	suggesters map[string]*links.Suggester
}

// New creates a service over reg
func New(reg *db.Registry, log logrus.FieldLogger, opts Options) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.SuggestThreshold <= 0 {
		opts.SuggestThreshold = search.DefaultThreshold
	}
	if opts.SuggestLimit <= 0 {
		opts.SuggestLimit = search.DefaultLimit
	}
	return &Service{
		reg:        reg,
		log:        log,
		opts:       opts,
		suggesters: make(map[string]*links.Suggester),
	}
}

// Close releases every open store
func (s *Service) Close() error {
	return s.reg.CloseAll()
}

// store bundles the repositories of one open project
type store struct {
	project *models.Project
	db      *db.DB
	pages   *db.PageRepository
	cells   *db.CellRepository
	devlog  *db.DevlogRepository
	log     logrus.FieldLogger
}

// open resolves a project by ID or slug and opens its store
func (s *Service) open(ref string) (*store, error) {
	p, err := s.GetProject(ref)
	if err != nil {
		return nil, err
	}
	h, err := s.reg.Handle(p)
	if err != nil {
		return nil, err
	}
	return &store{
		project: p,
		db:      h,
		pages:   db.NewPageRepository(h),
		cells:   db.NewCellRepository(h),
		devlog:  db.NewDevlogRepository(h),
		log:     s.log.WithField("project", p.Name),
	}, nil
}

// touch marks the project as recently changed; failures only get logged
func (s *Service) touch(st *store) {
	if err := s.reg.Projects().Touch(st.project.ID); err != nil {
		st.log.WithError(err).Warn("failed to touch project")
	}
}

// index loads the project's pages for link resolution
func (s *Service) index(st *store) (*search.PageIndex, error) {
	pages, err := st.pages.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	return search.NewPageIndex(pages,
		search.WithThreshold(s.opts.SuggestThreshold),
		search.WithLimit(s.opts.SuggestLimit),
	), nil
}

// CreateProject registers a project and creates its store
func (s *Service) CreateProject(displayName string) (*models.Project, error) {
	p := models.NewProject(displayName)
	if p.DisplayName == "" {
		return nil, models.NewValidationError("name", "must not be empty")
	}
	if p.Name == "" {
		return nil, models.NewValidationError("name", "must contain a letter or digit")
	}
	if err := s.reg.Projects().Create(p); err != nil {
		return nil, err
	}
	if _, err := s.reg.Handle(p); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"project": p.Name, "id": p.ID}).Info("project created")
	return p, nil
}

// ListProjects lists every project
func (s *Service) ListProjects() ([]*models.Project, error) {
	projects, err := s.reg.Projects().List()
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []*models.Project{}
	}
	return projects, nil
}

// GetProject finds a project by ID or by slug
func (s *Service) GetProject(ref string) (*models.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, models.NewValidationError("project", "must not be empty")
	}
	repo := s.reg.Projects()
	p, err := repo.Get(ref)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p, err = repo.GetByName(models.Slugify(ref))
		if err != nil {
			return nil, err
		}
	}
	if p == nil {
		return nil, models.NewNotFoundError("project", ref)
	}
	return p, nil
}

// DeleteProject removes a project and its store files.
// The catalog row goes first; a live project always has its store.
func (s *Service) DeleteProject(ref string) (*models.Project, error) {
	p, err := s.GetProject(ref)
	if err != nil {
		return nil, err
	}
	if err := s.reg.Projects().Delete(p.ID); err != nil {
		return nil, fmt.Errorf("failed to delete project %s: %w", p.Name, err)
	}
	if err := s.reg.Drop(p); err != nil {
		return nil, fmt.Errorf("project %s deleted but its store remains: %w", p.Name, err)
	}
	s.log.WithField("project", p.Name).Info("project deleted")
	return p, nil
}

// ActivityLog lists the newest activity entries of a project
func (s *Service) ActivityLog(ref string, limit int) ([]*models.Activity, error) {
	st, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return st.devlog.List(limit)
}
