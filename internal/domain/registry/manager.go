package registry

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/GriffinCanCode/unchive/internal/shared/id"
	"github.com/GriffinCanCode/unchive/internal/shared/types"
	"go.uber.org/zap"
)

// DefaultMaxProjects bounds the store when no limit is configured
const DefaultMaxProjects = 100

// ErrNotFound is returned for unknown project IDs
var ErrNotFound = errors.New("project not found")

// Entry is a stored project
type Entry struct {
	ID        id.ProjectID
	Digest    string
	Source    string
	Project   *types.Project
	CreatedAt time.Time
}

// Metadata is the listing view of an entry
type Metadata struct {
	ID          id.ProjectID `json:"id"`
	Name        string       `json:"name"`
	Source      string       `json:"source"`
	Digest      string       `json:"digest"`
	Screens     int          `json:"screens"`
	Extensions  int          `json:"extensions"`
	Assets      int          `json:"assets"`
	Diagnostics int          `json:"diagnostics"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// ToMetadata returns the listing view of e
func (e *Entry) ToMetadata() Metadata {
	p := e.Project
	return Metadata{
		ID:          e.ID,
		Name:        p.Name,
		Source:      e.Source,
		Digest:      e.Digest,
		Screens:     len(p.Screens),
		Extensions:  len(p.Extensions),
		Assets:      len(p.Assets),
		Diagnostics: len(p.Diagnostics),
		CreatedAt:   e.CreatedAt,
	}
}

// Stats summarizes the store
type Stats struct {
	TotalProjects int        `json:"totalProjects"`
	TotalAssets   int        `json:"totalAssets"`
	Evicted       int64      `json:"evicted"`
	LastUpdated   *time.Time `json:"lastUpdated,omitempty"`
}

// Manager caches ingested projects in memory. Projects are deduplicated by
// content digest; when the store is full the oldest project is evicted.
// Removing a project revokes its published asset references.
type Manager struct {
	mu       sync.RWMutex
	projects map[id.ProjectID]*Entry
	digests  map[string]id.ProjectID
	order    []id.ProjectID
	max      int
	evicted  int64

	logger   *zap.Logger
	onChange func(int)
}

// NewManager creates a store holding at most max projects. onChange, if
// set, receives the project count after every change.
func NewManager(max int, logger *zap.Logger, onChange func(int)) *Manager {
	if max <= 0 {
		max = DefaultMaxProjects
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		projects: make(map[id.ProjectID]*Entry),
		digests:  make(map[string]id.ProjectID),
		max:      max,
		logger:   logger,
		onChange: onChange,
	}
}

// Save stores project under a new ID. If a project with the same digest
// is already stored, that entry is returned with existed set and project
// is left untouched. An empty digest disables dedupe.
func (m *Manager) Save(project *types.Project, source, digest string) (entry *Entry, existed bool) {
	m.mu.Lock()
	if digest != "" {
		if pid, ok := m.digests[digest]; ok {
			entry = m.projects[pid]
			m.mu.Unlock()
			return entry, true
		}
	}

	entry = &Entry{
		ID:        id.NewProjectID(),
		Digest:    digest,
		Source:    source,
		Project:   project,
		CreatedAt: time.Now(),
	}
	m.projects[entry.ID] = entry
	if digest != "" {
		m.digests[digest] = entry.ID
	}
	m.order = append(m.order, entry.ID)

	var evicted []*Entry
	for len(m.order) > m.max {
		if e := m.remove(m.order[0]); e != nil {
			evicted = append(evicted, e)
		}
	}
	m.evicted += int64(len(evicted))
	n := len(m.projects)
	m.mu.Unlock()

	for _, e := range evicted {
		release(e)
		m.logger.Info("Project evicted", zap.String("id", e.ID.String()), zap.String("name", e.Project.Name))
	}
	m.logger.Debug("Project stored", zap.String("id", entry.ID.String()), zap.String("source", source))
	m.changed(n)
	return entry, false
}

// Load returns the entry for pid
func (m *Manager) Load(pid id.ProjectID) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.projects[pid]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// Lookup returns the entry stored for digest
func (m *Manager) Lookup(digest string) (*Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pid, ok := m.digests[digest]
	if !ok {
		return nil, false
	}
	return m.projects[pid], true
}

// Exists reports whether pid is stored
func (m *Manager) Exists(pid id.ProjectID) bool {
	_, err := m.Load(pid)
	return err == nil
}

// List returns metadata for all projects, oldest first
func (m *Manager) List() []Metadata {
	m.mu.RLock()
	out := make([]Metadata, 0, len(m.order))
	for _, pid := range m.order {
		out = append(out, m.projects[pid].ToMetadata())
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Delete removes pid and revokes its asset references
func (m *Manager) Delete(pid id.ProjectID) error {
	m.mu.Lock()
	e := m.remove(pid)
	n := len(m.projects)
	m.mu.Unlock()

	if e == nil {
		return ErrNotFound
	}
	release(e)
	m.logger.Info("Project deleted", zap.String("id", pid.String()))
	m.changed(n)
	return nil
}

// Clear removes every project
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	entries := make([]*Entry, 0, len(m.projects))
	for _, pid := range append([]id.ProjectID(nil), m.order...) {
		entries = append(entries, m.remove(pid))
	}
	m.mu.Unlock()

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		release(e)
	}
	m.changed(0)
	return nil
}

// Len returns the number of stored projects
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.projects)
}

// Stats returns store statistics
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{TotalProjects: len(m.projects), Evicted: m.evicted}
	for _, e := range m.projects {
		stats.TotalAssets += len(e.Project.Assets)
		if stats.LastUpdated == nil || e.CreatedAt.After(*stats.LastUpdated) {
			t := e.CreatedAt
			stats.LastUpdated = &t
		}
	}
	return stats
}

// remove drops pid from the indexes. Caller holds mu.
func (m *Manager) remove(pid id.ProjectID) *Entry {
	e, ok := m.projects[pid]
	if !ok {
		return nil
	}
	delete(m.projects, pid)
	if e.Digest != "" && m.digests[e.Digest] == pid {
		delete(m.digests, e.Digest)
	}
	for i, o := range m.order {
		if o == pid {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return e
}

func (m *Manager) changed(n int) {
	if m.onChange != nil {
		m.onChange(n)
	}
}

// release revokes the entry's asset references
func release(e *Entry) {
	for _, a := range e.Project.Assets {
		a.Revoke()
	}
}
