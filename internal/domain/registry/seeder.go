package registry

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/GriffinCanCode/unchive/internal/domain/archive"
	"github.com/GriffinCanCode/unchive/internal/shared/types"
	"github.com/GriffinCanCode/unchive/internal/shared/utils"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
)

// ProjectExtensions are the file suffixes treated as project archives
var ProjectExtensions = []string{".aia"}

// Ingester builds a project from a source
type Ingester interface {
	Ingest(ctx context.Context, src archive.Source, name string) (*types.Project, error)
}

// SeedResult counts the outcome of a seeding run
type SeedResult struct {
	Loaded  int
	Skipped int
	Failed  int
}

// Seeder loads project archives from a directory tree into the store.
type Seeder struct {
	manager  *Manager
	ingester Ingester
	hasher   *utils.Hasher
	logger   *zap.Logger
}

// NewSeeder creates a seeder
func NewSeeder(manager *Manager, ingester Ingester, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		manager:  manager,
		ingester: ingester,
		hasher:   utils.DefaultHasher(),
		logger:   logger,
	}
}

// Seed ingests every project archive below dir. Archives whose digest is
// already stored are skipped. A missing dir is not an error.
func (s *Seeder) Seed(ctx context.Context, dir string) (SeedResult, error) {
	var res SeedResult

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		s.logger.Warn("Seed directory not found", zap.String("dir", dir))
		return res, nil
	}

	paths, err := FindArchives(ctx, dir, ProjectExtensions...)
	if err != nil {
		return res, err
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		loaded, err := s.load(ctx, p)
		switch {
		case err != nil:
			s.logger.Warn("Failed to seed project", zap.String("path", p), zap.Error(err))
			res.Failed++
		case loaded:
			res.Loaded++
		default:
			res.Skipped++
		}
	}

	s.logger.Info("Seeding complete",
		zap.String("dir", dir),
		zap.Int("loaded", res.Loaded),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed))
	return res, nil
}

func (s *Seeder) load(ctx context.Context, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	digest := s.hasher.Hash(data)
	if _, ok := s.manager.Lookup(digest); ok {
		return false, nil
	}

	project, err := s.ingester.Ingest(ctx, archive.Bytes{Filename: filepath.Base(path), Data: data}, "")
	if err != nil {
		return false, err
	}
	_, existed := s.manager.Save(project, path, digest)
	return !existed, nil
}

// FindArchives walks root and returns the files ending in one of exts,
// compared case-insensitively, in lexical order.
func FindArchives(ctx context.Context, root string, exts ...string) ([]string, error) {
	var (
		mu      sync.Mutex
		matches []string
	)
	conf := fastwalk.Config{Follow: false}

	err := fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(p))
		for _, want := range exts {
			if ext == want {
				mu.Lock()
				matches = append(matches, p)
				mu.Unlock()
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(matches)
	return matches, nil
}
