package extension

import (
	"context"

	"github.com/GriffinCanCode/unchive/internal/domain/archive"
	"github.com/GriffinCanCode/unchive/internal/shared/errs"
	"go.uber.org/zap"
)

// ReadPackage builds a registry from a standalone extension package
// (.aix). A package without any extension is a validation error.
func ReadPackage(ctx context.Context, a archive.Archive, logger *zap.Logger) (*Registry, error) {
	classified := archive.Classify(a.Entries())

	r, err := Build(ctx, a, classified.ExtensionJSON, logger)
	if err != nil {
		return nil, err
	}
	if r.Len() == 0 {
		return nil, errs.Validation("read package", "", "no extension found; the package must contain components.json")
	}
	return r, nil
}
