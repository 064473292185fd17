package property

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/GriffinCanCode/unchive/internal/infrastructure/workers"
	"github.com/GriffinCanCode/unchive/internal/shared/errs"
	"github.com/GriffinCanCode/unchive/internal/shared/types"
	"go.uber.org/zap"
)

var errNoDescriptor = errors.New("no descriptor for component type")

// Task is one component's resolution input
type Task struct {
	Component  string
	Raw        map[string]interface{}
	Descriptor types.Descriptor
}

// Result is one component's resolution output. Err is an
// errs.ErrComponentResolution when the component could not be resolved.
type Result struct {
	Properties []types.Property
	Err        error
}

// Resolver runs resolution tasks on a shared worker pool.
type Resolver struct {
	pool   *workers.Pool
	logger *zap.Logger
}

// NewResolver creates a resolver. A nil pool resolves inline.
func NewResolver(pool *workers.Pool, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{pool: pool, logger: logger}
}

// ResolveAll resolves every task and returns results in task order.
// Each task sees a private copy of its raw values; a failing or
// panicking task affects only its own result. The returned error is
// non-nil only when tasks could not be scheduled.
func (r *Resolver) ResolveAll(ctx context.Context, tasks []Task) ([]Result, error) {
	results := make([]Result, len(tasks))
	if r.pool == nil {
		for i, t := range tasks {
			results[i] = run(t)
		}
		return results, nil
	}

	var wg sync.WaitGroup
	for i, t := range tasks {
		t.Raw = maps.Clone(t.Raw)
		wg.Add(1)
		err := r.pool.Submit(ctx, func() {
			defer wg.Done()
			results[i] = run(t)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("schedule property resolution: %w", err)
		}
	}
	wg.Wait()

	for i, res := range results {
		if res.Err != nil {
			r.logger.Debug("Component unresolved",
				zap.String("component", tasks[i].Component),
				zap.Error(res.Err))
		}
	}
	return results, nil
}

func run(t Task) (res Result) {
	const op = "resolve properties"

	defer func() {
		if p := recover(); p != nil {
			res = Result{Err: errs.Resolution(op, t.Component, fmt.Errorf("panic: %v", p))}
		}
	}()

	if t.Descriptor == nil {
		return Result{Err: errs.Resolution(op, t.Component, errNoDescriptor)}
	}
	schema, err := t.Descriptor.Properties()
	if err != nil {
		return Result{Err: errs.Resolution(op, t.Component, err)}
	}
	return Result{Properties: Resolve(t.Raw, schema)}
}
