package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/unchive/internal/shared/errs"
	"github.com/GriffinCanCode/unchive/internal/shared/types"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultNamespace prefixes built-in component types
const DefaultNamespace = "com.google.appinventor.components.runtime"

// Recorder observes catalog loads
type Recorder interface {
	RecordCatalogFetch(status string)
}

// Option configures a Catalog
type Option func(*Catalog)

// WithLogger sets the catalog logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder reports fetch outcomes to r
func WithRecorder(r Recorder) Option {
	return func(c *Catalog) {
		c.recorder = r
	}
}

// Catalog is the table of built-in component descriptors. It is loaded
// once on first use; concurrent first callers share a single fetch. A
// successful load is kept for the life of the catalog. Returned
// descriptors are shared and must not be modified.
type Catalog struct {
	fetcher   Fetcher
	namespace string
	logger    *zap.Logger
	recorder  Recorder

	group singleflight.Group
	// joined runs once a caller holds the channel of the in-flight load
	joined func()

	mu     sync.RWMutex
	loaded bool
	list   []types.Descriptor
	table  map[string]types.Descriptor
}

// New creates a lazily loaded catalog. An empty namespace selects DefaultNamespace.
func New(fetcher Fetcher, namespace string, opts ...Option) *Catalog {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	c := &Catalog{
		fetcher:   fetcher,
		namespace: namespace,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Namespace returns the built-in type prefix
func (c *Catalog) Namespace() string {
	return c.namespace
}

// QualifiedName joins the namespace and a short type name
func (c *Catalog) QualifiedName(short string) string {
	return c.namespace + "." + short
}

// Get returns the descriptor list, loading it on first call.
func (c *Catalog) Get(ctx context.Context) ([]types.Descriptor, error) {
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}
	list, _ := c.cached()
	return list, nil
}

// Find looks up a descriptor by fully-qualified type name.
func (c *Catalog) Find(ctx context.Context, qualified string) (types.Descriptor, bool, error) {
	if err := c.ensure(ctx); err != nil {
		return nil, false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.table[qualified]
	return d, ok, nil
}

// ensure loads the table once; concurrent first callers share the fetch
func (c *Catalog) ensure(ctx context.Context) error {
	if c.isLoaded() {
		return nil
	}

	// The shared load runs detached so one caller giving up does not fail the others.
	ch := c.group.DoChan("catalog", func() (interface{}, error) {
		if c.isLoaded() {
			return nil, nil
		}
		return nil, c.load(context.WithoutCancel(ctx))
	})
	if c.joined != nil {
		c.joined()
	}

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return errs.IO("catalog", c.namespace, ctx.Err())
	}
}

// Lookup finds a built-in descriptor by short type name, e.g. "Button".
func (c *Catalog) Lookup(ctx context.Context, short string) (types.Descriptor, bool, error) {
	return c.Find(ctx, c.QualifiedName(short))
}

// Len returns the number of loaded descriptors, zero before the first load
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.list)
}

func (c *Catalog) isLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func (c *Catalog) cached() ([]types.Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, false
	}
	return append([]types.Descriptor(nil), c.list...), true
}

func (c *Catalog) load(ctx context.Context) error {
	if c.fetcher == nil {
		c.record("error")
		return errs.IO("catalog fetch", c.namespace, fmt.Errorf("no catalog source configured"))
	}

	data, err := c.fetcher.Fetch(ctx)
	if err != nil {
		c.record("error")
		c.logger.Error("Catalog fetch failed", zap.String("source", c.fetcher.String()), zap.Error(err))
		return errs.IO("catalog fetch", c.fetcher.String(), err)
	}

	list, table, err := parse(data)
	if err != nil {
		c.record("invalid")
		return errs.Format("catalog parse", c.fetcher.String(), err)
	}

	c.mu.Lock()
	c.list = list
	c.table = table
	c.loaded = true
	c.mu.Unlock()

	c.record("ok")
	c.logger.Info("Catalog loaded",
		zap.String("source", c.fetcher.String()),
		zap.Int("descriptors", len(list)))
	return nil
}

func (c *Catalog) record(status string) {
	if c.recorder != nil {
		c.recorder.RecordCatalogFetch(status)
	}
}

// parse decodes a JSON array of descriptors keyed by their "type" field.
// Items that are not objects or lack a type are dropped.
func parse(data []byte) ([]types.Descriptor, map[string]types.Descriptor, error) {
	var raw []interface{}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}

	list := make([]types.Descriptor, 0, len(raw))
	table := make(map[string]types.Descriptor, len(raw))
	for _, item := range raw {
		d := types.AsDescriptor(item)
		if d == nil || d.Type() == "" {
			continue
		}
		if _, dup := table[d.Type()]; dup {
			continue
		}
		list = append(list, d)
		table[d.Type()] = d
	}
	return list, table, nil
}
