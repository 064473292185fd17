package ingest

import (
	"bufio"
	"context"
	"errors"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/GriffinCanCode/unchive/internal/domain/archive"
	"github.com/GriffinCanCode/unchive/internal/domain/extension"
	"github.com/GriffinCanCode/unchive/internal/domain/tree"
	"github.com/GriffinCanCode/unchive/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/unchive/internal/shared/errs"
	"github.com/GriffinCanCode/unchive/internal/shared/types"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const projectProperties = "youngandroidproject/project.properties"

// Catalog is prefetched alongside extension parsing
type Catalog interface {
	Get(ctx context.Context) ([]types.Descriptor, error)
}

// Recorder observes ingestion outcomes
type Recorder interface {
	RecordIngest(status string, d time.Duration)
	RecordScreen()
	RecordComponent(origin string, faulty bool)
}

// Option configures an Ingestor
type Option func(*Ingestor)

// WithPublisher sets the publisher assets use for their references
func WithPublisher(p types.Publisher) Option {
	return func(in *Ingestor) { in.publisher = p }
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(in *Ingestor) { in.recorder = r }
}

// WithTracer sets the tracer for stage spans
func WithTracer(t *tracing.Tracer) Option {
	return func(in *Ingestor) { in.tracer = t }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(in *Ingestor) {
		if l != nil {
			in.logger = l
		}
	}
}

// Ingestor turns project archives into project models.
type Ingestor struct {
	opener    *archive.Opener
	catalog   Catalog
	builder   *tree.Builder
	publisher types.Publisher
	recorder  Recorder
	tracer    *tracing.Tracer
	logger    *zap.Logger
}

// New creates an ingestor
func New(opener *archive.Opener, catalog Catalog, builder *tree.Builder, opts ...Option) *Ingestor {
	in := &Ingestor{
		opener:  opener,
		catalog: catalog,
		builder: builder,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Ingest opens src and builds its project model. name overrides the
// project name; when empty the name comes from the project properties or
// the source name. IO, format and validation errors abort ingestion;
// unresolved components and malformed extension entries are recorded as
// diagnostics on the returned project.
func (in *Ingestor) Ingest(ctx context.Context, src archive.Source, name string) (project *types.Project, err error) {
	start := time.Now()
	span, ctx := in.tracer.Start(ctx, "ingest")
	span.SetTag("source", src.Name())
	defer func() {
		span.End(err)
		in.recordIngest(err, time.Since(start))
		if project != nil {
			in.recordModel(project)
		}
	}()

	a, err := in.open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	classified := archive.Classify(a.Entries())
	screens, err := pairScreens(classified)
	if err != nil {
		return nil, err
	}

	registry, err := in.prepare(ctx, a, classified, len(screens) > 0)
	if err != nil {
		return nil, err
	}

	built, diags, err := in.buildScreens(ctx, a, screens, registry)
	if err != nil {
		return nil, err
	}

	project = &types.Project{
		Name:        in.projectName(a, src, name),
		Screens:     built,
		Extensions:  registry.Extensions(),
		Diagnostics: append(registry.Diagnostics(), diags...),
	}
	if project.Extensions == nil {
		project.Extensions = []*types.Extension{}
	}
	project.Assets, diags = in.readAssets(ctx, a, classified.Assets)
	project.Diagnostics = append(project.Diagnostics, diags...)

	in.logger.Info("Project ingested",
		zap.String("project", project.Name),
		zap.Int("screens", len(project.Screens)),
		zap.Int("extensions", len(project.Extensions)),
		zap.Int("assets", len(project.Assets)),
		zap.Int("diagnostics", len(project.Diagnostics)),
		zap.Duration("duration", time.Since(start)))
	return project, nil
}

// ReadExtensions opens a standalone extension package (.aix).
func (in *Ingestor) ReadExtensions(ctx context.Context, src archive.Source) (*extension.Registry, error) {
	a, err := in.open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return extension.ReadPackage(ctx, a, in.logger)
}

func (in *Ingestor) open(ctx context.Context, src archive.Source) (archive.Archive, error) {
	span, ctx := in.tracer.Start(ctx, "ingest.open")
	a, err := in.opener.Open(ctx, src)
	span.End(err)
	return a, err
}

// prepare builds the extension registry while the catalog is prefetched.
func (in *Ingestor) prepare(ctx context.Context, a archive.Archive, c archive.Classified, needCatalog bool) (*extension.Registry, error) {
	g, gctx := errgroup.WithContext(ctx)

	var registry *extension.Registry
	g.Go(func() error {
		span, sctx := in.tracer.Start(gctx, "ingest.extensions")
		r, err := extension.Build(sctx, a, c.ExtensionJSON, in.logger)
		span.SetTag("entries", strconv.Itoa(len(c.ExtensionJSON)))
		span.End(err)
		registry = r
		return err
	})

	if needCatalog && in.catalog != nil {
		g.Go(func() error {
			span, sctx := in.tracer.Start(gctx, "ingest.catalog")
			_, err := in.catalog.Get(sctx)
			span.End(err)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return registry, nil
}

type screenFiles struct {
	name   string
	scheme string
	blocks string
}

// pairScreens matches each scheme file with the block file sharing its
// stem. A scheme without blocks, or two schemes with one name, is invalid.
func pairScreens(c archive.Classified) ([]screenFiles, error) {
	const op = "pair screens"

	blocks := make(map[string]string, len(c.Blocks))
	for _, b := range c.Blocks {
		stem := archive.EntryStem(b.Name)
		if _, ok := blocks[stem]; !ok {
			blocks[stem] = b.Name
		}
	}

	seen := make(map[string]bool, len(c.Schemes))
	out := make([]screenFiles, 0, len(c.Schemes))
	for _, s := range c.Schemes {
		stem := archive.EntryStem(s.Name)
		if seen[stem] {
			return nil, errs.Validation(op, s.Name, "duplicate screen %q", stem)
		}
		seen[stem] = true

		bky, ok := blocks[stem]
		if !ok {
			return nil, errs.Validation(op, s.Name, "screen %q has no block file", stem)
		}
		out = append(out, screenFiles{name: stem, scheme: s.Name, blocks: bky})
	}
	return out, nil
}

// buildScreens builds all screens concurrently. Output keeps archive order.
func (in *Ingestor) buildScreens(ctx context.Context, a archive.Archive, files []screenFiles, exts *extension.Registry) ([]*types.Screen, []types.Diagnostic, error) {
	span, ctx := in.tracer.Start(ctx, "ingest.screens")
	span.SetTag("screens", strconv.Itoa(len(files)))

	screens := make([]*types.Screen, len(files))
	diags := make([][]types.Diagnostic, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			scheme, err := archive.ReadText(a, f.scheme)
			if err != nil {
				return errs.IO("read scheme", f.scheme, err)
			}
			blocks, err := archive.ReadText(a, f.blocks)
			if err != nil {
				return errs.IO("read blocks", f.blocks, err)
			}

			screen, d, err := in.builder.BuildScreen(gctx, scheme, blocks, f.name, exts)
			if err != nil {
				return err
			}
			screens[i], diags[i] = screen, d
			return nil
		})
	}
	err := g.Wait()
	span.End(err)
	if err != nil {
		return nil, nil, err
	}

	var all []types.Diagnostic
	for _, d := range diags {
		all = append(all, d...)
	}
	return screens, all, nil
}

// readAssets loads direct children of assets/. An unreadable asset is
// skipped with a diagnostic.
func (in *Ingestor) readAssets(ctx context.Context, a archive.Archive, entries []archive.Entry) ([]*types.Asset, []types.Diagnostic) {
	span, _ := in.tracer.Start(ctx, "ingest.assets")
	defer span.End(nil)

	out := make([]*types.Asset, 0, len(entries))
	var diags []types.Diagnostic
	for _, e := range entries {
		data, err := a.ReadFile(e.Name)
		if err != nil {
			diags = append(diags, types.Diagnostic{Stage: "assets", Subject: e.Name, Message: err.Error()})
			in.logger.Warn("Asset unreadable", zap.String("entry", e.Name), zap.Error(err))
			continue
		}
		name := path.Base(e.Name)
		typ := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
		mime := mimetype.Detect(data).String()
		out = append(out, types.NewAsset(name, typ, mime, data, in.publisher))
	}
	return out, diags
}

func (in *Ingestor) projectName(a archive.Archive, src archive.Source, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if text, err := archive.ReadText(a, projectProperties); err == nil {
		if name := propertyValue(text, "name"); name != "" {
			return name
		}
	}
	return archive.Stem(src)
}

// propertyValue reads key from a Java properties document
func propertyValue(text, key string) string {
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == '!' {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			k, v, ok = strings.Cut(line, ":")
		}
		if ok && strings.TrimSpace(k) == key {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func (in *Ingestor) recordIngest(err error, d time.Duration) {
	if in.recorder == nil {
		return
	}
	in.recorder.RecordIngest(Status(err), d)
}

func (in *Ingestor) recordModel(p *types.Project) {
	if in.recorder == nil {
		return
	}
	for _, s := range p.Screens {
		in.recorder.RecordScreen()
		s.Form.Walk(func(c *types.Component) bool {
			in.recorder.RecordComponent(string(c.Origin), c.Faulty)
			return true
		})
	}
}

// Status labels an ingestion outcome for metrics
func Status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errs.ErrIO):
		return "io"
	case errors.Is(err, errs.ErrFormat):
		return "format"
	case errors.Is(err, errs.ErrValidation):
		return "validation"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
