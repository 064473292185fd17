package ingest

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/unchive/internal/domain/archive"
	"github.com/GriffinCanCode/unchive/internal/domain/assets"
	"github.com/GriffinCanCode/unchive/internal/domain/catalog"
	"github.com/GriffinCanCode/unchive/internal/domain/property"
	"github.com/GriffinCanCode/unchive/internal/domain/tree"
	"github.com/GriffinCanCode/unchive/internal/infrastructure/workers"
	"github.com/GriffinCanCode/unchive/internal/shared/errs"
	"github.com/GriffinCanCode/unchive/internal/shared/types"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `[
	{"type": "com.google.appinventor.components.runtime.Form", "properties": [
		{"name": "AppName", "defaultValue": "", "editorType": "string"},
		{"name": "Title", "defaultValue": "Screen1", "editorType": "string"}
	]},
	{"type": "com.google.appinventor.components.runtime.Button", "properties": [
		{"name": "Text", "defaultValue": "", "editorType": "string"}
	]}
]`

const extPath = "assets/external_comps/com.example.Clock2/"

func frame(body string) string {
	return "#|\n$JSON\n" + body + "\n|#"
}

func zipOf(t *testing.T, files ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for i := 0; i+1 < len(files); i += 2 {
		fw, err := w.Create(files[i])
		require.NoError(t, err)
		_, err = fw.Write([]byte(files[i+1]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func projectZip(t *testing.T) []byte {
	return zipOf(t,
		"youngandroidproject/project.properties", "main=com.example.demo.Screen1\nname=Demo\n",
		"src/com/example/demo/Screen1.scm", frame(`{"authURL":[],"Properties":{"$Name":"Screen1","$Type":"Form","Uuid":"0","AppName":"Demo","$Components":[
			{"$Name":"Go","$Type":"Button","Uuid":"1","Text":"Go"},
			{"$Name":"Tick","$Type":"Clock2","Uuid":"2"},
			{"$Name":"Ghost","$Type":"Teleporter","Uuid":"3"}
		]}}`),
		"src/com/example/demo/Screen1.bky", `<xml><block type="component_event"/></xml>`,
		"src/com/example/demo/Screen2.scm", frame(`{"Properties":{"$Name":"Screen2","$Type":"Form","Uuid":"0"}}`),
		"src/com/example/demo/Screen2.bky", "",
		extPath+"files/component_build_infos.json", `[{"type":"com.example.Clock2"}]`,
		extPath+"components.json", `[{"name":"Clock2","properties":[{"name":"Interval","defaultValue":"1000","editorType":"integer"}]}]`,
		"assets/external_comps/com.example.Broken/components.json", `{not json`,
		"assets/a.png", "\x89PNG\r\n\x1a\n0000",
		"assets/sub/b.png", "\x89PNG\r\n\x1a\n0000",
	)
}

type recorder struct {
	mu         sync.Mutex
	statuses   []string
	screens    int
	components map[string]int
	faulty     int
}

func (r *recorder) RecordIngest(status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *recorder) RecordScreen() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.screens++
}

func (r *recorder) RecordComponent(origin string, faulty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.components == nil {
		r.components = map[string]int{}
	}
	r.components[origin]++
	if faulty {
		r.faulty++
	}
}

func newIngestor(t *testing.T, cat *catalog.Catalog, opts ...Option) *Ingestor {
	t.Helper()
	pool := workers.NewPool(4, nil)
	t.Cleanup(pool.Close)
	builder := tree.NewBuilder(cat, property.NewResolver(pool, nil), tree.DefaultFraming, nil)
	return New(archive.NewOpener(nil, 0, nil), cat, builder, opts...)
}

func TestIngestProject(t *testing.T) {
	rec := &recorder{}
	store := assets.NewStore(nil, nil)
	in := newIngestor(t, catalog.New(catalog.StaticFetcher(catalogJSON), ""), WithRecorder(rec), WithPublisher(store))

	project, err := in.Ingest(context.Background(), archive.Bytes{Filename: "demo.aia", Data: projectZip(t)}, "")
	require.NoError(t, err)

	assert.Equal(t, "Demo", project.Name)
	require.Len(t, project.Screens, 2)
	assert.Equal(t, "Screen1", project.Screens[0].Name)
	assert.Equal(t, "Screen2", project.Screens[1].Name)
	assert.Equal(t, `<xml><block type="component_event"/></xml>`, project.Screens[0].Blocks)

	form := project.Screens[0].Form
	require.Len(t, form.Children, 3)
	assert.Equal(t, []types.Property{
		{Name: "AppName", Value: "Demo"},
		{Name: "Title", Value: "Screen1", EditorType: "string"},
	}, form.Properties)

	tick := form.Children[1]
	assert.Equal(t, types.OriginExtension, tick.Origin)
	assert.Equal(t, []types.Property{{Name: "Interval", Value: "1000", EditorType: "integer"}}, tick.Properties)

	ghost := form.Children[2]
	assert.True(t, ghost.Faulty)
	assert.Empty(t, ghost.Properties)

	require.Len(t, project.Extensions, 1)
	assert.Equal(t, "com.example.Clock2", project.Extensions[0].Type)

	require.Len(t, project.Assets, 1)
	asset := project.Assets[0]
	assert.Equal(t, "a.png", asset.Name)
	assert.Equal(t, "png", asset.Type)
	assert.Equal(t, "image/png", asset.MIME)
	ref, err := asset.Reference()
	require.NoError(t, err)
	_, ok := store.Get(ref)
	assert.True(t, ok)

	// broken extension entry and unresolved Ghost
	subjects := []string{}
	for _, d := range project.Diagnostics {
		subjects = append(subjects, d.Subject)
	}
	assert.ElementsMatch(t, []string{
		"assets/external_comps/com.example.Broken/components.json",
		"Screen1/Ghost",
	}, subjects)

	assert.Equal(t, []string{"ok"}, rec.statuses)
	assert.Equal(t, 2, rec.screens)
	assert.Equal(t, 4, rec.components[string(types.OriginBuiltIn)])
	assert.Equal(t, 1, rec.components[string(types.OriginExtension)])
	assert.Equal(t, 1, rec.faulty)
}

func TestIngestNames(t *testing.T) {
	in := newIngestor(t, catalog.New(catalog.StaticFetcher(catalogJSON), ""))
	data := zipOf(t,
		"Screen1.scm", frame(`{"Properties":{"$Name":"Screen1","$Type":"Form"}}`),
		"Screen1.bky", "",
	)

	p, err := in.Ingest(context.Background(), archive.Bytes{Filename: "Hello.aia", Data: data}, "")
	require.NoError(t, err)
	assert.Equal(t, "Hello", p.Name)

	p, err = in.Ingest(context.Background(), archive.Bytes{Filename: "Hello.aia", Data: data}, "Custom")
	require.NoError(t, err)
	assert.Equal(t, "Custom", p.Name)
	assert.NotNil(t, p.Extensions)
	assert.Empty(t, p.Assets)
}

func TestIngestFailures(t *testing.T) {
	good := catalog.StaticFetcher(catalogJSON)

	tests := []struct {
		name    string
		fetcher catalog.Fetcher
		data    func(t *testing.T) []byte
		kind    error
		status  string
	}{
		{
			name:    "empty container",
			fetcher: good,
			data:    func(t *testing.T) []byte { return zipOf(t) },
			kind:    errs.ErrIO,
			status:  "io",
		},
		{
			name:    "missing block file",
			fetcher: good,
			data: func(t *testing.T) []byte {
				return zipOf(t, "Screen1.scm", frame(`{"Properties":{}}`))
			},
			kind:   errs.ErrValidation,
			status: "validation",
		},
		{
			name:    "duplicate screen",
			fetcher: good,
			data: func(t *testing.T) []byte {
				return zipOf(t, "a/Screen1.scm", "", "b/Screen1.scm", "", "a/Screen1.bky", "")
			},
			kind:   errs.ErrValidation,
			status: "validation",
		},
		{
			name:    "malformed scheme",
			fetcher: good,
			data: func(t *testing.T) []byte {
				return zipOf(t, "Screen1.scm", frame("{"), "Screen1.bky", "")
			},
			kind:   errs.ErrFormat,
			status: "format",
		},
		{
			name:    "catalog unavailable",
			fetcher: catalog.FileFetcher("/nonexistent/simple_components.json"),
			data:    projectZip,
			kind:    errs.ErrIO,
			status:  "io",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			in := newIngestor(t, catalog.New(tt.fetcher, ""), WithRecorder(rec))

			_, err := in.Ingest(context.Background(), archive.Bytes{Data: tt.data(t)}, "")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, []string{tt.status}, rec.statuses)
			assert.Zero(t, rec.screens)
		})
	}
}

func TestReadExtensions(t *testing.T) {
	in := newIngestor(t, nil)
	data := zipOf(t,
		"com.example.Clock2/files/component_build_info.json", `{"type":"com.example.Clock2"}`,
		"com.example.Clock2/component.json", `{"name":"Clock2","helpString":"<b>ticks</b>"}`,
	)

	r, err := in.ReadExtensions(context.Background(), archive.Bytes{Filename: "clock.aix", Data: data})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())

	_, err = in.ReadExtensions(context.Background(), archive.Bytes{Data: zipOf(t, "readme.txt", "hi")})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestPropertyValue(t *testing.T) {
	doc := "#comment\n! also\nmain = com.x.Screen1\nname=Demo App\ncolor:blue\n"
	tests := []struct {
		key  string
		want string
	}{
		{"name", "Demo App"},
		{"main", "com.x.Screen1"},
		{"color", "blue"},
		{"missing", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, propertyValue(doc, tt.key), tt.key)
	}
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "ok", Status(nil))
	assert.Equal(t, "io", Status(errs.IO("open", "x", errors.New("boom"))))
	assert.Equal(t, "format", Status(errs.Format("parse", "x", errors.New("boom"))))
	assert.Equal(t, "validation", Status(errs.Validation("pair", "x", "bad")))
	assert.Equal(t, "canceled", Status(context.Canceled))
	assert.Equal(t, "error", Status(errors.New("other")))
}
