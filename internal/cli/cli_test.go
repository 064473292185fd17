package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/GriffinCanCode/unchive/internal/domain/archive"
	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `[
	{"type": "com.google.appinventor.components.runtime.Form", "properties": [
		{"name": "Title", "defaultValue": "Screen1", "editorType": "string"}
	]},
	{"type": "com.google.appinventor.components.runtime.Button", "properties": [
		{"name": "Text", "defaultValue": "", "editorType": "string"}
	]}
]`

func writeZip(t *testing.T, path string, files ...string) {
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
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func writeProject(t *testing.T, path string) {
	writeZip(t, path,
		"youngandroidproject/project.properties", "name=Demo\n",
		"src/com/example/demo/Screen1.scm", "#|\n$JSON\n"+
			`{"Properties":{"$Name":"Screen1","$Type":"Form","Uuid":"0","$Components":[{"$Name":"Go","$Type":"Button","Uuid":"1","Text":"Go"}]}}`+
			"\n|#",
		"src/com/example/demo/Screen1.bky", `<xml><block type="component_event"/></xml>`,
	)
}

// run executes the command tree with a temp catalog and returns stdout and stderr
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	catalog := filepath.Join(t.TempDir(), "simple_components.json")
	require.NoError(t, os.WriteFile(catalog, []byte(catalogJSON), 0o644))

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--catalog", catalog, "--workers", "1", "--log-level", "error"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.aia")
	writeProject(t, path)

	out, _, err := run(t, "inspect", path)
	require.NoError(t, err)

	var model struct {
		Name    string `json:"name"`
		Screens []struct {
			Name string `json:"name"`
			Form struct {
				Children []struct {
					Name string `json:"name"`
					Type string `json:"type"`
				} `json:"children"`
			} `json:"form"`
		} `json:"screens"`
	}
	require.NoError(t, sonic.UnmarshalString(out, &model))
	assert.Equal(t, "Demo", model.Name)
	require.Len(t, model.Screens, 1)
	require.Len(t, model.Screens[0].Form.Children, 1)
	assert.Equal(t, "Button", model.Screens[0].Form.Children[0].Type)

	out, _, err = run(t, "inspect", "--name", "Renamed", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Renamed"`)
}

func TestSummaryFormats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.aia")
	writeProject(t, path)

	tests := []struct {
		format string
		want   string
	}{
		{"line", "Demo: 1 screens, 1 blocks, 0 extensions, 0 assets (0B), 100% built-in"},
		{"json", `"project": "Demo"`},
		{"yaml", "project: Demo"},
		{"toml", "Demo"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, _, err := run(t, "summary", "--format", tt.format, path)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}

	_, _, err := run(t, "summary", "--format", "xml", path)
	assert.Error(t, err)
}

func TestExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clock.aix")
	writeZip(t, path,
		"com.example.Clock2/files/component_build_info.json", `{"type":"com.example.Clock2"}`,
		"com.example.Clock2/component.json", `{"name":"Clock2","helpString":"<b>ticks</b>"}`,
	)

	out, _, err := run(t, "extension", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Clock2")
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, filepath.Join(dir, "a", "one.aia"))
	writeProject(t, filepath.Join(dir, "b", "two.AIA"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))

	out, _, err := run(t, "scan", dir)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "a", "one.aia"))
	assert.Contains(t, out, filepath.Join(dir, "b", "two.AIA"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.aia"), nil, 0o644))
	_, stderr, err := run(t, "scan", dir)
	assert.EqualError(t, err, "1 of 3 archives failed")
	assert.Contains(t, stderr, "broken.aia")

	out, _, err = run(t, "scan", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No project archives found.")
}

func TestSourceOf(t *testing.T) {
	assert.Equal(t, archive.URL("https://example.com/a.aia"), sourceOf("https://example.com/a.aia"))
	assert.Equal(t, archive.URL("HTTP://example.com/a.aia"), sourceOf("HTTP://example.com/a.aia"))
	assert.Equal(t, archive.File("./a.aia"), sourceOf("./a.aia"))
}
