package extension

import (
	"context"
	"fmt"
	"testing"

	"github.com/GriffinCanCode/unchive/internal/domain/archive"
	"github.com/GriffinCanCode/unchive/internal/shared/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeArchive serves files in insertion order
type fakeArchive struct {
	names []string
	files map[string]string
}

func newFakeArchive(pairs ...string) *fakeArchive {
	a := &fakeArchive{files: map[string]string{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		a.names = append(a.names, pairs[i])
		a.files[pairs[i]] = pairs[i+1]
	}
	return a
}

func (a *fakeArchive) Entries() []archive.Entry {
	out := make([]archive.Entry, 0, len(a.names))
	for _, n := range a.names {
		out = append(out, archive.Entry{Name: n, Size: int64(len(a.files[n]))})
	}
	return out
}

func (a *fakeArchive) ReadFile(name string) ([]byte, error) {
	s, ok := a.files[name]
	if !ok {
		return nil, fmt.Errorf("entry %q not found", name)
	}
	return []byte(s), nil
}

func (a *fakeArchive) Close() error { return nil }

func build(t *testing.T, a *fakeArchive) *Registry {
	t.Helper()
	r, err := Build(context.Background(), a, archive.Classify(a.Entries()).ExtensionJSON, nil)
	require.NoError(t, err)
	return r
}

func typeNames(r *Registry) []string {
	var out []string
	for _, ext := range r.Extensions() {
		out = append(out, ext.Type)
	}
	return out
}

const pkg = "assets/external_comps/com.example.Tools/"

func TestBuildPairsArrayPositionally(t *testing.T) {
	a := newFakeArchive(
		pkg+"files/component_build_infos.json", `[{"type":"com.example.Tools.Alpha"},{"type":"com.example.Tools.Beta"},{"type":"com.example.Tools.Gamma"}]`,
		pkg+"components.json", `[{"name":"Alpha","version":1},{"name":"Beta","version":2},{"name":"Gamma","version":3}]`,
	)

	r := build(t, a)

	require.Equal(t, 3, r.Len())
	for i, want := range []string{"Alpha", "Beta", "Gamma"} {
		ext := r.Extensions()[i]
		assert.Equal(t, "com.example.Tools."+want, ext.Type)
		assert.Equal(t, want, ext.Descriptor.Name())
	}
	assert.Empty(t, r.Diagnostics())
}

func TestBuildSingleObject(t *testing.T) {
	tests := []struct {
		name       string
		descriptor string
	}{
		{"object descriptor", `{"name":"Clock2","type":"com.example.Clock2"}`},
		{"array descriptor", `[{"name":"Clock2","type":"com.example.Clock2"},{"name":"Other"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newFakeArchive(
				"com.example.Clock2/files/component_build_info.json", `{"type":"com.example.Clock2"}`,
				"com.example.Clock2/component.json", tt.descriptor,
			)
			r := build(t, a)

			require.Equal(t, 1, r.Len())
			ext := r.Extensions()[0]
			assert.Equal(t, "com.example.Clock2", ext.Type)
			assert.Equal(t, "Clock2", ext.Descriptor.Name())
		})
	}
}

func TestBuildSkipsMalformedEntries(t *testing.T) {
	a := newFakeArchive(
		"assets/external_comps/broken/files/component_build_infos.json", `[{"type": "broken.Thing"`,
		"assets/external_comps/broken/components.json", `[{"name":"Thing"}]`,
		pkg+"files/component_build_infos.json", `[{"type":"com.example.Tools.Alpha"}]`,
		pkg+"components.json", `[{"name":"Alpha"}]`,
	)

	r := build(t, a)

	assert.Equal(t, []string{"com.example.Tools.Alpha"}, typeNames(r))
	require.Len(t, r.Diagnostics(), 1)
	assert.Equal(t, "assets/external_comps/broken/files/component_build_infos.json", r.Diagnostics()[0].Subject)
}

func TestBuildFallbackToDescriptors(t *testing.T) {
	a := newFakeArchive(
		"one/components.json", `[{"type":"org.one.First","name":"First"},{"name":"Second"}]`,
		"two/component.json", `{"helpString":"anonymous"}`,
	)

	r := build(t, a)

	assert.Equal(t, []string{"org.one.First", "Second", "Extension"}, typeNames(r))
}

func TestBuildMissingDescriptor(t *testing.T) {
	a := newFakeArchive(
		"lonely/files/component_build_info.json", `{"type":"org.lonely.Thing"}`,
	)

	r := build(t, a)

	assert.Equal(t, 0, r.Len())
	require.Len(t, r.Diagnostics(), 1)
	assert.Contains(t, r.Diagnostics()[0].Message, "no descriptor")
}

func TestBuildShortDescriptorArray(t *testing.T) {
	a := newFakeArchive(
		pkg+"files/component_build_infos.json", `[{"type":"com.example.Tools.Alpha"},{"type":"com.example.Tools.Beta"}]`,
		pkg+"components.json", `[{"name":"Alpha"}]`,
	)

	r := build(t, a)

	require.Equal(t, 2, r.Len())
	assert.Nil(t, r.Extensions()[1].Descriptor)
	assert.Len(t, r.Diagnostics(), 1)
}

func TestMatch(t *testing.T) {
	a := newFakeArchive(
		"a/files/component_build_infos.json", `[{"type":"org.a.Widget"},{"type":"org.a.Gadget"}]`,
		"a/components.json", `[{"name":"Widget"},{"name":"Gadget"}]`,
		"b/files/component_build_info.json", `{"type":"org.b.Widget"}`,
		"b/components.json", `{"name":"Widget"}`,
	)
	r := build(t, a)

	tests := []struct {
		declared string
		want     string
		ok       bool
	}{
		{"Widget", "org.a.Widget", true},
		{"Gadget", "org.a.Gadget", true},
		{"widget", "", false},
		{"Button", "", false},
		{"org.a.Widget", "", false},
	}
	for _, tt := range tests {
		ext, ok := r.Match(tt.declared)
		assert.Equal(t, tt.ok, ok, tt.declared)
		if ok {
			assert.Equal(t, tt.want, ext.Type)
		}
	}

	// ambiguity is reported
	require.Len(t, r.Diagnostics(), 1)
	assert.Equal(t, "org.b.Widget", r.Diagnostics()[0].Subject)
}

func TestNilRegistry(t *testing.T) {
	var r *Registry
	_, ok := r.Match("Anything")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
	assert.Nil(t, r.Extensions())
}

func TestBuildCancelled(t *testing.T) {
	a := newFakeArchive("x/components.json", `{}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, a, archive.Classify(a.Entries()).ExtensionJSON, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadPackage(t *testing.T) {
	ok := newFakeArchive(
		"com.example.Clock2/files/component_build_info.json", `{"type":"com.example.Clock2"}`,
		"com.example.Clock2/component.json", `{"name":"Clock2"}`,
		"com.example.Clock2/files/AndroidRuntime.jar", "PK",
	)
	r, err := ReadPackage(context.Background(), ok, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())

	empty := newFakeArchive("readme.txt", "nothing here")
	_, err = ReadPackage(context.Background(), empty, nil)
	assert.ErrorIs(t, err, errs.ErrValidation)
}
