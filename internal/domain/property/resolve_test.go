package property

import (
	"context"
	"fmt"
	"testing"

	"github.com/GriffinCanCode/unchive/internal/infrastructure/workers"
	"github.com/GriffinCanCode/unchive/internal/shared/errs"
	"github.com/GriffinCanCode/unchive/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var buttonSchema = []types.PropertySchema{
	{Name: "BackgroundColor", DefaultValue: "&H00000000", EditorType: "color"},
	{Name: "Enabled", DefaultValue: "True", EditorType: "boolean"},
	{Name: "Text", DefaultValue: "", EditorType: "string"},
}

func buttonDescriptor() types.Descriptor {
	props := make([]interface{}, 0, len(buttonSchema))
	for _, p := range buttonSchema {
		props = append(props, map[string]interface{}{
			"name":         p.Name,
			"defaultValue": p.DefaultValue,
			"editorType":   p.EditorType,
		})
	}
	return types.Descriptor{"type": "com.google.appinventor.components.runtime.Button", "properties": props}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]interface{}
		want []types.Property
	}{
		{
			name: "all explicit, raw order ignored",
			raw:  map[string]interface{}{"Text": "Go", "Enabled": "False", "BackgroundColor": "&HFF0000FF"},
			want: []types.Property{
				{Name: "BackgroundColor", Value: "&HFF0000FF"},
				{Name: "Enabled", Value: "False"},
				{Name: "Text", Value: "Go"},
			},
		},
		{
			name: "unset properties take defaults",
			raw:  map[string]interface{}{"Text": "Go", "$Name": "Button1", "Unknown": "x"},
			want: []types.Property{
				{Name: "BackgroundColor", Value: "&H00000000", EditorType: "color"},
				{Name: "Enabled", Value: "True", EditorType: "boolean"},
				{Name: "Text", Value: "Go"},
			},
		},
		{
			name: "nil raw",
			raw:  nil,
			want: []types.Property{
				{Name: "BackgroundColor", Value: "&H00000000", EditorType: "color"},
				{Name: "Enabled", Value: "True", EditorType: "boolean"},
				{Name: "Text", Value: "", EditorType: "string"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.raw, buttonSchema))
		})
	}
}

func TestResolveEmptySchema(t *testing.T) {
	got := Resolve(map[string]interface{}{"Text": "x"}, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestResolveAll(t *testing.T) {
	pool := workers.NewPool(4, nil)
	defer pool.Close()
	r := NewResolver(pool, nil)

	var tasks []Task
	for i := 0; i < 40; i++ {
		tasks = append(tasks, Task{
			Component:  fmt.Sprintf("Button%d", i),
			Raw:        map[string]interface{}{"Text": fmt.Sprint(i)},
			Descriptor: buttonDescriptor(),
		})
	}
	tasks = append(tasks,
		Task{Component: "Mystery1", Raw: map[string]interface{}{"Text": "?"}},
		Task{Component: "Broken1", Descriptor: types.Descriptor{"properties": "nope"}},
	)

	results, err := r.ResolveAll(context.Background(), tasks)
	require.NoError(t, err)
	require.Len(t, results, len(tasks))

	for i := 0; i < 40; i++ {
		require.NoError(t, results[i].Err)
		require.Len(t, results[i].Properties, 3)
		assert.Equal(t, fmt.Sprint(i), results[i].Properties[2].Value)
	}

	assert.ErrorIs(t, results[40].Err, errs.ErrComponentResolution)
	assert.Empty(t, results[40].Properties)
	assert.ErrorIs(t, results[41].Err, errs.ErrComponentResolution)
}

func TestResolveAllInline(t *testing.T) {
	r := NewResolver(nil, nil)
	results, err := r.ResolveAll(context.Background(), []Task{{Component: "B", Descriptor: buttonDescriptor()}})
	require.NoError(t, err)
	assert.Len(t, results[0].Properties, 3)
}

func TestResolveAllTaskSnapshot(t *testing.T) {
	pool := workers.NewPool(1, nil)
	defer pool.Close()
	r := NewResolver(pool, nil)

	raw := map[string]interface{}{"Text": "before"}
	results, err := r.ResolveAll(context.Background(), []Task{{Component: "B", Raw: raw, Descriptor: buttonDescriptor()}})
	require.NoError(t, err)
	raw["Text"] = "after"

	assert.Equal(t, "before", results[0].Properties[2].Value)
}

func TestResolveAllClosedPool(t *testing.T) {
	pool := workers.NewPool(1, nil)
	pool.Close()
	r := NewResolver(pool, nil)

	_, err := r.ResolveAll(context.Background(), []Task{{Component: "B", Descriptor: buttonDescriptor()}})
	assert.ErrorIs(t, err, workers.ErrPoolClosed)
}
