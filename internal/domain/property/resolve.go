package property

import (
	"github.com/GriffinCanCode/unchive/internal/shared/types"
)

// Resolve merges authored values with a descriptor's property schema.
// Output follows schema order. A property absent from raw gets the
// schema default and its editor type.
func Resolve(raw map[string]interface{}, schema []types.PropertySchema) []types.Property {
	out := make([]types.Property, 0, len(schema))
	for _, p := range schema {
		if v, ok := raw[p.Name]; ok {
			out = append(out, types.Property{Name: p.Name, Value: v})
			continue
		}
		out = append(out, types.Property{
			Name:       p.Name,
			Value:      p.DefaultValue,
			EditorType: p.EditorType,
		})
	}
	return out
}
