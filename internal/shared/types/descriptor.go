package types

import "fmt"

// Descriptor is a component type schema as found in descriptor JSON:
// type, name, properties, events, methods and free-form metadata.
type Descriptor map[string]interface{}

// PropertySchema is one declared property of a descriptor
type PropertySchema struct {
	Name         string
	DefaultValue interface{}
	EditorType   string
}

// Type returns the fully-qualified type name
func (d Descriptor) Type() string {
	return d.String("type")
}

// Name returns the descriptor's display name
func (d Descriptor) Name() string {
	return d.String("name")
}

// String returns a string field, or "" when absent or not a string
func (d Descriptor) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// List returns an array field, or nil when absent or not an array
func (d Descriptor) List(key string) []interface{} {
	l, _ := d[key].([]interface{})
	return l
}

// Properties returns the declared properties in declaration order.
// A malformed properties field is an error.
func (d Descriptor) Properties() ([]PropertySchema, error) {
	raw, ok := d["properties"]
	if !ok || raw == nil {
		return []PropertySchema{}, nil
	}

	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("properties must be an array, got %T", raw)
	}

	schema := make([]PropertySchema, 0, len(list))
	for i, item := range list {
		prop, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("property %d is not an object", i)
		}
		name, _ := prop["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("property %d has no name", i)
		}
		editor, _ := prop["editorType"].(string)
		schema = append(schema, PropertySchema{
			Name:         name,
			DefaultValue: prop["defaultValue"],
			EditorType:   editor,
		})
	}
	return schema, nil
}

// AsDescriptor converts a decoded JSON value to a Descriptor, or nil if it is not an object
func AsDescriptor(v interface{}) Descriptor {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	return Descriptor(m)
}
