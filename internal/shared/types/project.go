package types

import (
	"strings"
)

// Origin tells where a component's type definition comes from
type Origin string

const (
	OriginBuiltIn   Origin = "BUILT_IN"
	OriginExtension Origin = "EXTENSION"
)

// Project is the aggregate result of ingesting one archive
type Project struct {
	Name        string       `json:"name"`
	Screens     []*Screen    `json:"screens"`
	Extensions  []*Extension `json:"extensions"`
	Assets      []*Asset     `json:"assets"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Screen is one screen of a project: its component tree and raw blocks
type Screen struct {
	Name   string     `json:"name"`
	Form   *Component `json:"form"`
	Blocks string     `json:"blocks"`
}

// Component is a node of a screen's component tree
type Component struct {
	Name       string       `json:"name"`
	Type       string       `json:"type"`
	UID        interface{}  `json:"uid"`
	Origin     Origin       `json:"origin"`
	Properties []Property   `json:"properties"`
	Children   []*Component `json:"children"`
	Faulty     bool         `json:"faulty"`
}

// NewComponent creates a component with no properties or children.
// A blank uid defaults to 0.
func NewComponent(name, typ string, uid interface{}, origin Origin) *Component {
	if BlankUID(uid) {
		uid = 0
	}
	return &Component{
		Name:       name,
		Type:       typ,
		UID:        uid,
		Origin:     origin,
		Properties: []Property{},
		Children:   []*Component{},
	}
}

// MarkFaulty flags the component and drops its properties. Faulty never reverts.
func (c *Component) MarkFaulty() {
	c.Faulty = true
	c.Properties = []Property{}
}

// BlankUID reports whether a scheme uid is absent: nil, empty, false or zero
func BlankUID(uid interface{}) bool {
	switch v := uid.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case float64:
		return v == 0
	case int:
		return v == 0
	}
	return false
}

// AddChild appends a child, preserving containment order
func (c *Component) AddChild(child *Component) {
	c.Children = append(c.Children, child)
}

// Walk visits the component and its descendants depth-first, parents first.
// Returning false from fn skips the node's children.
func (c *Component) Walk(fn func(*Component) bool) {
	if !fn(c) {
		return
	}
	for _, child := range c.Children {
		child.Walk(fn)
	}
}

// Property is a resolved design-time property value
type Property struct {
	Name       string      `json:"name"`
	Value      interface{} `json:"value"`
	EditorType string      `json:"editorType,omitempty"`
}

// Extension is a component type bundled inside an archive
type Extension struct {
	Type       string     `json:"type"`
	Descriptor Descriptor `json:"descriptor"`
}

// ShortName returns the last dot-separated segment of the extension type
func (e *Extension) ShortName() string {
	if i := strings.LastIndex(e.Type, "."); i >= 0 {
		return e.Type[i+1:]
	}
	return e.Type
}

// Diagnostic records a non-fatal problem found during ingestion
type Diagnostic struct {
	Stage   string `json:"stage"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}
