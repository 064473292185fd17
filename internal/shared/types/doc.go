// Package types provides the project model shared by the ingestion pipeline.
//
// Core Types:
//   - Project: ingested archive (screens, extensions, assets, diagnostics)
//   - Screen: a screen's component tree and raw block program
//   - Component: a node of the component tree with resolved properties
//   - Property: a resolved design-time property value
//   - Extension: a bundled component type and its descriptor
//   - Descriptor: component schema (properties, events, methods)
//   - Asset: media file with a lazily published reference
//
// Invariants:
//   - Component properties follow descriptor declaration order
//   - Component.Faulty is monotonic
//   - Origin is EXTENSION only when an extension's short name equals the component type
//
// Example Usage:
//
//	project.Screens[0].Form.Walk(func(c *types.Component) bool {
//	    fmt.Println(c.Name, c.Type, c.Origin)
//	    return true
//	})
package types
