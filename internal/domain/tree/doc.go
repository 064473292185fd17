// Package tree builds screen component trees from scheme files.
//
// A scheme file is a JSON document wrapped in fixed-length framing. Its
// "Properties" object is the screen's Form; nested components live in
// "$Components" arrays, each with "$Name", "$Type" and an optional "Uuid".
//
// Each component's type is matched against the archive's extensions
// first, then looked up in the built-in catalog under its namespace.
// Property resolution runs on a worker pool after the skeleton is built.
package tree
