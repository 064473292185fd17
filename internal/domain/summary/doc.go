// Package summary computes project statistics: screen, block, asset and
// extension counts, the most used component types, built-in versus
// extension share and block usage by category.
//
// Block XML is queried with XPath through htmlquery. Summaries encode to
// JSON, YAML or TOML.
package summary
