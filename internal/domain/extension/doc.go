// Package extension reads extension descriptors bundled in project
// archives (.aia) and standalone extension packages (.aix).
//
// An extension package folder holds files/component_build_info(s).json,
// which names the component types, next to component(s).json, which holds
// their descriptors. Build pairs them per folder; Match resolves a
// component's declared type to an extension by its short name.
package extension
