// Package catalog holds the built-in component descriptor table.
//
// The table is fetched lazily through a Fetcher and memoized; concurrent
// first callers share one fetch via singleflight. Built-in types are keyed
// by their fully-qualified name, namespace plus short type:
//
//	cat := catalog.New(catalog.FileFetcher("simple_components.json"), "")
//	d, ok, err := cat.Lookup(ctx, "Button")
package catalog
