package archive

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	assetPattern     = "assets/*"
	schemePattern    = "**/*.scm"
	blocksPattern    = "**/*.bky"
	extensionPattern = "**/{component,components,component_build_info,component_build_infos}.json"
)

// Classified partitions container entries by role. Each list keeps
// container order.
type Classified struct {
	ExtensionJSON []Entry
	Schemes       []Entry
	Blocks        []Entry
	Assets        []Entry
	Other         []Entry
}

// Classify sorts entries into extension JSON, scheme, block and asset
// groups. Assets are direct children of assets/; deeper entries under
// assets/ are never assets. Directories are dropped.
func Classify(entries []Entry) Classified {
	var c Classified
	for _, e := range entries {
		if e.Dir {
			continue
		}
		switch {
		case match(assetPattern, e.Name):
			c.Assets = append(c.Assets, e)
		case match(schemePattern, e.Name):
			c.Schemes = append(c.Schemes, e)
		case match(blocksPattern, e.Name):
			c.Blocks = append(c.Blocks, e)
		case match(extensionPattern, e.Name):
			c.ExtensionJSON = append(c.ExtensionJSON, e)
		default:
			c.Other = append(c.Other, e)
		}
	}
	return c
}

func match(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

// EntryStem returns the last path segment of name up to its first dot.
func EntryStem(name string) string {
	base := path.Base(name)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

// PackageFolder returns the extension package folder an extension JSON
// entry belongs to. Build infos live under <pkg>/files/, descriptors
// directly under <pkg>/.
func PackageFolder(name string) string {
	dir := path.Dir(name)
	if path.Base(dir) == "files" {
		dir = path.Dir(dir)
	}
	return path.Base(dir)
}
