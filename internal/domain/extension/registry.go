package extension

import (
	"context"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/unchive/internal/domain/archive"
	"github.com/GriffinCanCode/unchive/internal/shared/types"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

const stage = "extensions"

// Registry holds the extensions bundled in one archive.
type Registry struct {
	extensions  []*types.Extension
	diagnostics []types.Diagnostic
}

// Extensions returns the registered extensions in discovery order
func (r *Registry) Extensions() []*types.Extension {
	if r == nil {
		return nil
	}
	return append([]*types.Extension(nil), r.extensions...)
}

// Diagnostics returns problems found while building the registry
func (r *Registry) Diagnostics() []types.Diagnostic {
	if r == nil {
		return nil
	}
	return append([]types.Diagnostic(nil), r.diagnostics...)
}

// Len returns the number of extensions
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.extensions)
}

// Match returns the first extension whose short type name equals declared.
// The comparison is case-sensitive.
func (r *Registry) Match(declared string) (*types.Extension, bool) {
	if r == nil {
		return nil, false
	}
	for _, ext := range r.extensions {
		if ext.ShortName() == declared {
			return ext, true
		}
	}
	return nil, false
}

func (r *Registry) diagnose(subject, format string, args ...interface{}) {
	r.diagnostics = append(r.diagnostics, types.Diagnostic{
		Stage:   stage,
		Subject: subject,
		Message: fmt.Sprintf(format, args...),
	})
}

type folderJSON struct {
	folder string
	entry  string
	value  interface{}
}

// Build parses extension JSON entries read from a.
//
// Entries named component_build_info(s).json carry the extension type;
// entries named component(s).json carry the descriptor. Both are grouped
// by package folder and paired. When pairing yields nothing, every
// descriptor becomes an extension on its own. Unreadable or malformed
// entries are skipped with a diagnostic. Only context cancellation fails.
func Build(ctx context.Context, a archive.Archive, entries []archive.Entry, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{}

	var infos, descriptors []folderJSON
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := archive.ReadText(a, e.Name)
		if err != nil {
			r.diagnose(e.Name, "read failed: %v", err)
			logger.Warn("Extension entry unreadable", zap.String("entry", e.Name), zap.Error(err))
			continue
		}

		var value interface{}
		if err := sonic.UnmarshalString(text, &value); err != nil {
			r.diagnose(e.Name, "invalid JSON: %v", err)
			logger.Warn("Extension entry is not valid JSON", zap.String("entry", e.Name), zap.Error(err))
			continue
		}

		item := folderJSON{folder: archive.PackageFolder(e.Name), entry: e.Name, value: value}
		switch archive.EntryStem(e.Name) {
		case "component_build_info", "component_build_infos":
			infos = append(infos, item)
		case "component", "components":
			descriptors = append(descriptors, item)
		}
	}

	for _, info := range infos {
		r.pair(info, descriptors)
	}

	if len(r.extensions) == 0 && len(descriptors) > 0 {
		for _, d := range descriptors {
			r.fallback(d)
		}
	}

	r.checkAmbiguity()

	logger.Debug("Extension registry built",
		zap.Int("entries", len(entries)),
		zap.Int("extensions", len(r.extensions)),
		zap.Int("diagnostics", len(r.diagnostics)))
	return r, nil
}

func (r *Registry) pair(info folderJSON, descriptors []folderJSON) {
	var desc *folderJSON
	for i := range descriptors {
		if descriptors[i].folder == info.folder {
			desc = &descriptors[i]
			break
		}
	}
	if desc == nil {
		r.diagnose(info.entry, "no descriptor found in package %q", info.folder)
		return
	}

	if items, ok := info.value.([]interface{}); ok {
		for i, item := range items {
			r.add(info.entry, buildInfoType(item), descriptorAt(desc.value, i))
		}
		return
	}
	r.add(info.entry, buildInfoType(info.value), descriptorAt(desc.value, 0))
}

func (r *Registry) fallback(d folderJSON) {
	items, ok := d.value.([]interface{})
	if !ok {
		items = []interface{}{d.value}
	}
	for _, item := range items {
		desc := types.AsDescriptor(item)
		typ := "Extension"
		if desc != nil {
			if t := desc.Type(); t != "" {
				typ = t
			} else if n := desc.Name(); n != "" {
				typ = n
			}
		}
		r.add(d.entry, typ, item)
	}
}

func (r *Registry) add(entry, typ string, payload interface{}) {
	if typ == "" {
		r.diagnose(entry, "build info has no type")
		return
	}
	desc := types.AsDescriptor(payload)
	if desc == nil {
		r.diagnose(typ, "no descriptor object for extension")
	}
	r.extensions = append(r.extensions, &types.Extension{Type: typ, Descriptor: desc})
}

func (r *Registry) checkAmbiguity() {
	seen := make(map[string]string, len(r.extensions))
	for _, ext := range r.extensions {
		short := ext.ShortName()
		if first, ok := seen[short]; ok {
			r.diagnose(ext.Type, "short name %q already provided by %s; first match wins", short, first)
			continue
		}
		seen[short] = ext.Type
	}
}

func buildInfoType(v interface{}) string {
	m, ok := v.(map[string]interface{})
	if !ok {
		return ""
	}
	s, _ := m["type"].(string)
	return strings.TrimSpace(s)
}

// descriptorAt picks the i-th descriptor of an array, or the value itself
// when it is a single object.
func descriptorAt(v interface{}, i int) interface{} {
	items, ok := v.([]interface{})
	if !ok {
		return v
	}
	if i < len(items) {
		return items[i]
	}
	return nil
}
