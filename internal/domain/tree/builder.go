package tree

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/unchive/internal/domain/property"
	"github.com/GriffinCanCode/unchive/internal/shared/errs"
	"github.com/GriffinCanCode/unchive/internal/shared/types"
	"go.uber.org/zap"
)

const stage = "components"

// DescriptorSource finds built-in descriptors by short type name
type DescriptorSource interface {
	Lookup(ctx context.Context, short string) (types.Descriptor, bool, error)
}

// ExtensionMatcher resolves a declared type to a bundled extension
type ExtensionMatcher interface {
	Match(declared string) (*types.Extension, bool)
}

// Builder turns scheme payloads into component trees.
type Builder struct {
	catalog  DescriptorSource
	resolver *property.Resolver
	framing  Framing
	logger   *zap.Logger
}

// NewBuilder creates a builder
func NewBuilder(catalog DescriptorSource, resolver *property.Resolver, framing Framing, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver == nil {
		resolver = property.NewResolver(nil, logger)
	}
	return &Builder{catalog: catalog, resolver: resolver, framing: framing, logger: logger}
}

// BuildScreen parses a scheme payload and builds the screen's tree.
func (b *Builder) BuildScreen(ctx context.Context, scheme, blocks, name string, exts ExtensionMatcher) (*types.Screen, []types.Diagnostic, error) {
	if name == "" {
		return nil, nil, errs.Validation("build screen", "", "screen name is empty")
	}

	root, err := ParseScheme(scheme, b.framing)
	if err != nil {
		var e *errs.Error
		if errors.As(err, &e) {
			e.Path = name
		}
		return nil, nil, err
	}

	form, diags, err := b.Build(ctx, name, root, exts)
	if err != nil {
		return nil, nil, err
	}
	return &types.Screen{Name: name, Form: form, Blocks: blocks}, diags, nil
}

// skeleton is the first build phase: nodes with origin and descriptor
// settled, properties still pending.
type skeleton struct {
	screen string
	exts   ExtensionMatcher
	uids   map[string]string
	nodes  []*types.Component
	tasks  []property.Task
	diags  []types.Diagnostic
}

// Build constructs the component tree rooted at root in two phases. The
// skeleton is built synchronously; property resolution is then fanned out
// over the resolver and merged back. A component that cannot be resolved
// is marked faulty without affecting the rest of the tree. Only catalog
// failures and scheduling failures abort the build.
func (b *Builder) Build(ctx context.Context, screen string, root map[string]interface{}, exts ExtensionMatcher) (*types.Component, []types.Diagnostic, error) {
	if root == nil {
		return nil, nil, errs.Validation("build tree", screen, "missing root component")
	}

	s := &skeleton{screen: screen, exts: exts, uids: make(map[string]string)}
	form, err := b.node(ctx, s, root)
	if err != nil {
		return nil, nil, err
	}

	results, err := b.resolver.ResolveAll(ctx, s.tasks)
	if err != nil {
		return nil, nil, err
	}
	for i, res := range results {
		node := s.nodes[i]
		if res.Err != nil {
			node.MarkFaulty()
			s.diagnose(node.Name, res.Err.Error())
			b.logger.Warn("Component unresolved",
				zap.String("screen", screen),
				zap.String("component", node.Name),
				zap.String("type", node.Type))
			continue
		}
		node.Properties = res.Properties
	}

	return form, s.diags, nil
}

func (b *Builder) node(ctx context.Context, s *skeleton, raw map[string]interface{}) (*types.Component, error) {
	name, _ := raw["$Name"].(string)
	typ, _ := raw["$Type"].(string)
	uid := raw["Uuid"]

	desc, origin, err := b.describe(ctx, s.exts, typ)
	if err != nil {
		return nil, err
	}
	node := types.NewComponent(name, typ, uid, origin)

	if b.duplicateUID(s, node, uid) {
		node.MarkFaulty()
	} else {
		s.nodes = append(s.nodes, node)
		s.tasks = append(s.tasks, property.Task{
			Component:  name,
			Raw:        authored(raw),
			Descriptor: desc,
		})
	}

	children, _ := raw["$Components"].([]interface{})
	for i, c := range children {
		child, ok := c.(map[string]interface{})
		if !ok {
			s.diagnose(name, fmt.Sprintf("child %d is not a component object", i))
			continue
		}
		n, err := b.node(ctx, s, child)
		if err != nil {
			return nil, err
		}
		node.AddChild(n)
	}
	return node, nil
}

// describe settles a type's origin and descriptor. Extensions take
// precedence over the built-in catalog.
func (b *Builder) describe(ctx context.Context, exts ExtensionMatcher, typ string) (types.Descriptor, types.Origin, error) {
	if exts != nil {
		if ext, ok := exts.Match(typ); ok {
			return ext.Descriptor, types.OriginExtension, nil
		}
	}
	if b.catalog == nil || typ == "" {
		return nil, types.OriginBuiltIn, nil
	}

	desc, ok, err := b.catalog.Lookup(ctx, typ)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, types.OriginBuiltIn, nil
	}
	return desc, types.OriginBuiltIn, nil
}

func (b *Builder) duplicateUID(s *skeleton, node *types.Component, uid interface{}) bool {
	if types.BlankUID(uid) {
		return false
	}
	key := fmt.Sprint(uid)
	if first, ok := s.uids[key]; ok {
		s.diagnose(node.Name, fmt.Sprintf("uid %s already used by %s", key, first))
		b.logger.Warn("Duplicate component uid",
			zap.String("screen", s.screen),
			zap.String("component", node.Name),
			zap.String("uid", key))
		return true
	}
	s.uids[key] = node.Name
	return false
}

func (s *skeleton) diagnose(component, msg string) {
	s.diags = append(s.diags, types.Diagnostic{
		Stage:   stage,
		Subject: s.screen + "/" + component,
		Message: msg,
	})
}

// authored returns the designer-set property values of a raw component,
// leaving out structural "$" keys and the uid.
func authored(raw map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if strings.HasPrefix(k, "$") || k == "Uuid" {
			continue
		}
		out[k] = v
	}
	return out
}
