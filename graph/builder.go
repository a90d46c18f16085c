package graph

import (
	"log/slog"
	"sort"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/c360/schemascope/schema"
)

// BuildOptions controls which declarations become nodes.
type BuildOptions struct {
	// IncludeScalars retains user-declared scalar types as nodes. Built-in
	// scalars and injected placeholders are always excluded.
	IncludeScalars bool

	// Logger receives drop notices for unresolved references. Nil uses
	// slog.Default().
	Logger *slog.Logger
}

// Build converts a parsed schema into a Model. Node construction runs before
// edge construction so every edge endpoint check sees the full node set, and
// both passes walk type names in sorted order so identical input yields an
// identical model.
func Build(parsed *schema.Parsed, opts BuildOptions) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	names := make([]string, 0, len(parsed.Types))
	for name := range parsed.Types {
		names = append(names, name)
	}
	sort.Strings(names)

	m := NewModel()
	for _, name := range names {
		def := parsed.Types[name]
		if !retain(def, opts) {
			continue
		}
		m.AddNode(buildNode(name, def, parsed.Raw))
	}

	for _, name := range names {
		def := parsed.Types[name]
		if !m.HasNode(name) {
			continue
		}
		addEdges(m, name, def, parsed, logger)
	}
	return m
}

// retain decides whether a declaration becomes a node. Introspection types,
// built-in scalars, and injected placeholders never do; user scalars only on
// request.
func retain(def *ast.Definition, opts BuildOptions) bool {
	if len(def.Name) >= 2 && def.Name[:2] == "__" {
		return false
	}
	if schema.IsBuiltinScalar(def.Name) {
		return false
	}
	if def.Kind == ast.Scalar && !opts.IncludeScalars {
		return false
	}
	return true
}

func buildNode(name string, def *ast.Definition, raw string) *TypeNode {
	node := &TypeNode{
		ID:         name,
		Kind:       kindOf(def.Kind),
		Directives: schema.ExtractDirectives(name, raw),
	}
	for _, f := range def.Fields {
		if len(f.Name) >= 2 && f.Name[:2] == "__" {
			continue
		}
		node.Fields = append(node.Fields, Field{Name: f.Name, TypeString: f.Type.String()})
	}
	node.PossibleTypes = append(node.PossibleTypes, def.Types...)
	for _, ev := range def.EnumValues {
		node.EnumValues = append(node.EnumValues, ev.Name)
	}
	return node
}

// addEdges emits one edge per field whose base type resolved to a retained
// node, plus membership edges from a union to each member. References to
// anything absent from the node set are dropped; only drops that are not
// scalar-shaped get logged, since scalar targets are excluded by design
// rather than dangling.
func addEdges(m *Model, name string, def *ast.Definition, parsed *schema.Parsed, logger *slog.Logger) {
	for _, f := range def.Fields {
		base := schema.BaseTypeName(f.Type)
		if base == "" {
			continue
		}
		if m.AddEdge(name, base, f.Name) {
			continue
		}
		if dangling(base, parsed) {
			logger.Debug("dropping edge to unresolved type",
				"source", name,
				"field", f.Name,
				"target", base)
		}
	}
	if def.Kind == ast.Union {
		for _, member := range def.Types {
			if m.AddEdge(name, member, member) {
				continue
			}
			if dangling(member, parsed) {
				logger.Debug("dropping union member edge to unresolved type",
					"union", name,
					"target", member)
			}
		}
	}
}

// dangling reports whether a dropped reference points at something genuinely
// undeclared, as opposed to a scalar or introspection type excluded on
// purpose.
func dangling(target string, parsed *schema.Parsed) bool {
	if schema.IsBuiltinScalar(target) || schema.IsVendorScalar(target) {
		return false
	}
	if len(target) >= 2 && target[:2] == "__" {
		return false
	}
	if def, ok := parsed.Types[target]; ok {
		return def.Kind != ast.Scalar
	}
	return true
}

func kindOf(k ast.DefinitionKind) TypeKind {
	switch k {
	case ast.Object:
		return KindObject
	case ast.Interface:
		return KindInterface
	case ast.Enum:
		return KindEnum
	case ast.InputObject:
		return KindInput
	case ast.Union:
		return KindUnion
	case ast.Scalar:
		return KindScalar
	default:
		return KindObject
	}
}
