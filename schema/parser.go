package schema

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/c360/schemascope/errors"
)

const (
	sourceName  = "schema.graphql"
	preludeName = "schemascope-prelude.graphql"
)

// Parsed contains a normalized, validated schema ready for graph building.
type Parsed struct {
	// Schema is the full validated schema including built-in types.
	Schema *ast.Schema
	// Types holds the user-defined type definitions, with built-ins and
	// normalization placeholders filtered out.
	Types map[string]*ast.Definition
	// Raw is the original source text, kept for directive extraction.
	Raw string

	injected map[string]bool
}

// Injected reports whether name was added as a placeholder scalar during
// normalization rather than declared in the source text.
func (p *Parsed) Injected(name string) bool {
	return p.injected[name]
}

// Parse normalizes and parses raw SDL text.
//
// Vendor SDL dialects attach directives like @search(by: [hash]) or
// @hasInverse(field: posts) whose argument shapes no standard declaration can
// type-check, and reference scalars like DateTime that are never declared.
// Normalization strips directive usages textually (they stay recoverable from
// the raw text via ExtractDirectives) and injects placeholder scalar
// declarations for referenced-but-undeclared names, so that syntactically
// valid vendor SDL always loads. Only genuinely malformed SDL, such as
// unbalanced braces or illegal tokens, returns an error.
func Parse(text string) (*Parsed, error) {
	stripped := stripDirectiveUsages(text)

	// Syntax-only pass. Malformed SDL fails here, before any injection can
	// mask the real error.
	doc, err := parser.ParseSchema(&ast.Source{Name: sourceName, Input: stripped})
	if err != nil {
		return nil, errors.WrapInvalid(err, "SchemaParser", "Parse", "parse SDL syntax")
	}

	missing := collectMissingTypeRefs(doc)

	sources := make([]*ast.Source, 0, 2)
	if len(missing) > 0 {
		var prelude strings.Builder
		for _, name := range missing {
			fmt.Fprintf(&prelude, "scalar %s\n", name)
		}
		sources = append(sources, &ast.Source{Name: preludeName, Input: prelude.String(), BuiltIn: true})
	}
	sources = append(sources, &ast.Source{Name: sourceName, Input: stripped})

	loaded, err := gqlparser.LoadSchema(sources...)
	if err != nil {
		return nil, errors.WrapInvalid(err, "SchemaParser", "Parse", "load schema")
	}

	injected := make(map[string]bool, len(missing))
	for _, name := range missing {
		injected[name] = true
	}

	types := make(map[string]*ast.Definition)
	for name, typeDef := range loaded.Types {
		if typeDef.BuiltIn || injected[name] {
			continue
		}
		types[name] = typeDef
	}

	return &Parsed{
		Schema:   loaded,
		Types:    types,
		Raw:      text,
		injected: injected,
	}, nil
}

// BaseTypeName returns the named type at the bottom of a field type,
// unwrapping list and non-null wrappers.
func BaseTypeName(t *ast.Type) string {
	if t == nil {
		return ""
	}
	if t.Elem != nil {
		return BaseTypeName(t.Elem)
	}
	return t.NamedType
}
