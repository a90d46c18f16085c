package schema

import (
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// Scalar names every GraphQL implementation provides.
var builtinScalars = map[string]bool{
	"String":  true,
	"Int":     true,
	"Float":   true,
	"Boolean": true,
	"ID":      true,
}

// Scalar names Dgraph and similar backends provide without declaring.
var vendorScalars = map[string]bool{
	"DateTime":     true,
	"Int64":        true,
	"Float64":      true,
	"Point":        true,
	"Polygon":      true,
	"MultiPolygon": true,
}

// IsBuiltinScalar reports whether name is one of the five standard scalars.
func IsBuiltinScalar(name string) bool {
	return builtinScalars[name]
}

// IsVendorScalar reports whether name is a known vendor scalar. Callers use
// this to tell an expected placeholder (DateTime) from a genuinely dangling
// type reference when deciding what to log.
func IsVendorScalar(name string) bool {
	return vendorScalars[name]
}

// stripDirectiveUsages removes @name(...) usages from SDL text while leaving
// directive definitions, strings, and comments untouched. Removed tokens are
// replaced by a single space so surrounding tokens never glue together.
func stripDirectiveUsages(input string) string {
	var out strings.Builder
	out.Grow(len(input))

	lastWord := ""
	i := 0
	n := len(input)
	for i < n {
		c := input[i]
		switch {
		case c == '#':
			j := skipLineComment(input, i)
			out.WriteString(input[i:j])
			i = j
		case c == '"':
			j := skipString(input, i)
			out.WriteString(input[i:j])
			i = j
		case isIdentStart(c):
			j := i + 1
			for j < n && isIdentPart(input[j]) {
				j++
			}
			lastWord = input[i:j]
			out.WriteString(input[i:j])
			i = j
		case c == '@':
			// A directive definition's own "@name(args)" must survive, or
			// "directive @x on OBJECT" would lose its name.
			if lastWord == "directive" {
				out.WriteByte(c)
				i++
				continue
			}
			j, ok := skipDirectiveToken(input, i)
			if !ok {
				// Naked or unterminated "@": keep it and let the parser
				// report the malformed SDL.
				out.WriteByte(c)
				i++
				continue
			}
			out.WriteByte(' ')
			i = j
			lastWord = ""
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// skipDirectiveToken consumes "@name" plus an optional balanced argument list
// starting at input[i] == '@'. It returns the index just past the token and
// false when no identifier follows the marker or the argument list never
// closes.
func skipDirectiveToken(input string, i int) (int, bool) {
	n := len(input)
	j := i + 1
	if j >= n || !isIdentStart(input[j]) {
		return i, false
	}
	for j < n && isIdentPart(input[j]) {
		j++
	}

	// Arguments may be separated from the name by whitespace.
	k := j
	for k < n && (input[k] == ' ' || input[k] == '\t') {
		k++
	}
	if k >= n || input[k] != '(' {
		return j, true
	}

	depth := 0
	for k < n {
		switch input[k] {
		case '(':
			depth++
			k++
		case ')':
			depth--
			k++
			if depth == 0 {
				return k, true
			}
		case '"':
			k = skipString(input, k)
		case '#':
			k = skipLineComment(input, k)
		default:
			k++
		}
	}
	return i, false
}

// collectMissingTypeRefs gathers named types used in field, argument, and
// directive-definition positions that no definition in the document declares.
// The result is sorted so injection order is deterministic.
func collectMissingTypeRefs(doc *ast.SchemaDocument) []string {
	declared := make(map[string]bool)
	for _, def := range doc.Definitions {
		declared[def.Name] = true
	}
	for _, def := range doc.Extensions {
		declared[def.Name] = true
	}

	referenced := make(map[string]bool)
	addType := func(t *ast.Type) {
		if name := BaseTypeName(t); name != "" {
			referenced[name] = true
		}
	}
	collectDef := func(def *ast.Definition) {
		for _, field := range def.Fields {
			addType(field.Type)
			for _, arg := range field.Arguments {
				addType(arg.Type)
			}
		}
	}
	for _, def := range doc.Definitions {
		collectDef(def)
	}
	for _, def := range doc.Extensions {
		collectDef(def)
	}
	for _, dir := range doc.Directives {
		for _, arg := range dir.Arguments {
			addType(arg.Type)
		}
	}

	var missing []string
	for name := range referenced {
		if declared[name] || builtinScalars[name] || strings.HasPrefix(name, "__") {
			continue
		}
		missing = append(missing, name)
	}
	sort.Strings(missing)
	return missing
}

func skipLineComment(input string, i int) int {
	for i < len(input) && input[i] != '\n' {
		i++
	}
	return i
}

// skipString consumes a quoted string starting at input[i] == '"', handling
// both regular and triple-quoted block strings. Unterminated strings consume
// to end of input; the parser reports those.
func skipString(input string, i int) int {
	n := len(input)
	if i+2 < n && input[i+1] == '"' && input[i+2] == '"' {
		j := i + 3
		for j < n {
			if input[j] == '\\' && j+3 < n && input[j+1] == '"' && input[j+2] == '"' && input[j+3] == '"' {
				j += 4
				continue
			}
			if input[j] == '"' && j+2 < n && input[j+1] == '"' && input[j+2] == '"' {
				return j + 3
			}
			j++
		}
		return n
	}

	j := i + 1
	for j < n {
		switch input[j] {
		case '\\':
			j += 2
		case '"':
			return j + 1
		case '\n':
			// Line strings cannot span lines; stop so the parser sees it.
			return j
		default:
			j++
		}
	}
	return n
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
