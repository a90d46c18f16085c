package schema

var declKeywords = map[string]bool{
	"type":      true,
	"interface": true,
	"enum":      true,
	"union":     true,
	"input":     true,
	"scalar":    true,
}

// Keywords that open a new top-level declaration and therefore terminate the
// span of a braceless declaration such as "union U = A | B".
var topLevelKeywords = map[string]bool{
	"type":      true,
	"interface": true,
	"enum":      true,
	"union":     true,
	"input":     true,
	"scalar":    true,
	"directive": true,
	"schema":    true,
	"extend":    true,
}

// ExtractDirectives returns the directive usages appearing within the named
// type's declaration block in raw SDL text, in order of appearance with
// duplicates collapsed. Parsing strips directive usages from the loaded
// schema, so this is how display surfaces recover them.
func ExtractDirectives(typeName, rawText string) []string {
	start, end := declSpan(typeName, rawText)
	if start < 0 {
		return nil
	}
	return scanDirectiveTokens(rawText[start:end])
}

// declSpan locates the declaration span of typeName: from its declaration
// keyword through the matching close brace of its body, or up to the next
// top-level declaration when the type has no body. Returns (-1, -1) when the
// type is not declared in the text.
func declSpan(typeName, raw string) (int, int) {
	start, afterName := findDeclStart(typeName, raw)
	if start < 0 {
		return -1, -1
	}
	return start, findDeclEnd(raw, afterName)
}

// findDeclStart scans for "<keyword> <typeName>" at the top level, outside
// strings, comments, bodies, and argument lists. It returns the keyword's
// position and the index just past the name. Depth tracking keeps a field
// named "type" or a @dgraph(type: ...) argument from producing a false match.
func findDeclStart(typeName, raw string) (int, int) {
	n := len(raw)
	lastWord := ""
	lastWordPos := -1
	braces := 0
	parens := 0

	i := 0
	for i < n {
		c := raw[i]
		switch {
		case c == '#':
			i = skipLineComment(raw, i)
		case c == '"':
			i = skipString(raw, i)
		case c == '(':
			parens++
			i++
		case c == ')':
			if parens > 0 {
				parens--
			}
			i++
		case c == '{':
			braces++
			i++
		case c == '}':
			if braces > 0 {
				braces--
			}
			i++
		case isIdentStart(c):
			j := i + 1
			for j < n && isIdentPart(raw[j]) {
				j++
			}
			word := raw[i:j]
			if braces == 0 && parens == 0 && word == typeName && declKeywords[lastWord] {
				return lastWordPos, j
			}
			lastWord = word
			lastWordPos = i
			i = j
		default:
			i++
		}
	}
	return -1, -1
}

// findDeclEnd walks forward from a declaration's name to the end of its span:
// the matching close brace of its body, the next top-level keyword for
// braceless declarations, or end of input. Directive arguments are tracked by
// paren depth so that @dgraph(type: "User") contributes neither a keyword nor
// a brace to the walk.
func findDeclEnd(raw string, i int) int {
	n := len(raw)
	braces := 0
	parens := 0
	for i < n {
		c := raw[i]
		switch {
		case c == '#':
			i = skipLineComment(raw, i)
		case c == '"':
			i = skipString(raw, i)
		case c == '(':
			parens++
			i++
		case c == ')':
			if parens > 0 {
				parens--
			}
			i++
		case c == '{':
			if parens == 0 {
				braces++
			}
			i++
		case c == '}':
			if parens == 0 {
				braces--
				if braces == 0 {
					return i + 1
				}
			}
			i++
		case isIdentStart(c):
			j := i + 1
			for j < n && isIdentPart(raw[j]) {
				j++
			}
			if braces == 0 && parens == 0 && topLevelKeywords[raw[i:j]] {
				return i
			}
			i = j
		default:
			i++
		}
	}
	return n
}

// scanDirectiveTokens collects @name(...) usages from an SDL snippet, skipping
// strings, comments, and directive definitions.
func scanDirectiveTokens(snippet string) []string {
	var found []string
	seen := make(map[string]bool)

	lastWord := ""
	i := 0
	n := len(snippet)
	for i < n {
		c := snippet[i]
		switch {
		case c == '#':
			i = skipLineComment(snippet, i)
		case c == '"':
			i = skipString(snippet, i)
		case isIdentStart(c):
			j := i + 1
			for j < n && isIdentPart(snippet[j]) {
				j++
			}
			lastWord = snippet[i:j]
			i = j
		case c == '@':
			if lastWord == "directive" {
				i++
				continue
			}
			j, ok := skipDirectiveToken(snippet, i)
			if !ok {
				i++
				continue
			}
			token := snippet[i:j]
			if !seen[token] {
				seen[token] = true
				found = append(found, token)
			}
			i = j
			lastWord = ""
		default:
			i++
		}
	}
	return found
}
