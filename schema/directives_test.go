package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const directiveSDL = `
type Person @dgraph(type: "PersonEntity") @withSubscription {
	id: ID! @id
	name: String! @search(by: [hash, term])
	born: DateTime @search
	pin: ID @id
}

type Post @generate {
	title: String! @search(by: [fulltext])
}

union Feed @remote = Person | Post

scalar Tag

type Untouched {
	plain: String
}
`

func TestExtractDirectives_TypeAndFieldLevel(t *testing.T) {
	got := ExtractDirectives("Person", directiveSDL)

	assert.Equal(t, []string{
		`@dgraph(type: "PersonEntity")`,
		"@withSubscription",
		"@id",
		"@search(by: [hash, term])",
		"@search",
	}, got)
}

func TestExtractDirectives_DoesNotLeakAcrossTypes(t *testing.T) {
	got := ExtractDirectives("Person", directiveSDL)
	assert.NotContains(t, got, "@generate")
	assert.NotContains(t, got, "@search(by: [fulltext])")

	post := ExtractDirectives("Post", directiveSDL)
	assert.Equal(t, []string{"@generate", "@search(by: [fulltext])"}, post)
}

func TestExtractDirectives_BracelessDeclaration(t *testing.T) {
	got := ExtractDirectives("Feed", directiveSDL)
	assert.Equal(t, []string{"@remote"}, got)
}

func TestExtractDirectives_NoDirectives(t *testing.T) {
	assert.Nil(t, ExtractDirectives("Untouched", directiveSDL))
	assert.Nil(t, ExtractDirectives("Tag", directiveSDL))
}

func TestExtractDirectives_UnknownType(t *testing.T) {
	assert.Nil(t, ExtractDirectives("Nope", directiveSDL))
}

func TestExtractDirectives_DuplicatesCollapse(t *testing.T) {
	// @id appears on two fields of Person but is reported once.
	got := ExtractDirectives("Person", directiveSDL)
	count := 0
	for _, d := range got {
		if d == "@id" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestDeclSpan_KeywordInsideArgumentsIgnored(t *testing.T) {
	// The word "type" inside @dgraph arguments must not terminate the span
	// or anchor a false declaration match.
	sdl := `type Person @dgraph(type: "User") {
	name: String @search
}
type User {
	handle: String @id
}`

	person := ExtractDirectives("Person", sdl)
	assert.Contains(t, person, `@dgraph(type: "User")`)
	assert.Contains(t, person, "@search")
	assert.NotContains(t, person, "@id")

	user := ExtractDirectives("User", sdl)
	assert.Equal(t, []string{"@id"}, user)
}

func TestDeclSpan_FieldNamedType(t *testing.T) {
	// A field named "type" must not anchor a declaration match for its own
	// field type.
	sdl := `type Foo {
	type: Bar @search
}
type Bar {
	x: String @id
}`

	got := ExtractDirectives("Bar", sdl)
	assert.Equal(t, []string{"@id"}, got)
}
