// Package schema parses GraphQL SDL text into validated type definitions,
// tolerating the vendor extensions that graph database backends attach.
//
// # Normalization
//
// Raw admin-endpoint SDL is rarely standard GraphQL. Dgraph-style schemas
// decorate types and fields with directives (@search, @hasInverse, @dgraph,
// @withSubscription, ...) whose argument shapes vary by backend version, and
// reference scalars (DateTime, Int64, Point, ...) that are never declared.
// Loading such text with a strict SDL validator fails on the first usage.
//
// Parse therefore normalizes before loading:
//
//  1. Directive usages are stripped textually. A string- and comment-aware
//     scanner removes @name(...) tokens while leaving directive definitions
//     intact, so user-defined "directive @x on OBJECT" still validates.
//  2. Placeholder scalar declarations are injected for every named type that
//     is referenced in field, argument, or directive-definition position but
//     declared nowhere. This covers vendor scalars and keeps a dangling
//     reference from failing the whole load; the graph builder later drops
//     the corresponding edge.
//
// Stripped directives are not lost: ExtractDirectives recovers them from the
// raw text for display.
//
// # Failure contract
//
// Only genuinely malformed SDL returns an error: unbalanced braces, illegal
// tokens, duplicate type names. Errors are classified invalid via the errors
// package, and callers keep their previous diagram state when one occurs.
package schema
