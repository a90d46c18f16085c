// Package graph turns a parsed schema into the node/edge model the layout
// and diagram packages operate on.
//
// Build walks declarations in sorted name order and retains object,
// interface, enum, input, and union types as nodes; introspection types,
// built-in scalars, and injected placeholders are excluded, and user scalars
// only appear when BuildOptions.IncludeScalars is set. Each field contributes
// one labelled edge to the node its base type resolves to, with List and
// NonNull wrappers unwrapped first. Union declarations additionally link to
// every member. References that resolve to nothing are dropped, never
// materialized as half-edges; genuinely dangling targets are logged at debug
// level while scalar-shaped targets are skipped silently.
//
// Distances runs an undirected breadth-first traversal from a focal node and
// FilterByDepth cuts the model down to a neighborhood around it. Both feed
// the depth-scoped views the diagram controller presents.
package graph
