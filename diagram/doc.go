// Package diagram coordinates one schema-relationship diagram instance.
//
// The Controller owns the pipeline from raw SDL text to rendered positions:
// it parses with the schema package, builds a node/edge model with the graph
// package, applies focus filtering through hop distances, and drives the
// layout engine. User interaction arrives as method calls (node click,
// canvas click, depth change, drag, improve, reset, search) and structural
// output leaves through the View accessor and the optional Callbacks.
//
// A parse failure never disturbs the last good diagram; the error is
// reported and the prior state keeps rendering. An empty view renders an
// explicit empty state and the simulation never runs over it.
//
// The controller is single-owner: one loop serializes all calls, ticks the
// simulation via Step between events, and tags emitted frames with the
// layout generation so stale frames can be discarded downstream.
package diagram
