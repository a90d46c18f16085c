// Package gateway serves interactive schema diagrams to browser
// front-ends.
//
// Each WebSocket connection to /ws/diagram becomes an isolated Session
// with its own diagram controller and layout simulation. One goroutine
// per session owns the controller and serializes everything that
// touches it: client events, schema updates, and frame ticks. A second
// goroutine per session pumps reads off the connection, rate-limits
// them, and forwards parsed events to the loop.
//
// # Wire protocol
//
// Clients send ClientEvent envelopes (load_schema, node_click,
// canvas_click, set_depth, drag_start, drag_move, drag_end,
// improve_layout, reset_layout, search). The server answers with typed
// messages: rendered after every structural refresh, frame per
// simulation tick while the layout is active, selected on focus,
// search_results, error, and empty. Frames carry a generation counter
// so clients can discard stragglers from a superseded layout run.
//
// # HTTP surface
//
// POST /api/v1/schema validates a schema document statelessly and
// returns the node and edge counts it would produce. GET /healthz and
// GET /readyz report service health, aggregated across the whole
// process when the server is constructed with WithManager.
//
// The server also fans schema updates out to live sessions via
// UpdateSchema, which the source poller drives; a session that lags
// only ever sees the newest pending document.
package gateway
