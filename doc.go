// Package schemascope turns GraphQL schemas into live relationship
// diagrams.
//
// # Architecture
//
// SchemaScope is a pipeline from schema text to rendered frames:
//
//	┌──────────┐    ┌─────────┐    ┌──────────┐    ┌──────────┐
//	│  schema  │───►│  graph  │───►│  layout  │───►│ diagram  │
//	│ (parse)  │    │ (build) │    │ (forces) │    │ (frames) │
//	└──────────┘    └─────────┘    └──────────┘    └────┬─────┘
//	     ▲                                              │
//	┌────┴─────┐                                   ┌────▼─────┐
//	│  source  │                                   │ gateway  │
//	│ (fetch)  │                                   │   (ws)   │
//	└──────────┘                                   └──────────┘
//
//   - schema: parses SDL into a typed definition set, tolerating the
//     vendor directives that federation gateways and code generators
//     attach.
//   - graph: builds the relationship graph (types as nodes, field and
//     interface references as edges) and the distance index behind
//     focus neighborhoods.
//   - layout: force-directed simulation that positions nodes, ticking
//     until the system cools.
//   - diagram: per-session controller holding focus, depth, and filter
//     state, translating graph plus layout into frames.
//   - gateway: the WebSocket surface. Accepts sessions, decodes client
//     events, streams frames.
//   - source: where schemas come from. HTTP endpoints and files, with
//     optional polling for live reload.
//
// Supporting packages follow the same conventions throughout:
//
//   - config: layered JSON configuration with SCHEMASCOPE_* environment
//     overrides.
//   - errors: classified errors (transient, fatal, invalid) that drive
//     retry and health decisions.
//   - health: component status aggregation for readiness reporting.
//   - metric: Prometheus registration and the operational endpoint.
//   - service: lifecycle management for long-running components.
//
// # Usage
//
// Most deployments run the schemascope binary (cmd/schemascope), which
// assembles these packages from configuration:
//
//	# Serve diagrams for a schema file, reloading on change
//	schemascope -schema-file api.graphql
//
//	# Poll a running GraphQL endpoint
//	SCHEMASCOPE_SOURCE_URL=https://api.example.com/graphql schemascope
//
// The packages are also usable directly; see gateway.NewServer for
// embedding the diagram server in another process.
package schemascope
