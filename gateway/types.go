package gateway

import (
	"fmt"
	"strings"

	"github.com/c360/schemascope/errors"
	"github.com/c360/schemascope/graph"
	"github.com/c360/schemascope/layout"
)

// Client event types. Each WebSocket text message from the browser is a
// ClientEvent envelope carrying one of these in its Type field.
const (
	EventLoadSchema    = "load_schema"
	EventNodeClick     = "node_click"
	EventCanvasClick   = "canvas_click"
	EventSetDepth      = "set_depth"
	EventDragStart     = "drag_start"
	EventDragMove      = "drag_move"
	EventDragEnd       = "drag_end"
	EventImproveLayout = "improve_layout"
	EventResetLayout   = "reset_layout"
	EventSearch        = "search"
)

// Server message types.
const (
	MessageFrame         = "frame"
	MessageRendered      = "rendered"
	MessageSelected      = "selected"
	MessageError         = "error"
	MessageEmpty         = "empty"
	MessageSearchResults = "search_results"
)

// ClientEvent is the envelope for messages from the browser. Fields
// beyond Type are populated per event type: Schema for load_schema,
// Node for node_click and the drag events, Depth for set_depth, X/Y
// for drag coordinates, Term for search.
type ClientEvent struct {
	Type   string  `json:"type"`
	Schema string  `json:"schema,omitempty"`
	Node   string  `json:"node,omitempty"`
	Depth  int     `json:"depth,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Term   string  `json:"term,omitempty"`
}

// Validate ensures the event names a known type and carries the fields
// that type requires.
func (e *ClientEvent) Validate() error {
	switch e.Type {
	case EventLoadSchema:
		if strings.TrimSpace(e.Schema) == "" {
			return errors.WrapInvalid(errors.ErrInvalidData, "ClientEvent", "Validate",
				"load_schema requires schema text")
		}
	case EventNodeClick, EventDragStart, EventDragMove, EventDragEnd:
		if e.Node == "" {
			return errors.WrapInvalid(errors.ErrInvalidData, "ClientEvent", "Validate",
				fmt.Sprintf("%s requires a node id", e.Type))
		}
	case EventSetDepth:
		if e.Depth < 1 {
			return errors.WrapInvalid(errors.ErrInvalidData, "ClientEvent", "Validate",
				"set_depth requires depth >= 1")
		}
	case EventCanvasClick, EventImproveLayout, EventResetLayout, EventSearch:
		// No payload beyond the type.
	case "":
		return errors.WrapInvalid(errors.ErrInvalidData, "ClientEvent", "Validate",
			"event type is required")
	default:
		return errors.WrapInvalid(errors.ErrInvalidData, "ClientEvent", "Validate",
			fmt.Sprintf("unknown event type %q", e.Type))
	}
	return nil
}

// FrameMessage carries one simulation tick's node positions. Clients
// discard frames whose Generation is older than the newest seen.
type FrameMessage struct {
	Type       string            `json:"type"`
	Generation uint64            `json:"generation"`
	Alpha      float64           `json:"alpha"`
	Active     bool              `json:"active"`
	Positions  []layout.Position `json:"positions"`
}

// RenderedMessage describes the visible graph after a structural
// refresh: schema load, focus change, or depth change. Focus and Depth
// are set only while focused.
type RenderedMessage struct {
	Type      string            `json:"type"`
	State     string            `json:"state"`
	Focus     string            `json:"focus,omitempty"`
	Depth     int               `json:"depth,omitempty"`
	NodeCount int               `json:"nodeCount"`
	EdgeCount int               `json:"edgeCount"`
	Nodes     []*graph.TypeNode `json:"nodes"`
	Edges     []graph.FieldEdge `json:"edges"`
}

// SelectedMessage reports that a click focused a node. SampleQuery is a
// starter query for the selected type when one can be derived.
type SelectedMessage struct {
	Type        string `json:"type"`
	Node        string `json:"node"`
	SampleQuery string `json:"sampleQuery,omitempty"`
}

// ErrorMessage surfaces an operation failure to the client. The diagram
// keeps its previous state.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// EmptyMessage tells the client the current view has nothing to render.
type EmptyMessage struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// SearchResultsMessage lists visible node IDs matching a search term,
// in display order.
type SearchResultsMessage struct {
	Type    string   `json:"type"`
	Term    string   `json:"term"`
	Matches []string `json:"matches"`
}
