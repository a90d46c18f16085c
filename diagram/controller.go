package diagram

import (
	"log/slog"
	"strings"

	"github.com/c360/schemascope/errors"
	"github.com/c360/schemascope/graph"
	"github.com/c360/schemascope/layout"
	"github.com/c360/schemascope/schema"
)

// State represents the controller's focus state
type State int

const (
	// StateUnfocused shows the full graph
	StateUnfocused State = iota
	// StateFocused shows the neighborhood of one node
	StateFocused
)

// String returns a string representation of the focus state
func (s State) String() string {
	switch s {
	case StateUnfocused:
		return "unfocused"
	case StateFocused:
		return "focused"
	default:
		return "unknown"
	}
}

// Callbacks are optional hooks into diagram activity. Nil members are
// skipped.
type Callbacks struct {
	// OnNodeSelected fires when a click focuses a node; consumers use it to
	// generate sample queries for the selected type.
	OnNodeSelected func(typeName string)

	// OnError fires with a human-readable message when an operation fails.
	OnError func(message string)

	// OnRendered fires after every structural refresh with the visible
	// node and edge counts.
	OnRendered func(nodeCount, edgeCount int)
}

// Options configures a controller instance.
type Options struct {
	// IncludeScalars retains user-declared scalar types in the graph.
	IncludeScalars bool

	// Layout holds the simulation parameters.
	Layout layout.Config

	// Logger receives diagnostics. Nil uses slog.Default().
	Logger *slog.Logger
}

// Controller coordinates schema parsing, graph building, focus filtering,
// and the layout engine for one diagram instance. It is not safe for
// concurrent use; a single owning loop serializes all calls.
//
// Focus state machine: StateUnfocused renders the full graph. Clicking a
// node enters StateFocused with depth 1, restricting the view to nodes
// within depth hops. Clicking the focused node again, or empty canvas,
// returns to StateUnfocused. Depth moves with a floor of one and no
// ceiling. A schema reload keeps the focus when the node survives the
// reparse and drops it otherwise.
type Controller struct {
	logger *slog.Logger
	engine *layout.Engine
	cb     Callbacks

	includeScalars bool

	raw     string
	full    *graph.Model
	view    *graph.Model
	state   State
	focusID string
	depth   int
}

// NewController validates the layout config and returns a controller with
// no schema loaded.
func NewController(opts Options, cb Callbacks) (*Controller, error) {
	engine, err := layout.NewEngine(opts.Layout)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		logger:         logger,
		engine:         engine,
		cb:             cb,
		includeScalars: opts.IncludeScalars,
		full:           graph.NewModel(),
		view:           graph.NewModel(),
		state:          StateUnfocused,
		depth:          1,
	}, nil
}

// LoadSchema parses text and replaces the active graph. On a parse error
// the previous diagram state stays untouched, OnError fires, and the error
// is returned. A successful load keeps the current focus when the focused
// node still exists and unfocuses otherwise.
func (c *Controller) LoadSchema(text string) error {
	parsed, err := schema.Parse(text)
	if err != nil {
		c.emitError(err.Error())
		return err
	}

	c.full = graph.Build(parsed, graph.BuildOptions{
		IncludeScalars: c.includeScalars,
		Logger:         c.logger,
	})
	c.raw = text

	if c.state == StateFocused && !c.full.HasNode(c.focusID) {
		c.logger.Debug("focused node gone after reload, unfocusing", "node", c.focusID)
		c.state = StateUnfocused
		c.focusID = ""
	}

	c.refresh()
	return nil
}

// NodeClick handles a click on a node. Clicking while unfocused, or
// clicking a different node while focused, selects that node at depth one.
// Clicking the focused node again unfocuses.
func (c *Controller) NodeClick(id string) error {
	if !c.full.HasNode(id) {
		return errors.WrapInvalid(errors.ErrTypeNotFound, "Controller", "NodeClick", "unknown node "+id)
	}

	if c.state == StateFocused && c.focusID == id {
		c.state = StateUnfocused
		c.focusID = ""
		c.refresh()
		return nil
	}

	c.state = StateFocused
	c.focusID = id
	c.depth = 1
	c.refresh()
	if c.cb.OnNodeSelected != nil {
		c.cb.OnNodeSelected(id)
	}
	return nil
}

// CanvasClick handles a click on empty canvas, which unfocuses.
func (c *Controller) CanvasClick() {
	if c.state != StateFocused {
		return
	}
	c.state = StateUnfocused
	c.focusID = ""
	c.refresh()
}

// SetDepth changes the focus depth, clamped to a floor of one. It is a
// no-op while unfocused or when the depth does not change.
func (c *Controller) SetDepth(depth int) {
	if depth < 1 {
		depth = 1
	}
	if c.state != StateFocused || depth == c.depth {
		return
	}
	c.depth = depth
	c.refresh()
}

// IncrementDepth widens the focus neighborhood by one hop.
func (c *Controller) IncrementDepth() {
	c.SetDepth(c.depth + 1)
}

// DecrementDepth narrows the focus neighborhood by one hop, stopping at one.
func (c *Controller) DecrementDepth() {
	c.SetDepth(c.depth - 1)
}

// DragStart pins a node to the pointer. The focus anchor refuses drag.
func (c *Controller) DragStart(id string, x, y float64) bool {
	return c.engine.Pin(id, x, y)
}

// DragMove updates the pointer pin.
func (c *Controller) DragMove(id string, x, y float64) bool {
	return c.engine.MovePin(id, x, y)
}

// DragEnd releases the pointer pin.
func (c *Controller) DragEnd(id string) bool {
	return c.engine.Unpin(id)
}

// ImproveLayout spreads the current layout further apart.
func (c *Controller) ImproveLayout() {
	if c.view.NodeCount() == 0 {
		return
	}
	c.engine.Improve()
}

// ResetLayout clears drag pins and restores default force parameters.
func (c *Controller) ResetLayout() {
	if c.view.NodeCount() == 0 {
		return
	}
	c.engine.Reset()
}

// Search returns visible node IDs whose name or field names contain term,
// case-insensitively, in display order. It never changes diagram state.
func (c *Controller) Search(term string) []string {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return nil
	}
	var matches []string
	for _, id := range c.view.Order() {
		if strings.Contains(strings.ToLower(id), needle) {
			matches = append(matches, id)
			continue
		}
		node, _ := c.view.Node(id)
		for _, f := range node.Fields {
			if strings.Contains(strings.ToLower(f.Name), needle) {
				matches = append(matches, id)
				break
			}
		}
	}
	return matches
}

// Step advances the simulation one tick and reports the position snapshot,
// the run generation, and whether the run is still active. An empty view
// never simulates.
func (c *Controller) Step() ([]layout.Position, uint64, bool) {
	if c.view.NodeCount() == 0 {
		return nil, c.engine.Generation(), false
	}
	active := c.engine.Tick()
	return c.engine.Positions(), c.engine.Generation(), active
}

// Active reports whether the simulation still has ticks to run.
func (c *Controller) Active() bool {
	return c.view.NodeCount() > 0 && !c.engine.Settled()
}

// State returns the focus state.
func (c *Controller) State() State {
	return c.state
}

// Focus returns the focused node and depth; ok is false while unfocused.
func (c *Controller) Focus() (id string, depth int, ok bool) {
	if c.state != StateFocused {
		return "", 0, false
	}
	return c.focusID, c.depth, true
}

// View returns the currently visible model.
func (c *Controller) View() *graph.Model {
	return c.view
}

// Full returns the complete unfiltered model from the last good parse.
func (c *Controller) Full() *graph.Model {
	return c.full
}

// Raw returns the last successfully parsed schema text.
func (c *Controller) Raw() string {
	return c.raw
}

// Empty reports whether the current view has nothing to render.
func (c *Controller) Empty() bool {
	return c.view.NodeCount() == 0
}

// Generation returns the layout run counter.
func (c *Controller) Generation() uint64 {
	return c.engine.Generation()
}

// Alpha returns the simulation's current cooling value.
func (c *Controller) Alpha() float64 {
	return c.engine.Alpha()
}

// refresh recomputes the visible model from the focus state and restarts
// the layout with continuity for surviving nodes.
func (c *Controller) refresh() {
	if c.state == StateFocused {
		dist := graph.Distances(c.full, c.focusID)
		c.view = graph.FilterByDepth(c.full, dist, c.depth)
	} else {
		c.view = c.full
	}

	c.engine.Rebuild(c.view)
	if c.state == StateFocused {
		c.engine.SetFocus(c.focusID)
	} else {
		c.engine.SetFocus("")
	}

	if c.view.NodeCount() == 0 {
		c.logger.Info("diagram view is empty")
	}
	if c.cb.OnRendered != nil {
		c.cb.OnRendered(c.view.NodeCount(), c.view.EdgeCount())
	}
}

func (c *Controller) emitError(message string) {
	c.logger.Warn("diagram error", "error", message)
	if c.cb.OnError != nil {
		c.cb.OnError(message)
	}
}
