package layout

import (
	"math"
	"math/rand"

	"github.com/c360/schemascope/graph"
)

const (
	// dragAlpha is the floor the temperature is raised to while dragging so
	// a settled layout responds to pointer movement.
	dragAlpha = 0.3

	// improveRepulsionFactor and improveSpringFactor are applied by Improve
	// on top of the current parameters.
	improveRepulsionFactor = 1.5
	improveSpringFactor    = 1.25

	// placementStep spaces fresh nodes along a phyllotaxis spiral.
	placementStep = 24.0

	goldenAngle = 2.39996322972865332

	epsilon = 1e-6
)

// Position is one node's rendered coordinate snapshot.
type Position struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Pinned bool    `json:"pinned"`
}

// Body carries one node's simulation state.
type Body struct {
	ID     string
	X, Y   float64
	VX, VY float64
	Radius float64
	Pinned bool
	PinX   float64
	PinY   float64
}

type link struct {
	source int
	target int
}

// Engine runs the force simulation for one diagram instance. It is not safe
// for concurrent use; the owning loop serializes all calls, and nothing else
// may write positions.
//
// A tick applies spring, repulsion, and centering forces scaled by the
// cooling factor alpha, integrates velocities, resolves collisions, and
// finally translates the whole system so the focus node sits at canvas
// center. Pinned bodies and the focus node never take force displacement.
type Engine struct {
	cfg      Config
	defaults Config

	bodies []*Body
	index  map[string]int
	links  []link

	alpha      float64
	generation uint64
	focusID    string

	rng    *rand.Rand
	placed int
}

// NewEngine validates cfg and returns an inert engine; Rebuild loads the
// first node set.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		defaults: cfg,
		index:    make(map[string]int),
		rng:      rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Rebuild replaces the active node/edge set. Nodes present in the previous
// set keep their positions as the new starting point; new nodes are placed
// along a spiral from canvas center with seeded jitter. Drag pins do not
// survive a rebuild. Starts a new run.
func (e *Engine) Rebuild(m *graph.Model) {
	prevIndex := e.index
	prevBodies := e.bodies

	e.bodies = make([]*Body, 0, m.NodeCount())
	e.index = make(map[string]int, m.NodeCount())
	for _, id := range m.Order() {
		node, ok := m.Node(id)
		if !ok {
			continue
		}
		b := &Body{ID: id, Radius: node.Radius()}
		if pi, ok := prevIndex[id]; ok {
			prev := prevBodies[pi]
			b.X, b.Y = prev.X, prev.Y
		} else {
			b.X, b.Y = e.place()
		}
		e.index[id] = len(e.bodies)
		e.bodies = append(e.bodies, b)
	}

	e.links = e.links[:0]
	for _, edge := range m.Edges {
		si, ok := e.index[edge.Source]
		if !ok {
			continue
		}
		ti, ok := e.index[edge.Target]
		if !ok || si == ti {
			continue
		}
		e.links = append(e.links, link{source: si, target: ti})
	}

	e.alpha = e.cfg.Alpha
	e.generation++
}

// place returns spiral coordinates for the next fresh node.
func (e *Engine) place() (float64, float64) {
	r := placementStep * math.Sqrt(float64(e.placed)+0.5)
	a := goldenAngle * float64(e.placed)
	e.placed++
	jx := e.rng.Float64() - 0.5
	jy := e.rng.Float64() - 0.5
	return e.cfg.Width/2 + r*math.Cos(a) + jx, e.cfg.Height/2 + r*math.Sin(a) + jy
}

// Improve raises repulsion and edge rest length on top of the current
// parameters and reheats from the current positions. Starts a new run.
func (e *Engine) Improve() {
	e.cfg.RepulsionStrength *= improveRepulsionFactor
	e.cfg.SpringLength *= improveSpringFactor
	e.alpha = e.cfg.Alpha
	e.generation++
}

// Reset restores default parameters, clears all drag pins, and reheats from
// the current positions. Starts a new run.
func (e *Engine) Reset() {
	for _, b := range e.bodies {
		b.Pinned = false
	}
	e.cfg = e.defaults
	e.alpha = e.cfg.Alpha
	e.generation++
}

// SetFocus anchors id at canvas center; empty clears the anchor. The focus
// node takes no force displacement and rejects drag while anchored.
func (e *Engine) SetFocus(id string) {
	e.focusID = id
}

// Focus returns the anchored node ID, or empty.
func (e *Engine) Focus() string {
	return e.focusID
}

// Pin fixes a node at (x, y) and reheats so a settled layout reacts. The
// focus anchor cannot be pinned. Reports whether the pin was applied.
func (e *Engine) Pin(id string, x, y float64) bool {
	if id == e.focusID {
		return false
	}
	i, ok := e.index[id]
	if !ok {
		return false
	}
	b := e.bodies[i]
	b.Pinned = true
	b.PinX, b.PinY = x, y
	e.reheat()
	return true
}

// MovePin updates an existing pin's position. Reports whether id was pinned.
func (e *Engine) MovePin(id string, x, y float64) bool {
	i, ok := e.index[id]
	if !ok || !e.bodies[i].Pinned {
		return false
	}
	b := e.bodies[i]
	b.PinX, b.PinY = x, y
	e.reheat()
	return true
}

// Unpin releases a drag pin. The focus anchor stays anchored.
func (e *Engine) Unpin(id string) bool {
	if id == e.focusID {
		return false
	}
	i, ok := e.index[id]
	if !ok || !e.bodies[i].Pinned {
		return false
	}
	e.bodies[i].Pinned = false
	return true
}

// reheat raises the temperature to the drag floor without restarting the run.
func (e *Engine) reheat() {
	if e.alpha < dragAlpha {
		e.alpha = dragAlpha
	}
}

// Tick advances the simulation one step and reports whether the run is still
// active. An empty or settled engine does nothing and returns false.
func (e *Engine) Tick() bool {
	if len(e.bodies) == 0 || e.alpha < e.cfg.AlphaMin {
		return false
	}

	e.alpha += (0 - e.alpha) * e.cfg.AlphaDecay

	e.applySprings()
	e.applyRepulsion()
	e.applyCenter()
	e.integrate()
	e.resolveCollisions()
	e.anchorFocus()

	return e.alpha >= e.cfg.AlphaMin
}

// Settled reports whether the current run has cooled below the minimum.
func (e *Engine) Settled() bool {
	return len(e.bodies) == 0 || e.alpha < e.cfg.AlphaMin
}

// Alpha returns the current temperature.
func (e *Engine) Alpha() float64 {
	return e.alpha
}

// Generation returns the run counter, incremented by Rebuild, Improve, and
// Reset. Consumers tag in-flight work with it and discard results whose
// generation has been superseded.
func (e *Engine) Generation() uint64 {
	return e.generation
}

// Count returns the number of simulated bodies.
func (e *Engine) Count() int {
	return len(e.bodies)
}

// Body returns a copy of one body's state.
func (e *Engine) Body(id string) (Body, bool) {
	i, ok := e.index[id]
	if !ok {
		return Body{}, false
	}
	return *e.bodies[i], true
}

// Positions returns a stable-order snapshot of all node positions.
func (e *Engine) Positions() []Position {
	out := make([]Position, len(e.bodies))
	for i, b := range e.bodies {
		out[i] = Position{ID: b.ID, X: b.X, Y: b.Y, Pinned: b.Pinned}
	}
	return out
}

// Params returns the force parameters currently in effect.
func (e *Engine) Params() Config {
	return e.cfg
}

// fixed reports whether a body is excluded from force displacement.
func (e *Engine) fixed(b *Body) bool {
	return b.Pinned || b.ID == e.focusID
}

func (e *Engine) applySprings() {
	for _, l := range e.links {
		s := e.bodies[l.source]
		t := e.bodies[l.target]
		dx := t.X - s.X
		dy := t.Y - s.Y
		dist := math.Hypot(dx, dy)
		if dist < epsilon {
			dx, dy, dist = epsilon, 0, epsilon
		}
		f := e.cfg.SpringStrength * (dist - e.cfg.SpringLength) * e.alpha
		fx := f * dx / dist
		fy := f * dy / dist
		if !e.fixed(s) {
			s.VX += fx
			s.VY += fy
		}
		if !e.fixed(t) {
			t.VX -= fx
			t.VY -= fy
		}
	}
}

func (e *Engine) applyRepulsion() {
	for i := 0; i < len(e.bodies); i++ {
		a := e.bodies[i]
		for j := i + 1; j < len(e.bodies); j++ {
			b := e.bodies[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			d2 := dx*dx + dy*dy
			// Clamp to unit distance so coincident nodes get a strong,
			// finite push instead of a blowup.
			if d2 < 1 {
				if d2 < epsilon {
					dx, dy = 1, 0
				}
				d2 = 1
			}
			dist := math.Sqrt(d2)
			f := e.cfg.RepulsionStrength * e.alpha / d2
			fx := f * dx / dist
			fy := f * dy / dist
			if !e.fixed(a) {
				a.VX -= fx
				a.VY -= fy
			}
			if !e.fixed(b) {
				b.VX += fx
				b.VY += fy
			}
		}
	}
}

func (e *Engine) applyCenter() {
	cx := e.cfg.Width / 2
	cy := e.cfg.Height / 2
	for _, b := range e.bodies {
		if e.fixed(b) {
			continue
		}
		b.VX += (cx - b.X) * e.cfg.CenterStrength * e.alpha
		b.VY += (cy - b.Y) * e.cfg.CenterStrength * e.alpha
	}
}

func (e *Engine) integrate() {
	for _, b := range e.bodies {
		if b.Pinned {
			b.X, b.Y = b.PinX, b.PinY
			b.VX, b.VY = 0, 0
			continue
		}
		if b.ID == e.focusID {
			b.VX, b.VY = 0, 0
			continue
		}
		b.VX *= e.cfg.VelocityDecay
		b.VY *= e.cfg.VelocityDecay
		b.X += b.VX
		b.Y += b.VY
	}
}

// resolveCollisions pushes overlapping pairs apart after the free forces
// have moved positions. A fixed body never moves; its counterpart takes the
// whole correction.
func (e *Engine) resolveCollisions() {
	for i := 0; i < len(e.bodies); i++ {
		a := e.bodies[i]
		for j := i + 1; j < len(e.bodies); j++ {
			b := e.bodies[j]
			minSep := a.Radius + b.Radius + e.cfg.CollisionPadding
			dx := b.X - a.X
			dy := b.Y - a.Y
			d2 := dx*dx + dy*dy
			if d2 >= minSep*minSep {
				continue
			}
			dist := math.Sqrt(d2)
			if dist < epsilon {
				dx, dy, dist = 1, 0, 1
			}
			overlap := minSep - dist
			ux := dx / dist
			uy := dy / dist
			aFixed := e.fixed(a)
			bFixed := e.fixed(b)
			switch {
			case aFixed && bFixed:
			case aFixed:
				b.X += ux * overlap
				b.Y += uy * overlap
			case bFixed:
				a.X -= ux * overlap
				a.Y -= uy * overlap
			default:
				a.X -= ux * overlap / 2
				a.Y -= uy * overlap / 2
				b.X += ux * overlap / 2
				b.Y += uy * overlap / 2
			}
		}
	}
}

// anchorFocus recenters the focus node and translates every other body by
// the same delta so the relative arrangement is preserved.
func (e *Engine) anchorFocus() {
	if e.focusID == "" {
		return
	}
	i, ok := e.index[e.focusID]
	if !ok {
		return
	}
	f := e.bodies[i]
	dx := e.cfg.Width/2 - f.X
	dy := e.cfg.Height/2 - f.Y
	if dx == 0 && dy == 0 {
		return
	}
	for _, b := range e.bodies {
		b.X += dx
		b.Y += dy
		if b.Pinned {
			b.PinX += dx
			b.PinY += dy
		}
	}
}
