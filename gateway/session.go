package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/c360/schemascope/diagram"
	"github.com/c360/schemascope/graph"
	"github.com/c360/schemascope/metric"
	"github.com/c360/schemascope/source"
)

const (
	// writeWait bounds a single frame write to a client.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may stay silent before the read
	// side gives up. Pings go out at pingPeriod, well inside pongWait.
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	// maxEventBytes caps inbound messages. load_schema carries a full
	// schema document, so the cap tracks the source size limit.
	maxEventBytes = source.MaxSchemaBytes + 64*1024

	// Inbound event rate limiting. Drag streams run at display rate, so
	// the budget sits comfortably above 60 events per second.
	eventRate  = 120
	eventBurst = 240

	// sampleQueryFields caps how many fields a starter query lists.
	sampleQueryFields = 5
)

// Session is one interactive diagram over a WebSocket connection. A
// single run goroutine owns the controller and serializes schema loads,
// interaction events, and simulation ticks; a read pump feeds it parsed
// client events. Sessions never share controllers.
type Session struct {
	id      string
	conn    *websocket.Conn
	ctrl    *diagram.Controller
	logger  *slog.Logger
	metrics *metric.Metrics
	limiter *rate.Limiter

	frameInterval time.Duration

	inbound chan ClientEvent
	updates chan string
	quit    chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
	onClose   func(*Session)

	// settled marks that the final frame of a run was delivered, so
	// idle ticks stop producing identical frames.
	settled bool
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// run is the session's event loop and the only goroutine that touches
// the controller.
func (s *Session) run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("session loop panic", "session", s.id, "panic", r)
		}
		s.close()
	}()

	frames := time.NewTicker(s.frameInterval)
	defer frames.Stop()
	pings := time.NewTicker(pingPeriod)
	defer pings.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		case ev, ok := <-s.inbound:
			if !ok {
				return
			}
			s.handleEvent(ev)
		case sdl := <-s.updates:
			s.loadSchema(sdl)
		case <-frames.C:
			s.emitFrame()
		case <-pings.C:
			if !s.ping() {
				return
			}
		}
	}
}

// readPump reads client messages, applies the rate limit, and forwards
// parsed events to the run loop. It exits when the connection drops.
func (s *Session) readPump(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("session read panic", "session", s.id, "panic", r)
		}
		s.close()
	}()

	s.conn.SetReadLimit(maxEventBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("session closed unexpectedly", "session", s.id, "error", err)
			}
			return
		}

		if !s.limiter.Allow() {
			s.logger.Debug("event rate limit exceeded, dropping", "session", s.id)
			continue
		}

		var ev ClientEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			s.sendError("malformed event: " + err.Error())
			continue
		}

		select {
		case s.inbound <- ev:
		case <-s.quit:
			return
		case <-ctx.Done():
			return
		}
	}
}

// handleEvent dispatches one client event to the controller.
func (s *Session) handleEvent(ev ClientEvent) {
	if err := ev.Validate(); err != nil {
		s.sendError(err.Error())
		return
	}
	if s.metrics != nil {
		s.metrics.RecordEvent(ev.Type)
	}

	switch ev.Type {
	case EventLoadSchema:
		s.loadSchema(ev.Schema)
	case EventNodeClick:
		if err := s.ctrl.NodeClick(ev.Node); err != nil {
			s.sendError(err.Error())
		}
	case EventCanvasClick:
		s.ctrl.CanvasClick()
	case EventSetDepth:
		s.ctrl.SetDepth(ev.Depth)
	case EventDragStart:
		s.ctrl.DragStart(ev.Node, ev.X, ev.Y)
	case EventDragMove:
		s.ctrl.DragMove(ev.Node, ev.X, ev.Y)
	case EventDragEnd:
		s.ctrl.DragEnd(ev.Node)
	case EventImproveLayout:
		s.ctrl.ImproveLayout()
	case EventResetLayout:
		s.ctrl.ResetLayout()
	case EventSearch:
		s.send(SearchResultsMessage{
			Type:    MessageSearchResults,
			Term:    ev.Term,
			Matches: s.ctrl.Search(ev.Term),
		})
	}
}

// loadSchema replaces the session's diagram. Parse failures reach the
// client through the controller's error callback and leave the previous
// diagram intact.
func (s *Session) loadSchema(sdl string) {
	err := s.ctrl.LoadSchema(sdl)
	if s.metrics != nil {
		s.metrics.RecordSchemaLoad(err == nil)
	}
	if err != nil {
		return
	}
	s.settled = false
}

// emitFrame advances the simulation one tick and ships the positions.
// An idle session stays quiet: once the run settles, the final frame is
// sent and then ticks are skipped until something reheats the layout.
func (s *Session) emitFrame() {
	if s.ctrl.Empty() {
		return
	}
	if s.settled && !s.ctrl.Active() {
		return
	}

	positions, generation, active := s.ctrl.Step()
	if positions == nil {
		return
	}
	s.settled = !active

	if s.metrics != nil {
		s.metrics.RecordLayoutTick()
	}
	if s.send(FrameMessage{
		Type:       MessageFrame,
		Generation: generation,
		Alpha:      s.ctrl.Alpha(),
		Active:     active,
		Positions:  positions,
	}) && s.metrics != nil {
		s.metrics.RecordFrameSent()
	}
}

// onRendered is the controller's structural-refresh callback. It runs
// on the session loop, so reading controller state here is safe.
func (s *Session) onRendered(nodes, edges int) {
	if s.metrics != nil {
		s.metrics.RecordGraphSize(nodes, edges)
	}
	if nodes == 0 {
		s.send(EmptyMessage{Type: MessageEmpty, Message: "no types to display"})
		return
	}
	s.send(s.renderedMessage())
	s.settled = false
}

func (s *Session) renderedMessage() RenderedMessage {
	view := s.ctrl.View()
	msg := RenderedMessage{
		Type:      MessageRendered,
		State:     s.ctrl.State().String(),
		NodeCount: view.NodeCount(),
		EdgeCount: view.EdgeCount(),
		Nodes:     make([]*graph.TypeNode, 0, view.NodeCount()),
		Edges:     view.Edges,
	}
	for _, id := range view.Order() {
		node, _ := view.Node(id)
		msg.Nodes = append(msg.Nodes, node)
	}
	if id, depth, ok := s.ctrl.Focus(); ok {
		msg.Focus = id
		msg.Depth = depth
	}
	return msg
}

// onNodeSelected is the controller's selection callback.
func (s *Session) onNodeSelected(typeName string) {
	msg := SelectedMessage{Type: MessageSelected, Node: typeName}
	if node, ok := s.ctrl.Full().Node(typeName); ok {
		msg.SampleQuery = sampleQuery(node)
	}
	s.send(msg)
}

// onError is the controller's error callback.
func (s *Session) onError(message string) {
	s.sendError(message)
}

func (s *Session) sendError(message string) {
	if s.metrics != nil {
		s.metrics.RecordError("gateway", "invalid")
	}
	s.send(ErrorMessage{Type: MessageError, Message: message})
}

// send marshals and writes one server message. A write failure closes
// the session.
func (s *Session) send(v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("marshal server message", "session", s.id, "error", err)
		return false
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Debug("session write failed", "session", s.id, "error", err)
		s.close()
		return false
	}
	return true
}

func (s *Session) ping() bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.PingMessage, nil) == nil
}

// offerUpdate hands a schema document to the session, replacing any
// update it has not consumed yet. Only the broadcast path calls this.
func (s *Session) offerUpdate(sdl string) {
	for {
		select {
		case s.updates <- sdl:
			return
		case <-s.quit:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}

// close tears the session down exactly once.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.quit)
		_ = s.conn.Close()
		if s.onClose != nil {
			s.onClose(s)
		}
	})
}

// sampleQuery derives a starter query for a selected object type from
// its leading fields.
func sampleQuery(node *graph.TypeNode) string {
	if node.Kind != graph.KindObject || len(node.Fields) == 0 {
		return ""
	}

	limit := len(node.Fields)
	if limit > sampleQueryFields {
		limit = sampleQueryFields
	}

	var b strings.Builder
	b.WriteString("query {\n")
	fmt.Fprintf(&b, "  %s {\n", lowerFirst(node.ID))
	for _, f := range node.Fields[:limit] {
		fmt.Fprintf(&b, "    %s\n", f.Name)
	}
	b.WriteString("  }\n}")
	return b.String()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
