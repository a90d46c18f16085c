package gateway

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/c360/schemascope/config"
	"github.com/c360/schemascope/diagram"
	"github.com/c360/schemascope/errors"
	"github.com/c360/schemascope/graph"
	"github.com/c360/schemascope/metric"
	"github.com/c360/schemascope/pkg/tlsutil"
	"github.com/c360/schemascope/schema"
	"github.com/c360/schemascope/service"
	"github.com/c360/schemascope/source"
)

const defaultFrameInterval = 33 * time.Millisecond

// Server hosts diagram sessions over WebSocket and a small HTTP API.
// Each accepted connection gets its own controller and event loop; the
// server fans schema updates out to every live session.
type Server struct {
	*service.BaseService

	cfg      config.Config
	metrics  *metric.Metrics
	registry *metric.MetricsRegistry
	manager  *service.Manager
	logger   *slog.Logger

	upgrader websocket.Upgrader

	mu         sync.Mutex
	quit       chan struct{}
	listener   net.Listener
	httpServer *http.Server
	runCtx     context.Context
	cancelRun  context.CancelFunc

	schemaMu sync.RWMutex
	schema   string

	sessionMu sync.RWMutex
	sessions  map[string]*Session

	wg sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for the gateway and its sessions.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRegistry enables gateway metrics recording.
func WithMetricsRegistry(registry *metric.MetricsRegistry) Option {
	return func(s *Server) {
		s.registry = registry
	}
}

// WithManager lets the health endpoints report aggregate service health
// instead of the gateway's own.
func WithManager(mgr *service.Manager) Option {
	return func(s *Server) {
		s.manager = mgr
	}
}

// NewServer creates a gateway from the application configuration.
func NewServer(cfg config.Config, opts ...Option) (*Server, error) {
	if cfg.Server.Addr == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Server", "NewServer",
			"server.addr is required")
	}

	s := &Server{
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}

	baseOpts := []service.Option{}
	if s.logger != nil {
		baseOpts = append(baseOpts, service.WithLogger(s.logger))
	}
	if s.registry != nil {
		baseOpts = append(baseOpts, service.WithMetrics(s.registry))
		s.metrics = s.registry.CoreMetrics()
	}
	s.BaseService = service.NewBaseService("gateway", baseOpts...)

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	return s, nil
}

// Start binds the listener and begins serving. A bind failure is
// transient so the manager's startup retry can take another pass.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.quit != nil {
		s.mu.Unlock()
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "Server", "Start", "start gateway")
	}
	quit := make(chan struct{})
	s.quit = quit
	s.mu.Unlock()

	tlsConfig, err := tlsutil.LoadServerTLSConfig(s.cfg.Security.TLS.Server)
	if err != nil {
		s.resetQuit()
		return err
	}

	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		s.resetQuit()
		return errors.WrapTransient(err, "Server", "Start", "bind "+s.cfg.Server.Addr)
	}
	if tlsConfig != nil {
		ln = tls.NewListener(ln, tlsConfig)
	}

	if err := s.BaseService.Start(ctx); err != nil {
		_ = ln.Close()
		s.resetQuit()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.runCtx = runCtx
	s.cancelRun = cancel
	srv := s.httpServer
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.Logger().Error("http server failed", "error", err)
		}
	}()

	s.Logger().Info("gateway listening",
		"addr", ln.Addr().String(),
		"tls", tlsConfig != nil,
	)
	return nil
}

// Stop shuts the listener, closes every session, and waits for the
// session goroutines to drain.
func (s *Server) Stop(timeout time.Duration) error {
	s.mu.Lock()
	quit := s.quit
	srv := s.httpServer
	cancel := s.cancelRun
	s.quit = nil
	s.httpServer = nil
	s.listener = nil
	s.runCtx = nil
	s.cancelRun = nil
	s.mu.Unlock()

	if quit == nil {
		return s.BaseService.Stop(timeout)
	}
	close(quit)

	if timeout == 0 {
		timeout = 5 * time.Second
	}

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.Logger().Warn("http server shutdown", "error", err)
		}
		shutdownCancel()
	}

	s.closeSessions()
	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		s.Logger().Warn("session goroutines did not exit before timeout")
	}

	return s.BaseService.Stop(timeout)
}

func (s *Server) resetQuit() {
	s.mu.Lock()
	s.quit = nil
	s.mu.Unlock()
}

// Address returns the bound listener address, or "" before Start. With
// a ":0" configuration this is the way to learn the assigned port.
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// UpdateSchema stores the current schema document and pushes it to all
// live sessions. New sessions are seeded with the stored document.
func (s *Server) UpdateSchema(sdl string) {
	s.schemaMu.Lock()
	s.schema = sdl
	s.schemaMu.Unlock()

	s.sessionMu.RLock()
	defer s.sessionMu.RUnlock()
	for _, sess := range s.sessions {
		sess.offerUpdate(sdl)
	}
	if len(s.sessions) > 0 {
		s.Logger().Info("schema update broadcast", "sessions", len(s.sessions), "bytes", len(sdl))
	}
}

func (s *Server) currentSchema() string {
	s.schemaMu.RLock()
	defer s.schemaMu.RUnlock()
	return s.schema
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.sessionMu.RLock()
	defer s.sessionMu.RUnlock()
	return len(s.sessions)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/diagram", s.handleDiagram)
	mux.HandleFunc("/api/v1/schema", s.handleSchemaCheck)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/readyz", s.handleReadyz)
	if s.registry != nil {
		mux.Handle("/metrics", metric.Handler(s.registry))
	}
	return mux
}

// handleDiagram upgrades the connection and starts a diagram session.
func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	runCtx := s.runCtx
	s.mu.Unlock()
	if runCtx == nil {
		s.writeError(w, http.StatusServiceUnavailable, "gateway is not running")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger().Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	sess, err := s.newDiagramSession(conn)
	if err != nil {
		s.Logger().Error("diagram session setup failed", "error", err)
		_ = conn.Close()
		return
	}

	// Seed before registering so the broadcast path never races the
	// initial load.
	if sdl := s.currentSchema(); sdl != "" {
		sess.updates <- sdl
	}

	s.sessionMu.Lock()
	s.sessions[sess.id] = sess
	s.sessionMu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordSessionOpened()
	}
	s.Logger().Info("diagram session opened", "session", sess.id, "remote", r.RemoteAddr)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		sess.run(runCtx)
	}()
	go func() {
		defer s.wg.Done()
		sess.readPump(runCtx)
	}()
}

func (s *Server) newDiagramSession(conn *websocket.Conn) (*Session, error) {
	id := uuid.NewString()
	sess := &Session{
		id:            id,
		conn:          conn,
		logger:        s.Logger().With("session", id),
		metrics:       s.metrics,
		limiter:       rate.NewLimiter(rate.Limit(eventRate), eventBurst),
		frameInterval: s.frameInterval(),
		inbound:       make(chan ClientEvent, 32),
		updates:       make(chan string, 1),
		quit:          make(chan struct{}),
		onClose:       s.dropSession,
	}

	ctrl, err := diagram.NewController(diagram.Options{
		IncludeScalars: s.cfg.Diagram.IncludeScalars,
		Layout:         s.cfg.Layout,
		Logger:         sess.logger,
	}, diagram.Callbacks{
		OnNodeSelected: sess.onNodeSelected,
		OnError:        sess.onError,
		OnRendered:     sess.onRendered,
	})
	if err != nil {
		return nil, err
	}
	sess.ctrl = ctrl
	return sess, nil
}

func (s *Server) dropSession(sess *Session) {
	s.sessionMu.Lock()
	_, present := s.sessions[sess.id]
	delete(s.sessions, sess.id)
	s.sessionMu.Unlock()

	if !present {
		return
	}
	if s.metrics != nil {
		s.metrics.RecordSessionClosed()
	}
	s.Logger().Info("diagram session closed", "session", sess.id)
}

func (s *Server) closeSessions() {
	s.sessionMu.RLock()
	snapshot := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		snapshot = append(snapshot, sess)
	}
	s.sessionMu.RUnlock()

	for _, sess := range snapshot {
		sess.close()
	}
}

func (s *Server) frameInterval() time.Duration {
	if s.cfg.Diagram.FrameInterval > 0 {
		return s.cfg.Diagram.FrameInterval
	}
	return defaultFrameInterval
}

// checkOrigin enforces the allowed-origins list. An empty list admits
// every origin, which suits development; deployments set explicit
// origins in server.allowed_origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.cfg.Server.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients send no Origin header.
		return true
	}
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// handleSchemaCheck validates a schema document without touching any
// session: POST the SDL, get back the node and edge counts it would
// produce.
func (s *Server) handleSchemaCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
		return
	}
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, source.MaxSchemaBytes+1))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if int64(len(body)) > source.MaxSchemaBytes {
		s.writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("schema exceeds maximum size of %d bytes", source.MaxSchemaBytes))
		return
	}

	parsed, err := schema.Parse(string(body))
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordSchemaLoad(false)
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	model := graph.Build(parsed, graph.BuildOptions{
		IncludeScalars: s.cfg.Diagram.IncludeScalars,
		Logger:         s.Logger(),
	})
	if s.metrics != nil {
		s.metrics.RecordSchemaLoad(true)
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"nodes": model.NodeCount(),
		"edges": model.EdgeCount(),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
		return
	}

	status := s.Health()
	if s.manager != nil {
		status = s.manager.Health()
	}

	code := http.StatusOK
	if status.IsUnhealthy() {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, status)
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
		return
	}

	ready := s.Status() == service.StatusRunning
	if s.manager != nil {
		ready = s.manager.Ready()
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, map[string]any{"ready": ready})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = w.Write(data)
}

func (s *Server) writeError(w http.ResponseWriter, code int, message string) {
	s.writeJSON(w, code, map[string]any{
		"error":  message,
		"status": code,
	})
}
