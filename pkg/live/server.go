package live

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/recera/knowledgemap/pkg/knowledge/canvas"
	"github.com/recera/knowledgemap/pkg/vango/vdom"
)

const (
	// Prefix is the path the websocket handler is mounted on
	Prefix = "/live/"

	writeWait    = 10 * time.Second
	pongWait     = 300 * time.Second
	pingInterval = 54 * time.Second
	sendBuffer   = 256

	// DefaultSessionGrace is how long a session outlives its last connection
	DefaultSessionGrace = 2 * time.Minute
)

// CanvasFactory builds the canvas of a new session
type CanvasFactory func() (*canvas.Canvas, error)

// Server handles WebSocket connections for live updates. Every session
// owns one Canvas; events are applied to it and the re-rendered scene is
// diffed against the last one sent.
type Server struct {
	upgrader  websocket.Upgrader
	sessions  map[string]*Session
	mu        sync.RWMutex
	newCanvas CanvasFactory
	verbose   bool
	grace     time.Duration
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithOriginCheck restricts which origins may open a session
func WithOriginCheck(check func(r *http.Request) bool) ServerOption {
	return func(s *Server) { s.upgrader.CheckOrigin = check }
}

// WithVerbose logs every frame
func WithVerbose(v bool) ServerOption {
	return func(s *Server) { s.verbose = v }
}

// WithSessionGrace sets how long a disconnected session is kept for the
// client to reconnect. Zero drops it as soon as its connection ends.
func WithSessionGrace(d time.Duration) ServerOption {
	return func(s *Server) { s.grace = d }
}

// NewServer creates a new live protocol server
func NewServer(factory CanvasFactory, opts ...ServerOption) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sessions:  make(map[string]*Session),
		newCanvas: factory,
		grace:     DefaultSessionGrace,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session is one browser's view of the map. A reconnect with the same id
// within the grace period resumes the same canvas.
type Session struct {
	ID string

	// guarded by Server.mu
	claims int
	expiry *time.Timer

	mu      sync.Mutex
	canvas  *canvas.Canvas
	scene   *vdom.VNode
	lastSeq uint64
	conn    *connection
	verbose bool
}

// connection is one websocket attached to a session
type connection struct {
	ws        *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// close stops the writer, which says goodbye and closes the socket
func (c *connection) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// HandleWebSocket handles WebSocket upgrade and session management
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimPrefix(r.URL.Path, Prefix)
	if sessionID == "" || sessionID == r.URL.Path || strings.Contains(sessionID, "/") {
		http.Error(w, "Session ID required", http.StatusBadRequest)
		return
	}

	session, err := s.getOrCreateSession(sessionID)
	if err != nil {
		log.Printf("[Live Server] Failed to create session %s: %v", sessionID, err)
		http.Error(w, "Session unavailable", http.StatusInternalServerError)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Live Server] Failed to upgrade connection: %v", err)
		s.release(session)
		return
	}

	conn := &connection{
		ws:   ws,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	go s.serve(session, conn)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.HandleWebSocket(w, r)
}

// getOrCreateSession gets an existing session or creates a new one. The
// session is claimed for the caller and cannot expire until released.
func (s *Server) getOrCreateSession(sessionID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, exists := s.sessions[sessionID]; exists {
		session.claims++
		if session.expiry != nil {
			session.expiry.Stop()
			session.expiry = nil
		}
		return session, nil
	}

	c, err := s.newCanvas()
	if err != nil {
		return nil, err
	}
	session := &Session{ID: sessionID, canvas: c, verbose: s.verbose, claims: 1}
	s.sessions[sessionID] = session
	log.Printf("[Live Server] Created session %s", sessionID)
	return session, nil
}

// release drops a claim. The last one starts the grace period.
func (s *Server) release(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.claims--
	if session.claims > 0 || s.sessions[session.ID] != session {
		return
	}
	if s.grace <= 0 {
		s.removeLocked(session.ID)
		return
	}
	session.expiry = time.AfterFunc(s.grace, func() { s.expire(session) })
}

// expire drops a session nobody reclaimed during its grace period
func (s *Server) expire(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.claims > 0 || s.sessions[session.ID] != session {
		return
	}
	session.expiry = nil
	s.removeLocked(session.ID)
	log.Printf("[Live Session %s] Expired", session.ID)
}

// GetSession retrieves a session by ID
func (s *Server) GetSession(sessionID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

// RemoveSession removes a session
func (s *Server) RemoveSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(sessionID)
}

func (s *Server) removeLocked(sessionID string) {
	session, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	if session.expiry != nil {
		session.expiry.Stop()
		session.expiry = nil
	}
	delete(s.sessions, sessionID)

	session.mu.Lock()
	session.canvas.Dispose()
	session.mu.Unlock()
}

// Len returns the number of open sessions
func (s *Server) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// serve runs one connection until it closes. When the session's last
// connection ends, it is kept for the grace period.
func (s *Server) serve(session *Session, conn *connection) {
	session.attach(conn)
	go session.writer(conn)

	session.sendHello(conn)
	if err := session.sendFullScene(conn); err != nil {
		log.Printf("[Live Session %s] Failed to send scene: %v", session.ID, err)
	}

	session.reader(conn)
	conn.close()

	if session.detach(conn) {
		log.Printf("[Live Session %s] Disconnected", session.ID)
	}
	s.release(session)
}

// attach makes conn the session's connection, closing any previous one.
// A drag left open by the previous client is rolled back.
func (s *Session) attach(conn *connection) {
	s.mu.Lock()
	prev := s.conn
	s.conn = conn
	if prev != nil {
		s.canvas.Abort()
	}
	s.mu.Unlock()
	if prev != nil {
		prev.close()
	}
}

// detach reports whether conn was still the session's connection. The
// pointers of a gone client never come up, so its open drag is rolled back.
func (s *Session) detach(conn *connection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != conn {
		return false
	}
	s.conn = nil
	s.canvas.Abort()
	return true
}

func (s *Session) reader(conn *connection) {
	conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		conn.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Live Session %s] Unexpected close: %v", s.ID, err)
			}
			return
		}
		conn.ws.SetReadDeadline(time.Now().Add(pongWait))

		if s.verbose {
			log.Printf("[Live Session %s] Received message type %d, size %d bytes", s.ID, messageType, len(data))
		}

		switch messageType {
		case websocket.BinaryMessage:
			s.handleBinaryMessage(conn, data)
		case websocket.TextMessage:
			s.handleTextMessage(conn, data)
		}
	}
}

// writer handles writing messages to the WebSocket
func (s *Session) writer(conn *connection) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer conn.ws.Close()

	for {
		select {
		case message := <-conn.send:
			conn.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.ws.WriteMessage(websocket.BinaryMessage, message); err != nil {
				log.Printf("[Live Session %s] Failed to write message: %v", s.ID, err)
				conn.close()
				return
			}

		case <-ticker.C:
			conn.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.close()
				return
			}

		case <-conn.done:
			conn.ws.SetWriteDeadline(time.Now().Add(writeWait))
			conn.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// queue hands a frame to the writer without blocking
func (s *Session) queue(conn *connection, frame []byte) error {
	select {
	case conn.send <- frame:
		return nil
	case <-conn.done:
		return fmt.Errorf("connection closed")
	default:
		return fmt.Errorf("send buffer full")
	}
}

// sendHello sends the initial hello message
func (s *Session) sendHello(conn *connection) {
	s.mu.Lock()
	seq := s.lastSeq
	s.mu.Unlock()
	s.queue(conn, EncodeControl(ControlHello, seq))
}

// sendFullScene replaces the client's root with the current scene. It
// is the baseline every later diff is taken against.
func (s *Session) sendFullScene(conn *connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scene = s.canvas.Scene()
	return s.sendPatchesLocked(conn, []vdom.Patch{{Op: vdom.OpReplaceNode, Path: []int{}, Node: s.scene}})
}

// handleBinaryMessage processes control frames
func (s *Session) handleBinaryMessage(conn *connection, data []byte) {
	if len(data) == 0 || MessageType(data[0]) != FrameControl {
		return
	}

	name, args, err := DecodeControl(data)
	if err != nil {
		log.Printf("[Live Session %s] Failed to decode control message: %v", s.ID, err)
		return
	}

	switch name {
	case ControlHello:
		if s.verbose {
			log.Printf("[Live Session %s] Client hello: %v", s.ID, args)
		}
	case ControlPing:
		s.queue(conn, EncodeControl(ControlPong))
	}
}

// handleTextMessage processes JSON input events
func (s *Session) handleTextMessage(conn *connection, data []byte) {
	ev, err := DecodeEvent(data)
	if err != nil {
		log.Printf("[Live Session %s] Bad event: %v", s.ID, err)
		return
	}
	if err := s.handleEvent(conn, ev); err != nil {
		log.Printf("[Live Session %s] Failed to send patches: %v", s.ID, err)
	}
}

// handleEvent applies an event to the session's canvas and sends the
// resulting patches on conn
func (s *Session) handleEvent(conn *connection, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if Dispatch(s.canvas, ev) == 0 {
		return nil
	}

	next := s.canvas.Scene()
	patches := vdom.Diff(s.scene, next)
	s.scene = next
	return s.sendPatchesLocked(conn, patches)
}

func (s *Session) sendPatchesLocked(conn *connection, patches []vdom.Patch) error {
	if len(patches) == 0 {
		return nil
	}

	data, err := EncodePatches(patches)
	if err != nil {
		return fmt.Errorf("failed to encode patches: %w", err)
	}
	if err := s.queue(conn, data); err != nil {
		// the client missed a diff; it resyncs from a full scene on reconnect
		conn.close()
		return err
	}
	s.lastSeq++
	return nil
}

// Canvas runs fn with the session's canvas held
func (s *Session) Canvas(fn func(c *canvas.Canvas)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.canvas)
}
