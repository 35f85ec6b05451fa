package server

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"

	"github.com/recera/knowledgemap/pkg/knowledge/canvas"
	"github.com/recera/knowledgemap/pkg/knowledge/graph"
	"github.com/recera/knowledgemap/pkg/live"
	"github.com/recera/knowledgemap/pkg/vango/vdom"
)

// App serves the knowledge map: the page, the graph API and the live
// session endpoint.
type App struct {
	router *Router
	live   *live.Server
	layout Layout

	mu    sync.RWMutex
	doc   graph.Document
	opts  []canvas.Option
	relax bool
}

// AppOption configures an App
type AppOption func(*App)

// WithCanvasOptions applies opts to every canvas the app creates
func WithCanvasOptions(opts ...canvas.Option) AppOption {
	return func(a *App) { a.opts = append(a.opts, opts...) }
}

// WithRelax runs collision relaxation on every new canvas
func WithRelax(relax bool) AppOption {
	return func(a *App) { a.relax = relax }
}

// WithLayout replaces the page layout
func WithLayout(l Layout) AppOption {
	return func(a *App) { a.layout = l }
}

// NewApp creates the application for doc. liveOpts configure the
// websocket server.
func NewApp(doc graph.Document, opts []AppOption, liveOpts ...live.ServerOption) *App {
	a := &App{
		router: NewRouter(),
		layout: Shell("Knowledge Map"),
		doc:    doc,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.live = live.NewServer(a.NewCanvas, liveOpts...)

	a.router.Mount(live.Prefix, a.live)
	a.router.AddRoute("/", a.page)
	a.router.AddAPIRoute("/api/graph", a.graph)
	a.router.AddAPIRoute("/api/graph/[session]", a.sessionGraph)
	a.router.AddAPIRoute("/healthz", a.health)
	return a
}

// ServeHTTP implements http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Live returns the websocket server
func (a *App) Live() *live.Server { return a.live }

// Document returns the document new sessions start from
func (a *App) Document() graph.Document {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.doc
}

// SetDocument swaps the document. Open sessions keep the map they
// started with; pages loaded afterwards get the new one.
func (a *App) SetDocument(doc graph.Document) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.doc = doc
}

// NewCanvas builds a canvas over a fresh store of the current document
func (a *App) NewCanvas() (*canvas.Canvas, error) {
	a.mu.RLock()
	doc, opts, relax := a.doc, a.opts, a.relax
	a.mu.RUnlock()

	c := canvas.New(graph.New(doc), opts...)
	if relax {
		c.Relax()
	}
	return c, nil
}

func (a *App) page(ctx Ctx) (*vdom.VNode, error) {
	c, err := a.NewCanvas()
	if err != nil {
		return nil, err
	}
	scene := c.Scene()
	c.Dispose()

	id, err := newSessionID()
	if err != nil {
		return nil, err
	}
	ctx.SetHeader("Cache-Control", "no-store")
	return InjectLiveClient(a.layout.Wrap(scene), id), nil
}

func (a *App) graph(ctx Ctx) (any, error) {
	c, err := a.NewCanvas()
	if err != nil {
		return nil, err
	}
	defer c.Dispose()
	return c.Store().Export(), nil
}

func (a *App) sessionGraph(ctx Ctx) (any, error) {
	session, ok := a.live.GetSession(ctx.Param("session"))
	if !ok {
		return nil, NotFound("no such session")
	}
	var doc graph.Document
	session.Canvas(func(c *canvas.Canvas) {
		doc = c.Store().Export()
	})
	return doc, nil
}

func (a *App) health(ctx Ctx) (any, error) {
	return map[string]any{
		"status":   "ok",
		"sessions": a.live.Len(),
	}, nil
}

func newSessionID() (string, error) {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
