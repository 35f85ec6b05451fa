package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
)

var (
	// ErrStop is a sentinel error used by middleware to stop the chain
	ErrStop = errors.New("knowledgemap: stop middleware chain")
)

// Stop returns the sentinel error to halt middleware chain execution
func Stop() error {
	return ErrStop
}

// StatusError is returned by API handlers to answer with a status other
// than 200 and a JSON error body
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

// NotFound builds a 404 StatusError
func NotFound(msg string) error {
	return &StatusError{Code: http.StatusNotFound, Message: msg}
}

func asStatus(err error, target **StatusError) bool {
	return errors.As(err, target)
}

// Ctx is the interface passed through routing, middleware and handlers
type Ctx interface {
	// === Request ===
	Request() *http.Request   // raw request pointer (read-only)
	Path() string             // path without query string
	Method() string           // GET, POST, etc.
	Query() url.Values        // parsed query params
	Param(key string) string  // route param, panics if missing

	// === Response ===
	Status(code int)                 // set HTTP status (default 200)
	StatusCode() int                 // current status
	Header() http.Header             // writeable headers
	SetHeader(key, val string)       // convenience
	JSON(code int, v any) error      // serialise & write JSON
	Text(code int, msg string) error // write text/plain
	HTML(code int, doc string) error // write text/html

	Logger() *slog.Logger // structured logger
}

// ctxImpl is the internal implementation of Ctx
type ctxImpl struct {
	req           *http.Request
	w             http.ResponseWriter
	params        map[string]string
	statusCode    int
	logger        *slog.Logger
	headerWritten bool
	mu            sync.RWMutex
}

// NewContext creates a new context for handling a request
func NewContext(w http.ResponseWriter, r *http.Request) Ctx {
	logger := slog.Default().With(
		"path", r.URL.Path,
		"method", r.Method,
	)

	return &ctxImpl{
		req:        r,
		w:          w,
		params:     make(map[string]string),
		statusCode: http.StatusOK,
		logger:     logger,
	}
}

// WithParams returns a new context with route parameters set
func WithParams(ctx Ctx, params map[string]string) Ctx {
	if impl, ok := ctx.(*ctxImpl); ok {
		impl.mu.Lock()
		impl.params = params
		impl.mu.Unlock()
	}
	return ctx
}

func (c *ctxImpl) Request() *http.Request { return c.req }

func (c *ctxImpl) Path() string { return c.req.URL.Path }

func (c *ctxImpl) Method() string { return c.req.Method }

func (c *ctxImpl) Query() url.Values { return c.req.URL.Query() }

func (c *ctxImpl) Param(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	val, ok := c.params[key]
	if !ok {
		panic("knowledgemap: route parameter '" + key + "' not found")
	}
	return val
}

func (c *ctxImpl) Status(code int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.headerWritten {
		c.logger.Warn("attempted to set status after headers written", "code", code)
		return
	}
	c.statusCode = code
}

func (c *ctxImpl) StatusCode() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statusCode
}

func (c *ctxImpl) Header() http.Header { return c.w.Header() }

func (c *ctxImpl) SetHeader(key, val string) { c.w.Header().Set(key, val) }

// begin records the status and reports whether headers may still be sent
func (c *ctxImpl) begin(code int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.headerWritten {
		c.logger.Warn("response already written", "code", code)
		return false
	}
	c.statusCode = code
	c.headerWritten = true
	return true
}

func (c *ctxImpl) JSON(code int, v any) error {
	if !c.begin(code) {
		return nil
	}
	c.w.Header().Set("Content-Type", "application/json")
	c.w.WriteHeader(code)
	return json.NewEncoder(c.w).Encode(v)
}

func (c *ctxImpl) Text(code int, msg string) error {
	return c.write(code, "text/plain; charset=utf-8", msg)
}

func (c *ctxImpl) HTML(code int, doc string) error {
	return c.write(code, "text/html; charset=utf-8", doc)
}

func (c *ctxImpl) write(code int, contentType, body string) error {
	if !c.begin(code) {
		return nil
	}
	c.w.Header().Set("Content-Type", contentType)
	c.w.WriteHeader(code)
	_, err := c.w.Write([]byte(body))
	return err
}

func (c *ctxImpl) Logger() *slog.Logger { return c.logger }
