package server

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/recera/knowledgemap/pkg/renderer/html"
	"github.com/recera/knowledgemap/pkg/vango/vdom"
)

// HandlerFunc is the signature for page handlers
type HandlerFunc func(ctx Ctx) (*vdom.VNode, error)

// APIHandlerFunc is the signature for API route handlers
type APIHandlerFunc func(ctx Ctx) (any, error)

// Middleware interface for before/after hooks
type Middleware interface {
	Before(ctx Ctx) error // return Stop() to abort chain
	After(ctx Ctx) error  // always called if Before succeeded
}

// RouteNode represents a node in the radix tree
type RouteNode struct {
	segment    string
	param      bool
	paramName  string
	paramType  string // "string" or "int"
	handler    HandlerFunc
	apiHandler APIHandlerFunc
	children   []*RouteNode
	middleware []Middleware
}

// mount is a raw http.Handler owning every path under prefix
type mount struct {
	prefix  string
	handler http.Handler
}

// Router manages all routes and middleware
type Router struct {
	root       *RouteNode
	mounts     []mount
	notFound   HandlerFunc
	middleware []Middleware
	mu         sync.RWMutex
}

// NewRouter creates a new router instance
func NewRouter() *Router {
	return &Router{root: &RouteNode{}}
}

// AddRoute registers a page handler for a path. Segments written as
// [name] or [name:int] capture a parameter.
func (r *Router) AddRoute(path string, handler HandlerFunc, middleware ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node := r.insert(path)
	node.handler = handler
	node.middleware = middleware
}

// AddAPIRoute registers an API handler for a path
func (r *Router) AddAPIRoute(path string, handler APIHandlerFunc, middleware ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node := r.insert(path)
	node.apiHandler = handler
	node.middleware = middleware
}

// Mount hands every request under prefix to h, bypassing the page
// pipeline. Used for the websocket endpoint and static assets.
func (r *Router) Mount(prefix string, h http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mounts = append(r.mounts, mount{prefix: prefix, handler: h})
}

// Use adds global middleware
func (r *Router) Use(middleware ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, middleware...)
}

// SetNotFound sets the 404 handler
func (r *Router) SetNotFound(handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notFound = handler
}

// Match finds a handler for the given path
func (r *Router) Match(path string) (HandlerFunc, map[string]string, []Middleware) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	params := make(map[string]string)
	node, matched := r.matchNode(r.root, splitPath(path), params)
	if !matched || (node.handler == nil && node.apiHandler == nil) {
		return r.notFound, params, r.middleware
	}

	allMiddleware := append([]Middleware{}, r.middleware...)
	allMiddleware = append(allMiddleware, node.middleware...)

	if node.apiHandler != nil {
		return wrapAPIHandler(node.apiHandler), params, allMiddleware
	}
	return node.handler, params, allMiddleware
}

func (r *Router) mounted(path string) (http.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.mounts {
		if strings.HasPrefix(path, m.prefix) {
			return m.handler, true
		}
	}
	return nil, false
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if h, ok := r.mounted(req.URL.Path); ok {
		h.ServeHTTP(w, req)
		return
	}

	ctx := NewContext(w, req)
	handler, params, middleware := r.Match(req.URL.Path)
	if handler == nil {
		ctx.Text(http.StatusNotFound, "Not Found")
		return
	}
	ctx = WithParams(ctx, params)

	defer func() {
		if err := recover(); err != nil {
			ctx.Logger().Error("panic in handler", "error", err)
			r.handleError(ctx, fmt.Errorf("internal server error: %v", err))
		}
	}()

	finalHandler := handler
	for i := len(middleware) - 1; i >= 0; i-- {
		mw := middleware[i]
		next := finalHandler
		finalHandler = func(c Ctx) (*vdom.VNode, error) {
			if err := mw.Before(c); err != nil {
				if err == ErrStop {
					return nil, nil // Middleware handled response
				}
				return nil, err
			}

			result, err := next(c)

			if afterErr := mw.After(c); afterErr != nil {
				c.Logger().Error("error in After middleware", "error", afterErr)
			}
			return result, err
		}
	}

	vnode, err := finalHandler(ctx)
	if err != nil {
		r.handleError(ctx, err)
		return
	}

	// nil means the response was already written
	if vnode == nil {
		return
	}

	htmlContent, err := html.RenderToString(vnode)
	if err != nil {
		r.handleError(ctx, fmt.Errorf("failed to render VNode: %w", err))
		return
	}
	ctx.HTML(ctx.StatusCode(), "<!DOCTYPE html>"+htmlContent)
}

func (r *Router) insert(path string) *RouteNode {
	node := r.root
	for _, segment := range splitPath(path) {
		node = r.findOrCreateChild(node, segment)
	}
	return node
}

// findOrCreateChild finds or creates a child node
func (r *Router) findOrCreateChild(parent *RouteNode, segment string) *RouteNode {
	if strings.HasPrefix(segment, "[") && strings.HasSuffix(segment, "]") {
		paramName, paramType := parseParamDef(segment[1 : len(segment)-1])

		for _, child := range parent.children {
			if child.param && child.paramName == paramName {
				return child
			}
		}
		node := &RouteNode{
			segment:   segment,
			param:     true,
			paramName: paramName,
			paramType: paramType,
		}
		parent.children = append(parent.children, node)
		return node
	}

	for _, child := range parent.children {
		if !child.param && child.segment == segment {
			return child
		}
	}
	node := &RouteNode{segment: segment}
	parent.children = append(parent.children, node)
	return node
}

// matchNode attempts to match a path against the tree. Static segments
// win over parameters.
func (r *Router) matchNode(node *RouteNode, segments []string, params map[string]string) (*RouteNode, bool) {
	if len(segments) == 0 {
		return node, true
	}

	segment := segments[0]
	remaining := segments[1:]

	for _, child := range node.children {
		if !child.param && child.segment == segment {
			return r.matchNode(child, remaining, params)
		}
	}

	for _, child := range node.children {
		if child.param && validateParam(segment, child.paramType) {
			params[child.paramName] = segment
			if result, ok := r.matchNode(child, remaining, params); ok {
				return result, true
			}
			delete(params, child.paramName)
		}
	}
	return nil, false
}

// handleError writes a 500 unless the handler already responded
func (r *Router) handleError(ctx Ctx, err error) {
	ctx.Logger().Error("handler error", "error", err)
	ctx.Text(http.StatusInternalServerError, "Internal Server Error")
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return []string{}
	}
	return strings.Split(path, "/")
}

func parseParamDef(def string) (name, paramType string) {
	name, paramType, ok := strings.Cut(def, ":")
	if !ok {
		paramType = "string"
	}
	return name, paramType
}

func validateParam(value, paramType string) bool {
	switch paramType {
	case "int":
		for _, r := range value {
			if r < '0' || r > '9' {
				return false
			}
		}
		return len(value) > 0
	default:
		return len(value) > 0
	}
}

func wrapAPIHandler(handler APIHandlerFunc) HandlerFunc {
	return func(ctx Ctx) (*vdom.VNode, error) {
		result, err := handler(ctx)
		if err != nil {
			var status *StatusError
			if asStatus(err, &status) {
				return nil, ctx.JSON(status.Code, map[string]string{"error": status.Message})
			}
			return nil, err
		}
		return nil, ctx.JSON(http.StatusOK, result)
	}
}
