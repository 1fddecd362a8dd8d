package router

import (
	"fmt"
	"strings"
)

// Method is the request verb carried on every inbound frame.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
)

// HandlerFunc handles one request. Expected outcomes (validation failures,
// missing resources) are reported through c.Res; a non-nil error is an
// unexpected failure that the dispatcher converts to a 500 response.
type HandlerFunc func(c *Context) error

type segment struct {
	literal string
	param   string // non-empty for ":name" segments
}

type route struct {
	method   Method
	pattern  string
	segments []segment
	handler  HandlerFunc
	// literal segments before the first parameter segment, used as the
	// match tie-break score
	literalPrefix int
}

// Router is the route table. It is populated once at startup and read-only
// afterwards, so Match needs no locking.
type Router struct {
	routes []*route
}

func New() *Router {
	return &Router{}
}

// Group returns a registration handle that prepends prefix to every pattern
// registered through it, e.g. New().Group("/user").
func (r *Router) Group(prefix string) *Group {
	return &Group{router: r, prefix: strings.TrimSuffix(prefix, "/")}
}

// Handle registers a binding. Duplicate (method, pattern) pairs are rejected.
func (r *Router) Handle(method Method, pattern string, handler HandlerFunc) error {
	if handler == nil {
		return fmt.Errorf("route %s %s: nil handler", method, pattern)
	}
	method = normalizeMethod(method)
	for _, existing := range r.routes {
		if existing.method == method && existing.pattern == pattern {
			return fmt.Errorf("route %s %s: already registered", method, pattern)
		}
	}

	segments := splitPath(pattern)
	compiled := make([]segment, len(segments))
	literalPrefix := len(segments)
	for i, s := range segments {
		if strings.HasPrefix(s, ":") {
			name := s[1:]
			if name == "" {
				return fmt.Errorf("route %s %s: empty parameter name", method, pattern)
			}
			compiled[i] = segment{param: name}
			if literalPrefix > i {
				literalPrefix = i
			}
		} else {
			compiled[i] = segment{literal: s}
		}
	}

	r.routes = append(r.routes, &route{
		method:        method,
		pattern:       pattern,
		segments:      compiled,
		handler:       handler,
		literalPrefix: literalPrefix,
	})
	return nil
}

// Match resolves a concrete (method, path) pair to a handler and the values
// bound by its parameter segments. When several patterns cover the path, the
// one with more literal segments before its first parameter wins; remaining
// ties go to registration order.
func (r *Router) Match(method Method, path string) (HandlerFunc, map[string]string, bool) {
	method = normalizeMethod(method)
	parts := splitPath(path)

	var best *route
	var bestParams map[string]string
	for _, rt := range r.routes {
		if rt.method != method || len(rt.segments) != len(parts) {
			continue
		}
		params, ok := matchSegments(rt.segments, parts)
		if !ok {
			continue
		}
		if best == nil || rt.literalPrefix > best.literalPrefix {
			best = rt
			bestParams = params
		}
	}
	if best == nil {
		return nil, nil, false
	}
	return best.handler, bestParams, true
}

func matchSegments(segments []segment, parts []string) (map[string]string, bool) {
	var params map[string]string
	for i, s := range segments {
		if s.param != "" {
			if params == nil {
				params = make(map[string]string, 2)
			}
			params[s.param] = parts[i]
			continue
		}
		if s.literal != parts[i] {
			return nil, false
		}
	}
	return params, true
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func normalizeMethod(m Method) Method {
	return Method(strings.ToUpper(string(m)))
}

// Group registers routes under a shared path prefix.
type Group struct {
	router *Router
	prefix string
}

func (g *Group) handle(method Method, pattern string, handler HandlerFunc) *Group {
	if err := g.router.Handle(method, g.prefix+pattern, handler); err != nil {
		// Routes are wired once at process start; a bad registration is a
		// programming error.
		panic(err)
	}
	return g
}

func (g *Group) GET(pattern string, handler HandlerFunc) *Group {
	return g.handle(MethodGet, pattern, handler)
}

func (g *Group) POST(pattern string, handler HandlerFunc) *Group {
	return g.handle(MethodPost, pattern, handler)
}

func (g *Group) PUT(pattern string, handler HandlerFunc) *Group {
	return g.handle(MethodPut, pattern, handler)
}

func (g *Group) DELETE(pattern string, handler HandlerFunc) *Group {
	return g.handle(MethodDelete, pattern, handler)
}
