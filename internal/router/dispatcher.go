package router

import (
	"context"
	"errors"

	breeze_errors "breeze-chat/pkg/errors"
	"breeze-chat/pkg/logger"

	"github.com/google/uuid"
)

// Request is a decoded inbound frame. UserID carries the identity the
// transport established for the connection, if any.
type Request struct {
	Method Method
	Path   string
	Params map[string]string
	UserID string
}

// Middleware runs after the context is built and before the handler. The
// auth step lives here: it may set the authenticated identity, or leave it
// absent. A middleware that responds short-circuits the handler.
type Middleware func(c *Context)

// Dispatcher resolves requests against the route table and guarantees that
// every dispatch emits exactly one envelope.
type Dispatcher struct {
	router     *Router
	middleware []Middleware
	log        *logger.Logger
}

func NewDispatcher(r *Router, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewNop()
	}
	return &Dispatcher{router: r, log: log}
}

// Use appends a middleware. Called during startup wiring only.
func (d *Dispatcher) Use(m Middleware) {
	d.middleware = append(d.middleware, m)
}

// Dispatch runs one request to completion. No match responds 404; a handler
// error or panic responds 500 with a generic message, with the detail kept
// in the server log.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request, send SendFunc) {
	handler, params, ok := d.router.Match(req.Method, req.Path)
	if !ok {
		c := NewContext(ctx, req.Method, req.Path, nil, send)
		_ = c.Res(404, "route not found")
		return
	}

	merged := mergeParams(req.Params, params)
	c := NewContext(ctx, req.Method, req.Path, merged, send)
	if req.UserID != "" {
		if id, err := uuid.Parse(req.UserID); err == nil {
			c.SetUser(id)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			d.log.Errorf("panic handling %s %s: %v", req.Method, req.Path, r)
		}
		d.finish(c, req)
	}()

	for _, m := range d.middleware {
		m(c)
		if c.Responded() {
			return
		}
	}

	if err := handler(c); err != nil {
		if errors.Is(err, breeze_errors.ErrAlreadyResponded) {
			d.log.Warnf("handler for %s %s attempted a second response", req.Method, req.Path)
			return
		}
		d.log.Errorf("handler for %s %s failed: %v", req.Method, req.Path, err)
	}
}

// finish makes sure no request completes silently: whatever went wrong
// upstream, the caller still gets a terminal envelope.
func (d *Dispatcher) finish(c *Context, req Request) {
	if c.Responded() {
		return
	}
	d.log.Errorf("no response produced for %s %s", req.Method, req.Path)
	_ = c.Res(500, "server error")
}

func mergeParams(body, path map[string]string) map[string]string {
	if len(body) == 0 {
		return path
	}
	merged := make(map[string]string, len(body)+len(path))
	for k, v := range body {
		merged[k] = v
	}
	for k, v := range path {
		merged[k] = v
	}
	return merged
}
