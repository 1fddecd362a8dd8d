package router

import (
	"context"

	breeze_errors "breeze-chat/pkg/errors"

	"github.com/google/uuid"
)

// Envelope is the single response every request terminates with. Status
// reuses the HTTP code vocabulary; Data is an arbitrary payload or a plain
// message string.
type Envelope struct {
	Status int `json:"status"`
	Data   any `json:"data,omitempty"`
}

// SendFunc hands a finished envelope to the transport for serialization.
type SendFunc func(Envelope) error

// Context carries per-request state through a dispatch. It is owned by the
// single goroutine handling the request, so it needs no locking.
type Context struct {
	Method Method
	Path   string

	ctx       context.Context
	params    map[string]string
	userID    uuid.UUID
	hasUser   bool
	responded bool
	send      SendFunc
}

func NewContext(ctx context.Context, method Method, path string, params map[string]string, send SendFunc) *Context {
	return &Context{
		Method: normalizeMethod(method),
		Path:   path,
		ctx:    ctx,
		params: params,
		send:   send,
	}
}

// Context returns the request-scoped context for collaborator calls.
func (c *Context) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// Param returns a named parameter extracted from the path, or the value
// supplied in the request body under that name. Path bindings win.
func (c *Context) Param(name string) string {
	return c.params[name]
}

// HasParam reports whether name was supplied at all, so handlers can tell a
// missing field from an empty one.
func (c *Context) HasParam(name string) bool {
	_, ok := c.params[name]
	return ok
}

// SetUser records the authenticated identity. The slot is written at most
// once; later calls are ignored.
func (c *Context) SetUser(id uuid.UUID) {
	if c.hasUser || id == uuid.Nil {
		return
	}
	c.userID = id
	c.hasUser = true
}

// User returns the authenticated identity, if one was set before dispatch.
func (c *Context) User() (uuid.UUID, bool) {
	return c.userID, c.hasUser
}

// RequireUser is the auth guard handlers run before any side effect. When no
// identity is present it terminates the request with 401 and returns false.
func (c *Context) RequireUser() (uuid.UUID, bool) {
	if c.hasUser {
		return c.userID, true
	}
	_ = c.Res(401, "please login first")
	return uuid.Nil, false
}

// Res terminates the request with a status and optional payload. Exactly one
// call succeeds per request; any further call returns ErrAlreadyResponded
// without emitting a second envelope.
func (c *Context) Res(status int, data ...any) error {
	if c.responded {
		return breeze_errors.ErrAlreadyResponded
	}
	c.responded = true

	env := Envelope{Status: status}
	if len(data) > 0 {
		env.Data = data[0]
	}
	if c.send == nil {
		return nil
	}
	return c.send(env)
}

// Responded reports whether the terminal response has been emitted.
func (c *Context) Responded() bool {
	return c.responded
}
