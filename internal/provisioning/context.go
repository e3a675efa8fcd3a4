package provisioning

import (
	"context"
)

// Context wraps the dependencies shared by the phases of one run. Phase
// results live on the phases themselves.
type Context struct {
	context.Context
	Observer Observer
}

// NewContext creates a provisioning context. A nil observer is replaced by a
// NopObserver.
func NewContext(ctx context.Context, observer Observer) *Context {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Context{
		Context:  ctx,
		Observer: observer,
	}
}
