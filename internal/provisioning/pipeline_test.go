package provisioning

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// phaseFunc creates a Phase from a function for testing.
type phaseFuncImpl struct {
	name string
	fn   func(*Context) error
}

func phaseFunc(name string, fn func(*Context) error) Phase {
	return &phaseFuncImpl{name: name, fn: fn}
}

func (p *phaseFuncImpl) Name() string                 { return p.name }
func (p *phaseFuncImpl) Provision(ctx *Context) error { return p.fn(ctx) }

func TestRunPhases_RunsInOrder(t *testing.T) {
	t.Parallel()

	var executed []string
	rec := NewRecorder()
	ctx := NewContext(context.Background(), rec)

	err := RunPhases(ctx, []Phase{
		phaseFunc("manager", func(_ *Context) error { executed = append(executed, "manager"); return nil }),
		phaseFunc("handshake", func(_ *Context) error { executed = append(executed, "handshake"); return nil }),
		phaseFunc("workers", func(_ *Context) error { executed = append(executed, "workers"); return nil }),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"manager", "handshake", "workers"}, executed)
	assert.Len(t, rec.EventsOfType(EventPhaseStarted), 3)
	assert.Len(t, rec.EventsOfType(EventPhaseCompleted), 3)
}

func TestRunPhases_StopsOnError(t *testing.T) {
	t.Parallel()

	var executed []string
	rec := NewRecorder()
	ctx := NewContext(context.Background(), rec)
	cause := fmt.Errorf("out of capacity")

	err := RunPhases(ctx, []Phase{
		phaseFunc("manager", func(_ *Context) error { executed = append(executed, "manager"); return nil }),
		phaseFunc("handshake", func(_ *Context) error { return cause }),
		phaseFunc("workers", func(_ *Context) error { executed = append(executed, "workers"); return nil }),
	})

	require.Error(t, err)
	assert.Equal(t, []string{"manager"}, executed)
	assert.ErrorIs(t, err, cause)

	var phaseErr *PhaseError
	require.True(t, errors.As(err, &phaseErr))
	assert.Equal(t, "handshake", phaseErr.Phase)
	assert.Contains(t, err.Error(), "handshake phase failed")
	assert.Len(t, rec.EventsOfType(EventPhaseFailed), 1)
}

func TestRunPhases_Empty(t *testing.T) {
	t.Parallel()
	require.NoError(t, RunPhases(NewContext(context.Background(), nil), nil))
}

func TestNewContext_DefaultsObserver(t *testing.T) {
	t.Parallel()

	ctx := NewContext(context.Background(), nil)
	assert.IsType(t, NopObserver{}, ctx.Observer)
	assert.NoError(t, ctx.Err())
}
