package provisioning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeFields_EventFieldsOverrideContext(t *testing.T) {
	t.Parallel()

	event := mergeFields(Event{Type: EventProgress, Fields: map[string]string{"backend": "aws"}},
		map[string]string{"backend": "default", "cluster": "demo"})

	assert.Equal(t, "aws", event.Fields["backend"])
	assert.Equal(t, "demo", event.Fields["cluster"])
	assert.False(t, event.Timestamp.IsZero())
}

func TestLogHelpers(t *testing.T) {
	t.Parallel()

	rec := NewRecorder()
	LogPhaseStart(rec, "manager")
	LogResourceCreating(rec, "manager", "instance", "demo-manager")
	LogResourceCreated(rec, "manager", "instance", "demo-manager", "42")
	LogResourceFailed(rec, "workers", "instance", "demo-worker", assert.AnError)
	LogResourceDeleting(rec, "delete", "instance", "demo-manager")
	LogResourceDeleted(rec, "delete", "instance", "demo-manager")
	LogStateTransition(rec, "INIT", "MANAGER_PROVISIONING")
	LogPhaseComplete(rec, "manager", 2*time.Second)
	LogPhaseFailed(rec, "handshake", assert.AnError)

	events := rec.Events()
	require.Len(t, events, 9)

	assert.Equal(t, EventPhaseStarted, events[0].Type)
	assert.Equal(t, "demo-manager", events[1].Resource)
	assert.Equal(t, "42", events[2].Fields["id"])
	assert.Equal(t, EventResourceFailed, events[3].Type)
	assert.Contains(t, events[3].Message, assert.AnError.Error())
	assert.Equal(t, EventResourceDeleted, events[5].Type)
	assert.Equal(t, "MANAGER_PROVISIONING", events[6].Fields["to"])
	assert.Equal(t, "completed in 2s", events[7].Message)
	assert.Equal(t, EventPhaseFailed, events[8].Type)
}

func TestNopObserver(t *testing.T) {
	t.Parallel()

	var observer Observer = NopObserver{}
	observer.Printf("x %d", 1)
	observer.Event(Event{Type: EventProgress})
	observer.Progress("p", 1, 2)
	assert.Equal(t, observer, observer.WithFields(map[string]string{"a": "b"}))
}
