package provisioning

import (
	"fmt"
	"sync"
)

// Recorder is an Observer that keeps events and messages in memory. It is safe
// for concurrent use and is meant for tests and dry runs.
type Recorder struct {
	mu       *sync.Mutex
	events   *[]Event
	messages *[]string
	fields   map[string]string
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		mu:       &sync.Mutex{},
		events:   &[]Event{},
		messages: &[]string{},
		fields:   map[string]string{},
	}
}

// Printf implements Logger.
func (r *Recorder) Printf(format string, v ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.messages = append(*r.messages, fmt.Sprintf(format, v...))
}

// Event implements Observer.
func (r *Recorder) Event(event Event) {
	event = mergeFields(event, r.fields)
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.events = append(*r.events, event)
}

// Progress implements Observer.
func (r *Recorder) Progress(phase string, current, total int) {
	r.Event(Event{
		Type:    EventProgress,
		Phase:   phase,
		Message: fmt.Sprintf("%d/%d", current, total),
	})
}

// WithFields returns a child that records into the same buffers.
func (r *Recorder) WithFields(fields map[string]string) Observer {
	return &Recorder{
		mu:       r.mu,
		events:   r.events,
		messages: r.messages,
		fields:   joinFields(r.fields, fields),
	}
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(*r.events))
	copy(out, *r.events)
	return out
}

// EventsOfType returns recorded events of type t.
func (r *Recorder) EventsOfType(t EventType) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Messages returns a copy of the recorded Printf messages.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(*r.messages))
	copy(out, *r.messages)
	return out
}
