package provisioning

import (
	"fmt"

	"github.com/go-logr/logr"
)

// LogrObserver forwards provisioning output to a logr.Logger.
type LogrObserver struct {
	logger logr.Logger
	fields map[string]string
}

// NewLogrObserver creates an observer backed by logger.
func NewLogrObserver(logger logr.Logger) *LogrObserver {
	return &LogrObserver{logger: logger, fields: make(map[string]string)}
}

// Printf implements Logger.
func (o *LogrObserver) Printf(format string, v ...interface{}) {
	o.logger.Info(fmt.Sprintf(format, v...), o.keysAndValues(nil)...)
}

// Event implements Observer. Failures are logged as errors, everything else at info.
func (o *LogrObserver) Event(event Event) {
	kv := []interface{}{"event", string(event.Type)}
	if event.Phase != "" {
		kv = append(kv, "phase", event.Phase)
	}
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}
	kv = o.keysAndValues(event.Fields, kv...)

	switch event.Type {
	case EventPhaseFailed, EventResourceFailed:
		o.logger.Error(nil, event.Message, kv...)
	case EventHandshakeAttempt, EventProgress:
		o.logger.V(1).Info(event.Message, kv...)
	default:
		o.logger.Info(event.Message, kv...)
	}
}

// Progress implements Observer.
func (o *LogrObserver) Progress(phase string, current, total int) {
	o.logger.V(1).Info("progress", o.keysAndValues(nil, "phase", phase, "current", current, "total", total)...)
}

// WithFields implements Observer.
func (o *LogrObserver) WithFields(fields map[string]string) Observer {
	return &LogrObserver{logger: o.logger, fields: joinFields(o.fields, fields)}
}

func (o *LogrObserver) keysAndValues(extra map[string]string, kv ...interface{}) []interface{} {
	merged := joinFields(o.fields, extra)
	for k, v := range merged {
		kv = append(kv, k, v)
	}
	return kv
}
