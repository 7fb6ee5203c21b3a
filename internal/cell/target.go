package cell

import "log/slog"

// Target is anything a mechanism can connect to. The set of implementations
// is closed: *Compartment, *Conductance and *Synapse.
type Target interface {
	isTarget()
}

func (*Compartment) isTarget() {}
func (*Conductance) isTarget() {}
func (*Synapse) isTarget()     {}

// Reporter receives configuration errors the moment they are detected,
// before they are returned to the caller.
type Reporter interface {
	Report(err error)
}

type ReporterFunc func(err error)

func (f ReporterFunc) Report(err error) { f(err) }

// LogReporter reports errors on a structured logger, slog.Default() if nil.
type LogReporter struct {
	Logger *slog.Logger
}

func (r LogReporter) Report(err error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("model configuration error", "err", err)
}
