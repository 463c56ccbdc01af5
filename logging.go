package store

import "time"

// TransitionEvent describes one committed update for logging.
type TransitionEvent struct {
	Label       string
	Subscribers int
	Duration    time.Duration
	Err         error
}

// Logger records store transitions.
type Logger interface {
	LogTransition(TransitionEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(TransitionEvent)

// LogTransition implements Logger.
func (f LoggerFunc) LogTransition(event TransitionEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogTransition(TransitionEvent) {}

// WithLogger attaches a transition logger to the store.
func WithLogger(logger Logger) StoreOption {
	return func(cfg *storeConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}
