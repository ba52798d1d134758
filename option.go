package tabledb

// Options configures database behavior.
type Options struct {
	logger Logger
}

func defaultOptions() Options {
	return Options{
		logger: DiscardLogger{},
	}
}

// Option configures database options using the functional options pattern.
type Option func(*Options)

// WithLogger routes internal database events to the given logger.
// The default logger discards everything.
func WithLogger(logger Logger) Option {
	return func(opts *Options) {
		opts.logger = logger
	}
}
