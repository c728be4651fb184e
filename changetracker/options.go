package changetracker

// config carries the construction-time settings shared by Trackable and
// TrackedCollection. A TrackedCollection passes its config on to the
// Trackables it creates for its elements.
type config struct {
	fields       []FieldNameString
	canonicalize CanonicalizeFunc
	encode       EncodeFunc
	observability
}

// Option defines a functional option for configuring a Trackable or a
// TrackedCollection.
type Option func(*config) error

func newConfig(opts ...Option) (config, error) {
	cfg := config{
		canonicalize: DefaultCanonicalizer(),
		encode:       DefaultEncoder(),
	}

	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return config{}, err
		}
	}

	return cfg, nil
}

// WithFields restricts tracking to the named fields. Names that match no
// classified field are ignored silently, duplicates have no effect beyond the
// first occurrence. Without this option every classified field is tracked.
func WithFields(names ...FieldNameString) Option {
	return func(cfg *config) error {
		cfg.fields = append(cfg.fields, names...)
		return nil
	}
}

// WithCanonicalizer sets the serializer used to reduce structured field
// values to canonical strings. Failures of the serializer are not recovered
// internally; they surface from the operation that invoked it.
func WithCanonicalizer(canonicalize CanonicalizeFunc) Option {
	return func(cfg *config) error {
		if canonicalize == nil {
			return ErrNilCanonicalizerSupplied
		}

		cfg.canonicalize = canonicalize

		return nil
	}
}

// WithEncoder sets the encoder used to render change records and
// added/removed elements to text.
func WithEncoder(encode EncodeFunc) Option {
	return func(cfg *config) error {
		if encode == nil {
			return ErrNilEncoderSupplied
		}

		cfg.encode = encode

		return nil
	}
}

// WithLogger sets the logger. Diff results are logged at debug level,
// serializer failures at error level.
func WithLogger(logger Logger) Option {
	return func(cfg *config) error {
		cfg.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector. It receives diff durations,
// changed-field counts, and serializer failure counts.
func WithMetrics(collector MetricsCollector) Option {
	return func(cfg *config) error {
		cfg.metricsCollector = collector
		return nil
	}
}
