package pocketvec

import (
	"log/slog"

	"github.com/hupe1980/pocketvec/cipher"
	"github.com/hupe1980/pocketvec/internal/fs"
)

type options struct {
	quantized        bool
	logger           *Logger
	cipher           cipher.Cipher
	fs               fs.FileSystem
	checksum         bool
	verifyChecksum   bool
	metricsCollector MetricsCollector
}

// Option configures store construction.
type Option func(*options)

// WithQuantization stores vectors as int8 codes with per-vector parameters
// instead of float32. A later Load replaces the mode with the file's.
func WithQuantization(enabled bool) Option {
	return func(o *options) {
		o.quantized = enabled
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := pocketvec.NewJSONLogger(slog.LevelInfo)
//	s := pocketvec.NewHeapStore(pocketvec.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithCipher sets the cipher used by Save and Load when a key is given.
// If nil is passed, cipher.Default (XOR) is used.
func WithCipher(c cipher.Cipher) Option {
	return func(o *options) {
		if c == nil {
			c = cipher.Default
		}
		o.cipher = c
	}
}

// WithChecksum makes SaveFlat store a CRC32C of the file body in the
// reserved header bytes. Readers that ignore it still accept the file.
func WithChecksum(enabled bool) Option {
	return func(o *options) {
		o.checksum = enabled
	}
}

// WithVerifyChecksum makes FlatStore.Load verify the stored CRC32C, when
// present, and reject mismatching files with ErrChecksumMismatch. This reads
// the whole file once.
func WithVerifyChecksum(enabled bool) Option {
	return func(o *options) {
		o.verifyChecksum = enabled
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
//	metrics := &pocketvec.BasicMetricsCollector{}
//	s := pocketvec.NewHeapStore(pocketvec.WithMetricsCollector(metrics))
//	// ... use s ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// withFileSystem swaps the file system used by Save, SaveFlat and Load.
func withFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		cipher:           cipher.Default,
		fs:               fs.Default,
		metricsCollector: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.fs == nil {
		o.fs = fs.Default
	}
	return o
}
