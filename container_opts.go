package ebc

import (
	"log/slog"
	"slices"
)

// DefaultPrefix is the entry name prefix used when no WithPrefix option is set.
const DefaultPrefix = "ebc"

// Option configures a Container.
type Option func(*config)

type config struct {
	logger   *slog.Logger
	tempDir  string
	prefix   string
	codec    Codec
	commands []string
}

func newConfig(opts []Option) config {
	cfg := config{prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.codec == nil {
		cfg.codec = &XARCodec{TempDir: cfg.tempDir, Logger: cfg.logger}
	}
	return cfg
}

// WithLogger sets the logger for pipeline diagnostics.
// The default discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTempDir sets the directory used for scratch files and extracted
// payloads. The default is os.TempDir().
func WithTempDir(dir string) Option {
	return func(c *config) {
		c.tempDir = dir
	}
}

// WithPrefix sets the name prefix that scopes extracted entries, typically
// the object name and architecture. The default is DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(c *config) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithCodec replaces the archive codec. The default is a XARCodec using the
// configured temp dir and logger.
func WithCodec(codec Codec) Option {
	return func(c *config) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// WithCommands records the command line that produced a single-unit
// payload. It is attached as the Clang command list of the embedded file.
// Archives ignore it; their commands come from the table of contents.
func WithCommands(cmds []string) Option {
	return func(c *config) {
		c.commands = slices.Clone(cmds)
	}
}
