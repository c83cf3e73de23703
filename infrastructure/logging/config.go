// Package logging provides the process-wide logging facade. Log calls fan out to
// the configured sinks (console, rotating file, remote shipper) and fall back to
// plain console output until Configure succeeds.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"streembit-go/infrastructure/shipper"
)

// Configuration errors returned by Configure.
var (
	ErrMissingOptions      = errors.New("logging: missing options")
	ErrMissingLevel        = errors.New("logging: missing log level")
	ErrInvalidLevel        = errors.New("logging: invalid log level")
	ErrNoTransportSelected = errors.New("logging: no transport selected")
	ErrMissingToken        = errors.New("logging: missing remote token")
)

const (
	// DefaultFileName is the primary log file name.
	DefaultFileName = "streembit.log"
	// DefaultMaxSizeMB is the size of a log file before lumberjack rotates it.
	DefaultMaxSizeMB = 4
	// DefaultMaxBackups is the number of rotated files lumberjack keeps.
	DefaultMaxBackups = 100
)

// Options selects and configures the sinks.
type Options struct {
	// Level is the minimum severity every sink starts with.
	Level string `yaml:"loglevel"`
	// Transports is a shorthand that enables sections by name ("console", "file", "remote").
	Transports []string `yaml:"transports,omitempty"`

	Console *ConsoleOptions `yaml:"console,omitempty"`
	File    *FileOptions    `yaml:"file,omitempty"`
	Remote  *RemoteOptions  `yaml:"remote,omitempty"`
}

// ConsoleOptions configures the console sink.
type ConsoleOptions struct {
	// Stderr writes to os.Stderr instead of os.Stdout.
	Stderr bool `yaml:"stderr,omitempty"`
	// Writer overrides the destination entirely.
	Writer io.Writer `yaml:"-"`
}

// FileOptions configures the rotating file sink.
type FileOptions struct {
	// Dir is the log directory. Defaults to <cwd>/logs.
	Dir string `yaml:"logdir,omitempty"`
	// Name is the primary log file name. An absolute path also sets Dir.
	Name string `yaml:"logfile,omitempty"`
	// MaxSizeMB is the maximum size in megabytes of a single log file before rotation.
	MaxSizeMB int `yaml:"maxsize,omitempty"`
	// MaxBackups is the maximum number of old log files to retain.
	MaxBackups int `yaml:"maxfiles,omitempty"`
	// Compress determines if rotated log files should be compressed.
	Compress bool `yaml:"compress,omitempty"`
}

// RemoteOptions configures the remote shipper sink.
type RemoteOptions struct {
	Token    string `yaml:"token"`
	Endpoint string `yaml:"endpoint,omitempty"`
	// Username is only used by the MongoDB transport.
	Username string `yaml:"username,omitempty"`
	// Transport overrides the transport derived from Endpoint.
	Transport shipper.Transport `yaml:"-"`
}

// LoadOptions reads options from a YAML file.
func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read log config %s: %w", path, err)
	}

	opts, err := ParseOptions(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log config %s: %w", path, err)
	}
	return opts, nil
}

// ParseOptions decodes YAML options and expands the transports shorthand.
func ParseOptions(data []byte) (*Options, error) {
	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, err
	}

	for _, name := range opts.Transports {
		switch name {
		case "console":
			if opts.Console == nil {
				opts.Console = &ConsoleOptions{}
			}
		case "file":
			if opts.File == nil {
				opts.File = &FileOptions{}
			}
		case "remote":
			if opts.Remote == nil {
				opts.Remote = &RemoteOptions{}
			}
		default:
			return nil, fmt.Errorf("unknown transport %q", name)
		}
	}

	return &opts, nil
}

// validate checks options in a fixed order and returns the starting level.
func (o *Options) validate() (Level, error) {
	if o == nil {
		return 0, ErrMissingOptions
	}
	if o.Level == "" {
		return 0, ErrMissingLevel
	}
	level, err := ParseLevel(o.Level)
	if err != nil {
		return 0, err
	}
	if o.Console == nil && o.File == nil && o.Remote == nil {
		return 0, ErrNoTransportSelected
	}
	if o.Remote != nil && o.Remote.Token == "" {
		return 0, ErrMissingToken
	}
	return level, nil
}

// DefaultLogDir returns <cwd>/logs, or ./logs if the working directory is unknown.
func DefaultLogDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "logs"
	}
	return filepath.Join(wd, "logs")
}

// --- Global logger access ---

var (
	defaultLogger *Logger
	defaultOnce   sync.Once
)

// Default returns the process-wide logger, creating it on first use.
func Default() *Logger {
	defaultOnce.Do(func() {
		defaultLogger = New(nil)
	})
	return defaultLogger
}

// --- Context-based logging ---

type ctxKey struct{}

// With returns a new context that carries the given logger.
func With(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// From extracts the logger from context. If none is present, returns Default().
func From(ctx context.Context) *Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(ctxKey{}).(*Logger); ok && logger != nil {
		return logger
	}
	return Default()
}
