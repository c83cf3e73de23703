package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"

	"streembit-go/infrastructure/shipper"
)

// activeSink is a sink together with its current threshold.
type activeSink struct {
	name         string
	sink         Sink
	threshold    Level
	flushOnWrite bool
}

// Logger is the logging facade. The zero value is not usable; call New.
type Logger struct {
	configMu sync.Mutex // serializes Configure

	mu       sync.RWMutex
	sinks    []*activeSink
	fallback io.Writer
}

// New creates a logger with no sinks. Until Configure succeeds every message is
// written verbatim to fallback, or os.Stdout when fallback is nil.
func New(fallback io.Writer) *Logger {
	if fallback == nil {
		fallback = os.Stdout
	}
	return &Logger{fallback: &syncWriter{w: fallback}}
}

// newMongoTransport is swapped in tests.
var newMongoTransport = func(ctx context.Context, cfg *shipper.MongoConfig, logger *slog.Logger) (shipper.Transport, error) {
	transport, err := shipper.NewMongoTransport(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return transport, nil
}

// Configure validates opts and replaces the active sinks. Validation errors leave
// the current sinks untouched. A file or remote sink that cannot be opened is
// reported on the console and skipped.
func (l *Logger) Configure(opts *Options) error {
	level, err := opts.validate()
	if err != nil {
		return err
	}

	l.configMu.Lock()
	defer l.configMu.Unlock()

	// A remote transport may dial out, so it is built before l.mu is taken.
	var remote *activeSink
	if opts.Remote != nil {
		transport, err := l.newTransport(opts.Remote)
		if err != nil {
			l.fallbackf("Error in creating remote log transport: %v", err)
		} else {
			remote = &activeSink{
				name:         "remote",
				sink:         NewRemoteSink(transport, l.remoteFlushFailed),
				threshold:    level,
				flushOnWrite: true,
			}
		}
	}

	retired, logfile := l.replaceSinks(opts, level, remote)

	// Retired remote sinks ship their backlog while closing.
	if err := closeSinks(retired); err != nil {
		l.fallbackf("Error in closing log sinks: %v", err)
	}

	if logfile != "" {
		l.Info("logfile: %s", logfile)
	}
	return nil
}

// replaceSinks swaps in the new sink set. Local sinks of the previous set are
// closed under the lock so the file can be rotated; remote ones are returned
// for the caller to close.
func (l *Logger) replaceSinks(opts *Options, level Level, remote *activeSink) (retired []*activeSink, logfile string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var local []*activeSink
	for _, s := range l.sinks {
		if s.name == "remote" {
			retired = append(retired, s)
		} else {
			local = append(local, s)
		}
	}
	if err := closeSinks(local); err != nil {
		l.fallbackf("Error in closing log sinks: %v", err)
	}

	var next []*activeSink

	if opts.Console != nil {
		w := opts.Console.Writer
		if w == nil && opts.Console.Stderr {
			w = os.Stderr
		}
		next = append(next, &activeSink{name: "console", sink: NewConsoleSink(w), threshold: level})
	}

	if opts.File != nil {
		path, err := prepareLogFile(opts.File, time.Now())
		if err != nil {
			l.fallbackf("Error in preparing log file: %v", err)
		} else {
			sink := NewFileSink(path, opts.File.MaxSizeMB, opts.File.MaxBackups, opts.File.Compress)
			next = append(next, &activeSink{name: "file", sink: sink, threshold: level})
			logfile = path
		}
	}

	if remote != nil {
		next = append(next, remote)
	}

	l.sinks = next
	return retired, logfile
}

// newTransport picks the injected transport, or derives one from the endpoint scheme.
func (l *Logger) newTransport(opts *RemoteOptions) (shipper.Transport, error) {
	if opts.Transport != nil {
		return opts.Transport, nil
	}

	if strings.HasPrefix(opts.Endpoint, "mongodb://") || strings.HasPrefix(opts.Endpoint, "mongodb+srv://") {
		return newMongoTransport(context.Background(), &shipper.MongoConfig{
			URI:      opts.Endpoint,
			Username: opts.Username,
			Token:    opts.Token,
		}, slog.New(slog.NewTextHandler(l.fallback, nil)))
	}

	return shipper.NewHTTPTransport(&shipper.HTTPConfig{
		Endpoint: opts.Endpoint,
		Token:    opts.Token,
	}), nil
}

func (l *Logger) remoteFlushFailed(err error) {
	l.fallbackf("Error in flushing remote log: %v", err)
}

// SetLevel changes the threshold of every active sink.
func (l *Logger) SetLevel(level Level) {
	if !level.Valid() {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.sinks {
		s.threshold = level
	}
}

// Configured reports whether at least one sink is active.
func (l *Logger) Configured() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sinks) > 0
}

// Log writes msg at level to every sink whose threshold admits it.
// Sinks are called outside the lock; none of them blocks on the network.
func (l *Logger) Log(level Level, msg string) {
	sinks := l.snapshot()
	if len(sinks) == 0 {
		fmt.Fprintln(l.fallback, msg)
		return
	}

	for _, s := range sinks {
		if !level.Enabled(s.threshold) {
			continue
		}
		if err := s.sink.Write(level, msg); err != nil {
			l.fallbackf("Error in writing to %s log: %v", s.name, err)
			continue
		}
		if s.flushOnWrite {
			if err := s.sink.Flush(); err != nil {
				l.fallbackf("Error in flushing %s log: %v", s.name, err)
			}
		}
	}
}

// snapshot copies the active sinks together with their current thresholds.
func (l *Logger) snapshot() []activeSink {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.sinks) == 0 {
		return nil
	}
	out := make([]activeSink, len(l.sinks))
	for i, s := range l.sinks {
		out[i] = *s
	}
	return out
}

// Flush flushes every active sink.
func (l *Logger) Flush() error {
	var err error
	for _, s := range l.snapshot() {
		err = multierr.Append(err, s.sink.Flush())
	}
	return err
}

// Close flushes and closes every sink. The logger falls back to console output afterwards.
func (l *Logger) Close() error {
	l.mu.Lock()
	sinks := l.sinks
	l.sinks = nil
	l.mu.Unlock()

	return closeSinks(sinks)
}

func closeSinks(sinks []*activeSink) error {
	var err error
	for _, s := range sinks {
		err = multierr.Append(err, s.sink.Flush())
		err = multierr.Append(err, s.sink.Close())
	}
	return err
}

// fallbackf writes a diagnostic straight to the fallback writer.
func (l *Logger) fallbackf(format string, args ...any) {
	fmt.Fprintf(l.fallback, format+"\n", args...)
}

// syncWriter serializes writes; the fallback is shared with background flushers.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
