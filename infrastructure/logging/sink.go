package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"streembit-go/infrastructure/shipper"
)

// Sink is a log output target.
type Sink interface {
	Write(level Level, msg string) error
	Flush() error
	Close() error
}

// handlerOptions lets every record through; thresholds are applied by the Logger.
var handlerOptions = &slog.HandlerOptions{
	Level:       LevelSilly.SlogLevel(),
	ReplaceAttr: replaceLevelAttr,
}

// ConsoleSink writes human-readable lines to a terminal.
type ConsoleSink struct {
	logger *slog.Logger
}

// NewConsoleSink creates a console sink writing to w, or os.Stdout when w is nil.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleSink{logger: slog.New(slog.NewTextHandler(w, handlerOptions))}
}

func (s *ConsoleSink) Write(level Level, msg string) error {
	s.logger.Log(context.Background(), level.SlogLevel(), msg)
	return nil
}

func (s *ConsoleSink) Flush() error { return nil }
func (s *ConsoleSink) Close() error { return nil }

// FileSink writes JSON lines to a size-rotated file.
type FileSink struct {
	path   string
	lj     *lumberjack.Logger
	logger *slog.Logger
	closed atomic.Bool
}

// NewFileSink opens a lumberjack-backed sink at path. The file itself is opened lazily.
func NewFileSink(path string, maxSizeMB, maxBackups int, compress bool) *FileSink {
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxSizeMB
	}
	if maxBackups <= 0 {
		maxBackups = DefaultMaxBackups
	}

	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   compress,
		LocalTime:  true,
	}

	return &FileSink{
		path:   path,
		lj:     lj,
		logger: slog.New(slog.NewJSONHandler(lj, handlerOptions)),
	}
}

// Path returns the primary log file path.
func (s *FileSink) Path() string {
	return s.path
}

// Write drops messages once the sink is closed, so a racing write cannot
// reopen a file that has already been rotated away.
func (s *FileSink) Write(level Level, msg string) error {
	if s.closed.Load() {
		return nil
	}
	s.logger.Log(context.Background(), level.SlogLevel(), msg)
	return nil
}

func (s *FileSink) Flush() error { return nil }

func (s *FileSink) Close() error {
	s.closed.Store(true)
	return s.lj.Close()
}

// RemoteSink hands entries to a shipper transport. Flushing happens on a
// background goroutine so callers never wait on the network.
type RemoteSink struct {
	transport shipper.Transport
	timeout   time.Duration
	onError   func(error)

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed atomic.Bool
}

// NewRemoteSink creates a sink backed by transport and starts its flusher.
// onError receives background flush failures; it may be nil.
func NewRemoteSink(transport shipper.Transport, onError func(error)) *RemoteSink {
	ctx, cancel := context.WithCancel(context.Background())
	s := &RemoteSink{
		transport: transport,
		timeout:   5 * time.Second,
		onError:   onError,
		wake:      make(chan struct{}, 1),
		ctx:       ctx,
		cancel:    cancel,
	}

	s.wg.Add(1)
	go s.flushLoop()
	return s
}

func (s *RemoteSink) Write(level Level, msg string) error {
	if s.closed.Load() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	return s.transport.Send(ctx, shipper.Entry{
		Time:    time.Now(),
		Level:   level.String(),
		Message: msg,
	})
}

// Flush asks the background flusher to ship pending entries and returns immediately.
// Requests made while a flush is queued are coalesced.
func (s *RemoteSink) Flush() error {
	if s.closed.Load() {
		return nil
	}
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// Close stops the flusher and closes the transport, which ships what is left.
func (s *RemoteSink) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.cancel()
	s.wg.Wait()
	return s.transport.Close()
}

func (s *RemoteSink) flushLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.wake:
			s.flushNow()
		}
	}
}

func (s *RemoteSink) flushNow() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.transport.Flush(ctx)
	if err != nil && !errors.Is(err, shipper.ErrClosed) && s.onError != nil {
		s.onError(err)
	}
}

var (
	_ Sink = (*ConsoleSink)(nil)
	_ Sink = (*FileSink)(nil)
	_ Sink = (*RemoteSink)(nil)
)
