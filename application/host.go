// Package application wires the event bus and the logging facade together for a host process.
package application

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"streembit-go/core/event"
	"streembit-go/core/eventbus"
	"streembit-go/infrastructure/logging"
)

// Host owns the bus subscriptions that bridge application events into the log.
type Host struct {
	bus    *eventbus.Bus
	logger *logging.Logger

	subscriptions []string
	started       bool
}

// HostConfig holds configuration for the Host.
type HostConfig struct {
	Bus    *eventbus.Bus
	Logger *logging.Logger
}

// NewHost creates a host. Missing dependencies fall back to the process-wide instances.
func NewHost(cfg *HostConfig) *Host {
	if cfg == nil {
		cfg = &HostConfig{}
	}
	if cfg.Bus == nil {
		cfg.Bus = eventbus.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}

	return &Host{
		bus:    cfg.Bus,
		logger: cfg.Logger,
	}
}

// Bus returns the host's event bus.
func (h *Host) Bus() *eventbus.Bus {
	return h.bus
}

// Start registers the log bridges and announces app-init.
func (h *Host) Start() error {
	if h.started {
		return nil
	}

	bridges := []func() (string, error){
		func() (string, error) { return eventbus.Subscribe(h.bus, h.handleAppLog) },
		func() (string, error) { return eventbus.Subscribe(h.bus, h.handleError) },
		func() (string, error) { return eventbus.Subscribe(h.bus, h.handleTaskInit) },
		func() (string, error) { return eventbus.Subscribe(h.bus, h.handleAppInit) },
	}

	for _, subscribe := range bridges {
		id, err := subscribe()
		if err != nil {
			h.unsubscribeAll()
			return fmt.Errorf("failed to register log bridge: %w", err)
		}
		h.subscriptions = append(h.subscriptions, id)
	}

	h.started = true
	h.bus.AppInit()
	return nil
}

// Stop removes the bridges, closes the bus and flushes the logger.
func (h *Host) Stop() error {
	h.unsubscribeAll()
	h.started = false
	h.bus.Close()

	var err error
	err = multierr.Append(err, h.logger.Flush())
	err = multierr.Append(err, h.logger.Close())
	return err
}

func (h *Host) unsubscribeAll() {
	for _, id := range h.subscriptions {
		h.bus.Unsubscribe(id)
	}
	h.subscriptions = nil
}

func (h *Host) handleAppInit(e *event.AppInit) {
	h.logger.Info("application initialized")
}

// handleAppLog writes app-log events at their own level; unknown levels are logged as info.
func (h *Host) handleAppLog(e *event.AppLog) {
	level, err := logging.ParseLevel(e.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	h.logger.Log(level, e.Message)
}

func (h *Host) handleError(e *event.ErrorEvent) {
	if e.Err == nil {
		return
	}
	if e.Payload != nil {
		format := "error event: " + strings.ReplaceAll(e.Err.Error(), "%", "%%") + ", payload: %j"
		h.logger.Error(format, e.Payload)
		return
	}
	h.logger.Error(e.Err)
}

func (h *Host) handleTaskInit(e *event.TaskInit) {
	h.logger.Debug("task init: %s", e.Task)
}
