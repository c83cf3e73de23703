package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandler_RoutesThroughLogger(t *testing.T) {
	logger, _, console := consoleLogger(t, "info")
	slogger := slog.New(NewHandler(logger))

	slogger.Debug("dropped by threshold")
	slogger.Info("peer connected", "peer", "node-1")
	slogger.With("component", "dht").WithGroup("req").Warn("slow", "ms", 250)

	out := console.String()
	assert.NotContains(t, out, "dropped by threshold")
	assert.Contains(t, out, `msg="peer connected peer=node-1"`)
	assert.Contains(t, out, "slow component=dht req.ms=250")
	assert.Contains(t, out, "level=warn")
}

func TestHandler_Fallback(t *testing.T) {
	var fallback bytes.Buffer
	slogger := slog.New(NewHandler(New(&fallback)))

	slogger.Error("startup failed", slog.Group("cfg", "path", "a.yaml"))
	assert.Equal(t, "startup failed cfg.path=a.yaml\n", fallback.String())
}
