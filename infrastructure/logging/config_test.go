package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts *Options
		want error
	}{
		{"no options", nil, ErrMissingOptions},
		{"no level", &Options{Console: &ConsoleOptions{}}, ErrMissingLevel},
		{"invalid level", &Options{Level: "nothing", Console: &ConsoleOptions{}}, ErrInvalidLevel},
		{"no transport", &Options{Level: "debug"}, ErrNoTransportSelected},
		{"remote without token", &Options{Level: "debug", Remote: &RemoteOptions{}}, ErrMissingToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fallback bytes.Buffer
			logger := New(&fallback)

			err := logger.Configure(tt.opts)
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, logger.Configured())
		})
	}
}

func TestConfigure_ValidationKeepsSinks(t *testing.T) {
	var console bytes.Buffer
	logger := New(&bytes.Buffer{})
	require.NoError(t, logger.Configure(&Options{Level: "info", Console: &ConsoleOptions{Writer: &console}}))

	err := logger.Configure(&Options{Level: "info", Console: &ConsoleOptions{}, Remote: &RemoteOptions{}})
	require.ErrorIs(t, err, ErrMissingToken)

	logger.Info("still here")
	assert.Contains(t, console.String(), "still here")
}

func TestParseOptions(t *testing.T) {
	data := []byte(`
loglevel: verbose
console: {}
file:
  logdir: /var/log/streembit
  logfile: node.log
  maxsize: 8
remote:
  token: secret
  endpoint: https://logs.example.com/v1/ingest
`)

	opts, err := ParseOptions(data)
	require.NoError(t, err)

	assert.Equal(t, "verbose", opts.Level)
	require.NotNil(t, opts.Console)
	require.NotNil(t, opts.File)
	assert.Equal(t, "/var/log/streembit", opts.File.Dir)
	assert.Equal(t, "node.log", opts.File.Name)
	assert.Equal(t, 8, opts.File.MaxSizeMB)
	require.NotNil(t, opts.Remote)
	assert.Equal(t, "secret", opts.Remote.Token)
	assert.Equal(t, "https://logs.example.com/v1/ingest", opts.Remote.Endpoint)
}

func TestParseOptions_TransportsShorthand(t *testing.T) {
	opts, err := ParseOptions([]byte("loglevel: debug\ntransports: [console, file]\n"))
	require.NoError(t, err)

	assert.NotNil(t, opts.Console)
	assert.NotNil(t, opts.File)
	assert.Nil(t, opts.Remote)

	_, err = ParseOptions([]byte("loglevel: debug\ntransports: [syslog]\n"))
	assert.Error(t, err)
}

func TestParseOptions_NullSectionNotSelected(t *testing.T) {
	opts, err := ParseOptions([]byte("loglevel: debug\nconsole:\n"))
	require.NoError(t, err)

	_, err = opts.validate()
	assert.ErrorIs(t, err, ErrNoTransportSelected)
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logging.yaml")
	require.NoError(t, os.WriteFile(path, []byte("loglevel: warn\nconsole: {}\n"), 0o644))

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", opts.Level)

	_, err = LoadOptions(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestContextLogger(t *testing.T) {
	logger := New(&bytes.Buffer{})
	ctx := With(context.Background(), logger)

	assert.Same(t, logger, From(ctx))
	assert.Same(t, Default(), From(context.Background()))
	assert.Same(t, Default(), Default())
}
