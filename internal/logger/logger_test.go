package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"WARNING": zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel,
		"panic":   zapcore.PanicLevel,
		"fatal":   zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestResolveLevel checks that an explicit override wins over the configured level.
func TestResolveLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		override   string
		configured string
		want       zapcore.Level
		wantErr    bool
	}{
		{name: "configured only", configured: "debug", want: zapcore.DebugLevel},
		{name: "override wins", override: "error", configured: "debug", want: zapcore.ErrorLevel},
		{name: "both empty", want: zapcore.InfoLevel},
		{name: "bad configured", configured: "loud", wantErr: true},
		{name: "bad override", override: "loud", configured: "debug", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveLevel(tc.override, tc.configured)
			if tc.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

// TestFromContext_FallsBackToGlobal checks that an empty context yields the global logger.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))

	scoped := New(zapcore.AddSync(new(discard)), zapcore.DebugLevel)
	ctx := ToContext(context.Background(), scoped)
	require.Same(t, scoped, FromContext(ctx))

	named := WithName(ctx, "bridge")
	require.NotSame(t, scoped, FromContext(named))
}

// TestNewFile writes through a file logger and checks the message lands on disk.
func TestNewFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "aevum.log")

	l, closeFn, err := NewFile(path, zapcore.InfoLevel)
	require.NoError(t, err)

	l.Infow("alarm ringing", "id", "a1")
	require.NoError(t, closeFn())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "alarm ringing")
	require.Contains(t, string(contents), "a1")
}

// discard is a no-op writer for loggers built in tests.
type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }
