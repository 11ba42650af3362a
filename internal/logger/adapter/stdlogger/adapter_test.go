package stdlogger_test

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocinema/gocinema/internal/logger"
	"github.com/gocinema/gocinema/internal/logger/adapter/stdlogger"
)

func TestAdapter(t *testing.T) {
	testCases := []struct {
		name      string
		cfg       logger.Log
		contains  []string
		notLogged string
	}{
		{
			name: "no logger enabled",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
				AppName:     "test",
			},
		},
		{
			name: "console enabled log level info",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true},
			},
			contains:  []string{"test info", "test warning", "test error", "test printf"},
			notLogged: "test debug",
		},
		{
			name: "console writer with debug",
			cfg: logger.Log{
				LogLevel:    "debug",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true, UseConsoleWriter: true},
			},
			contains: []string{"test debug", "test info", "test error"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := testLoggerConfig(t, tc.cfg)

			if len(tc.contains) == 0 {
				assert.Empty(t, out)

				return
			}

			for _, s := range tc.contains {
				assert.Contains(t, out, s)
			}

			if tc.notLogged != "" {
				assert.NotContains(t, out, tc.notLogged)
			}
		})
	}
}

func TestPrintfLevel(t *testing.T) {
	out := captureWith(t, logger.Log{
		LogLevel:    "warn",
		ServiceName: "test",
		AppName:     "test",
		Console:     logger.Console{Enabled: true},
	}, func() {
		stdlogger.New().Printf("below %s", "threshold")
		stdlogger.NewWithLevel(zerolog.WarnLevel).Printf("slow %s", "query")
	})

	assert.NotContains(t, out, "below threshold")
	assert.Contains(t, out, "slow query")
}

func testLoggerConfig(t *testing.T, cfg logger.Log) string {
	t.Helper()

	return captureWith(t, cfg, func() {
		l := stdlogger.New()

		l.Debugf("test %s", "debug")
		l.Infof("test %s", "info")
		l.Warningf("test %s", "warning")
		l.Errorf("test %s", "error")
		l.Printf("test %s", "printf")
	})
}

func captureWith(t *testing.T, cfg logger.Log, logFn func()) string {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = w
	os.Stderr = w

	defer func() {
		os.Stdout = stdout
		os.Stderr = stderr
	}()

	require.NoError(t, logger.Init(cfg))

	outC := make(chan string)

	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	logFn()

	_ = w.Close()

	return <-outC
}
