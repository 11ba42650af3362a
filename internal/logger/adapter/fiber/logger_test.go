package fiber_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocinema/gocinema/internal/logger"
	adapter "github.com/gocinema/gocinema/internal/logger/adapter/fiber"
)

// accessLine is the json format of one access log entry.
type accessLine struct {
	IP     net.IP `json:"IP"`
	Status int    `json:"status"`
	URI    string `json:"URI"`
	Method string `json:"method"`
	Host   string `json:"host"`
	User   string `json:"user"`
	Error  string `json:"error"`
}

var consoleJSON = logger.Log{
	EnableAccessLogToConsole: true,
	Console:                  logger.Console{Enabled: true},
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		targetPath string
		config     adapter.Config
		want       *accessLine
	}{
		{
			name:       "empty no output at all",
			targetPath: "/",
		},
		{
			name:       "get / log to console json",
			targetPath: "/",
			config:     adapter.Config{Config: consoleJSON},
			want:       &accessLine{IP: net.ParseIP("0.0.0.0"), Status: 200, URI: "/", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name:       "unknown path logs the chain error",
			targetPath: "/film",
			config:     adapter.Config{Config: consoleJSON},
			want: &accessLine{
				IP: net.ParseIP("0.0.0.0"), Status: 404, URI: "/film", Method: fiber.MethodGet, Host: "example.com",
				Error: "Cannot GET /film",
			},
		},
		{
			name:       "query string is logged",
			targetPath: "/?limit=10&offset=20",
			config:     adapter.Config{Config: consoleJSON},
			want: &accessLine{
				IP: net.ParseIP("0.0.0.0"), Status: 200, URI: "/?limit=10&offset=20", Method: fiber.MethodGet, Host: "example.com",
			},
		},
		{
			name:       "username from resolver",
			targetPath: "/",
			config: adapter.Config{
				Config:   consoleJSON,
				Username: func(*fiber.Ctx) string { return "alice" },
			},
			want: &accessLine{
				IP: net.ParseIP("0.0.0.0"), Status: 200, URI: "/", Method: fiber.MethodGet, Host: "example.com", User: "alice",
			},
		},
		{
			name:       "checkalive is skipped",
			targetPath: "/checkalive",
			config: adapter.Config{
				Config: logger.Log{
					EnableAccessLogToConsole: true,
					DisableCheckAlive:        true,
					Console:                  logger.Console{Enabled: true},
				},
				CheckAliveURI: "/checkalive",
			},
		},
		{
			name:       "next skips logging",
			targetPath: "/",
			config: adapter.Config{
				Config: consoleJSON,
				Next:   func(*fiber.Ctx) bool { return true },
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := testMiddlewareHelper(t, tt.targetPath, tt.config)

			if tt.want == nil {
				assert.Empty(t, output)

				return
			}

			require.NotEmpty(t, output)

			var got accessLine
			require.NoError(t, json.Unmarshal([]byte(output), &got))

			assert.Equal(t, tt.want.Host, got.Host)
			assert.Equal(t, tt.want.Method, got.Method)
			assert.Equal(t, tt.want.Status, got.Status)
			assert.Equal(t, tt.want.IP, got.IP)
			assert.Equal(t, tt.want.URI, got.URI)
			assert.Equal(t, tt.want.User, got.User)
			assert.Equal(t, tt.want.Error, got.Error)
		})
	}
}

func testMiddlewareHelper(t *testing.T, targetPath string, adapterConfig adapter.Config) string {
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

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		Immutable:     true,
	})

	app.Use(adapter.New(adapterConfig))

	app.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.SendString("hello test")
	})
	app.Get("/checkalive", func(ctx *fiber.Ctx) error {
		return ctx.SendString("OK")
	})

	outC := make(chan string)

	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	_, err = app.Test(httptest.NewRequest(fiber.MethodGet, targetPath, nil), -1)
	_ = w.Close()

	out := <-outC

	require.NoError(t, err)

	return out
}
