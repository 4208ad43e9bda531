package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textchecker/internal/channel"
	"textchecker/internal/config"
	"textchecker/internal/engine"
	"textchecker/internal/logging"
	"textchecker/internal/worker"
)

func testConfig() *config.Config {
	return &config.Config{
		Ext:       ".md",
		Codec:     "json",
		CacheSize: 8,
		Log:       config.LogConfig{Level: "info"},
		Rules:     []config.RuleConfig{{ID: "no-todo", Enabled: true}},
	}
}

func TestEngineIsCached(t *testing.T) {
	e, err := Engine(testConfig())
	require.NoError(t, err)
	_, ok := e.(*engine.CachedEngine)
	assert.True(t, ok)

	cfg := testConfig()
	cfg.CacheSize = 0
	e, err = Engine(cfg)
	require.NoError(t, err)
	_, ok = e.(*engine.CachedEngine)
	assert.False(t, ok)
}

func TestConnectInProcess(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Connect(ctx, testConfig(), logging.Discard())
	require.NoError(t, err)
	defer c.Close()

	meta, err := c.Ready(ctx)
	require.NoError(t, err)
	assert.Equal(t, "textchecker", meta.Name)

	result, err := c.Lint(ctx, "TODO: ship", ".md")
	require.NoError(t, err)
	assert.Len(t, result.Messages, 1)
}

func TestConnectRemote(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	e, err := Engine(testConfig())
	require.NoError(t, err)
	upgrader := channel.NewUpgrader()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Accept(w, r)
		if err != nil {
			return
		}
		_ = worker.NewHandler(e, nil).Serve(ctx, conn)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Codec = "msgpack"
	cfg.WorkerURL = "ws" + strings.TrimPrefix(srv.URL, "http")
	c, err := Connect(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	defer c.Close()

	result, err := c.Lint(ctx, "fine text", ".md")
	require.NoError(t, err)
	assert.Empty(t, result.Messages)
}

func TestConnectRejectsUnknownCodec(t *testing.T) {
	cfg := testConfig()
	cfg.Codec = "xml"
	_, err := Connect(context.Background(), cfg, logging.Discard())
	assert.Error(t, err)
}

func TestWorkerArgs(t *testing.T) {
	cfg := testConfig()
	cfg.File = "/etc/textchecker.yaml"
	assert.Equal(t,
		[]string{"worker", "--stdio", "--codec", "json", "--log-level", "info", "--config", "/etc/textchecker.yaml"},
		WorkerArgs(cfg))
}
