package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"salesdesk/internal/commission"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"DB_DRIVER", "GATEWAY_RATE_LIMIT", "TMB_FEED_TIMEOUT", "CORS_ALLOWED_ORIGINS", "COMMISSION_SERVICE_TARGET"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "60-M", cfg.Gateway.RateLimit)
	assert.Equal(t, 30*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, []string{"https://*", "http://*"}, cfg.Gateway.AllowedOrigins)
	assert.Equal(t, "localhost:50052", cfg.Service.Target)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("COMMISSION_DSN", "file:test.db")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("TMB_FEED_TIMEOUT", "5s")
	t.Setenv("GATEWAY_REQUEST_TIMEOUT", "not-a-duration")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://crm.example.com , ,http://localhost:5173")

	cfg := LoadConfig()

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "file:test.db", cfg.DB.DSN)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 5*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Gateway.RequestTimeout)
	assert.Equal(t, []string{"https://crm.example.com", "http://localhost:5173"}, cfg.Gateway.AllowedOrigins)
}

func TestLoadColumns(t *testing.T) {
	t.Run("empty path gives defaults", func(t *testing.T) {
		cols, err := LoadColumns("")
		require.NoError(t, err)
		assert.Equal(t, commission.DefaultColumns(), cols)
	})

	t.Run("file overrides listed concepts only", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "columns.yaml")
		require.NoError(t, os.WriteFile(path, []byte("seller_name: [consultora]\namount:\n  - valor pago\n"), 0o600))

		cols, err := LoadColumns(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"consultora"}, cols.SellerName)
		assert.Equal(t, []string{"valor pago"}, cols.Amount)
		assert.Equal(t, commission.DefaultColumns().Email, cols.Email)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadColumns(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "columns.yaml")
		require.NoError(t, os.WriteFile(path, []byte("seller_name: [unterminated"), 0o600))
		_, err := LoadColumns(path)
		assert.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "debug", Env: "dev"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = NewLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)
}

// replaceFile swaps content in with a rename, the way editors save.
func replaceFile(t *testing.T, path, content string) {
	t.Helper()
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(content), 0o644))
	require.NoError(t, os.Rename(tmp, path))
}

func TestWatchColumns_Reloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "columns.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seller_name: [consultora]\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cw, err := WatchColumns(ctx, path, nil)
	require.NoError(t, err)
	defer cw.Close()
	assert.Equal(t, []string{"consultora"}, cw.Columns().SellerName)

	replaceFile(t, path, "seller_name: [closer]\n")
	assert.Eventually(t, func() bool {
		s := cw.Columns().SellerName
		return len(s) == 1 && s[0] == "closer"
	}, 3*time.Second, 20*time.Millisecond)

	// a broken file keeps the last good aliases
	replaceFile(t, path, "seller_name: [unclosed\n")
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, []string{"closer"}, cw.Columns().SellerName)
}

func TestWatchColumns_NoFile(t *testing.T) {
	cw, err := WatchColumns(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, commission.DefaultColumns(), cw.Columns())
	assert.NoError(t, cw.Close())
}
