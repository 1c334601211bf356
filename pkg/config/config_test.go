package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.True(t, cfg.Provider.PreferTushare)
	assert.Equal(t, 15*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 3, cfg.Provider.MaxRetries)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.True(t, cfg.Validation.Enabled)
	assert.Equal(t, "info", cfg.Logger.Level)

	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "默认配置合法",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "超时为0",
			modify:  func(c *Config) { c.Provider.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "重试次数为负",
			modify:  func(c *Config) { c.Provider.MaxRetries = -1 },
			wantErr: true,
		},
		{
			name:    "未知缓存后端",
			modify:  func(c *Config) { c.Cache.Backend = "memcached" },
			wantErr: true,
		},
		{
			name: "禁用缓存时后端不校验",
			modify: func(c *Config) {
				c.Cache.Enabled = false
				c.Cache.Backend = "whatever"
			},
			wantErr: false,
		},
		{
			name:    "磁盘缓存缺少目录",
			modify:  func(c *Config) { c.Cache.Backend = "disk"; c.Cache.Dir = "" },
			wantErr: true,
		},
		{
			name:    "评分阈值超界",
			modify:  func(c *Config) { c.Validation.MinScore = 120 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFluentSetters(t *testing.T) {
	cfg := Default().
		SetTushareToken("test-token").
		SetTimeout(30 * time.Second).
		SetMaxRetries(5).
		SetCacheBackend("disk").
		SetCacheTTL(2 * time.Hour).
		SetLogLevel("debug")

	assert.Equal(t, "test-token", cfg.Provider.TushareToken)
	assert.Equal(t, 30*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 5, cfg.Provider.MaxRetries)
	assert.Equal(t, "disk", cfg.Cache.Backend)
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "astock.yaml")

	content := `
provider:
  tushare_token: file-token
  prefer_tushare: false
  timeout: 20s
  max_retries: 2
cache:
  backend: disk
  ttl: 30m
  dir: /tmp/astock-cache
validation:
  min_score: 70
logger:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.Provider.TushareToken)
	assert.False(t, cfg.Provider.PreferTushare)
	assert.Equal(t, 20*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 2, cfg.Provider.MaxRetries)
	assert.Equal(t, "disk", cfg.Cache.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 70.0, cfg.Validation.MinScore)
	assert.Equal(t, "debug", cfg.Logger.Level)

	// 未出现的字段保持默认值
	assert.Equal(t, 200*time.Millisecond, cfg.Provider.RateLimit)
	assert.True(t, cfg.Validation.Enabled)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("/nonexistent/astock.yaml")
	assert.Error(t, err)
}
