package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"astockdata/pkg/validator"
)

// Config 主配置结构
type Config struct {
	// 提供商配置
	Provider ProviderConfig `json:"provider" mapstructure:"provider"`

	// 缓存配置
	Cache CacheConfig `json:"cache" mapstructure:"cache"`

	// 数据验证配置
	Validation ValidationConfig `json:"validation" mapstructure:"validation"`

	// 日志配置
	Logger LoggerConfig `json:"logger" mapstructure:"logger"`
}

// ProviderConfig 数据提供商配置
type ProviderConfig struct {
	TushareToken  string        `json:"tushare_token" mapstructure:"tushare_token"`   // Tushare API令牌
	PreferTushare bool          `json:"prefer_tushare" mapstructure:"prefer_tushare"` // 优先使用Tushare
	Timeout       time.Duration `json:"timeout" mapstructure:"timeout"`               // 请求超时时间
	MaxRetries    int           `json:"max_retries" mapstructure:"max_retries"`       // 最大重试次数
	RetryDelay    time.Duration `json:"retry_delay" mapstructure:"retry_delay"`       // 重试初始延迟
	RateLimit     time.Duration `json:"rate_limit" mapstructure:"rate_limit"`         // 请求间隔限制
	UserAgent     string        `json:"user_agent" mapstructure:"user_agent"`         // 用户代理
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Enabled bool          `json:"enabled" mapstructure:"enabled"`   // 是否启用缓存
	Backend string        `json:"backend" mapstructure:"backend"`   // 缓存后端 (memory, disk, redis)
	TTL     time.Duration `json:"ttl" mapstructure:"ttl"`           // 缓存有效期
	MaxSize int           `json:"max_size" mapstructure:"max_size"` // 最大条目数 (memory)
	Dir     string        `json:"dir" mapstructure:"dir"`           // 缓存目录 (disk)

	RedisAddr     string `json:"redis_addr" mapstructure:"redis_addr"`         // Redis 地址
	RedisPassword string `json:"redis_password" mapstructure:"redis_password"` // Redis 密码
	RedisDB       int    `json:"redis_db" mapstructure:"redis_db"`             // Redis 数据库编号
}

// ValidationConfig 数据验证配置
type ValidationConfig struct {
	Enabled  bool              `json:"enabled" mapstructure:"enabled"`     // 是否在获取数据后验证
	MinScore float64           `json:"min_score" mapstructure:"min_score"` // 低于此评分时记录告警
	Weights  validator.Weights `json:"weights" mapstructure:"weights"`     // 评分权重
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level  string `json:"level" mapstructure:"level"`   // 日志级别 (debug, info, warn, error)
	Format string `json:"format" mapstructure:"format"` // 日志格式 (json, text)
	Output string `json:"output" mapstructure:"output"` // 输出方式 (console, file)
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			TushareToken:  os.Getenv("TUSHARE_TOKEN"),
			PreferTushare: true,
			Timeout:       15 * time.Second,
			MaxRetries:    3,
			RetryDelay:    1 * time.Second,
			RateLimit:     200 * time.Millisecond,
			UserAgent:     "AStockData/1.0",
		},
		Cache: CacheConfig{
			Enabled:   true,
			Backend:   "memory",
			TTL:       1 * time.Hour,
			MaxSize:   1000,
			Dir:       "./cache",
			RedisAddr: "localhost:6379",
			RedisDB:   0,
		},
		Validation: ValidationConfig{
			Enabled:  true,
			MinScore: 60,
			Weights:  validator.DefaultWeights(),
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "console",
		},
	}
}

// 受支持的缓存后端
var validBackends = map[string]bool{
	"memory": true,
	"disk":   true,
	"redis":  true,
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Provider.Timeout <= 0 {
		return errors.New("provider timeout must be positive")
	}

	if c.Provider.MaxRetries < 0 {
		return errors.New("provider max_retries cannot be negative")
	}

	if c.Provider.RetryDelay < 0 {
		return errors.New("provider retry_delay cannot be negative")
	}

	if c.Provider.RateLimit < 0 {
		return errors.New("provider rate_limit cannot be negative")
	}

	if c.Cache.Enabled {
		if !validBackends[c.Cache.Backend] {
			return errors.New("cache backend must be one of: memory, disk, redis")
		}

		if c.Cache.TTL <= 0 {
			return errors.New("cache ttl must be positive")
		}

		if c.Cache.Backend == "memory" && c.Cache.MaxSize <= 0 {
			return errors.New("cache max_size must be positive")
		}

		if c.Cache.Backend == "disk" && c.Cache.Dir == "" {
			return errors.New("cache dir cannot be empty")
		}

		if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
			return errors.New("redis addr cannot be empty")
		}
	}

	if c.Validation.MinScore < 0 || c.Validation.MinScore > 100 {
		return errors.New("validation min_score must be within [0, 100]")
	}

	return nil
}

// SetTushareToken 设置Tushare令牌
func (c *Config) SetTushareToken(token string) *Config {
	c.Provider.TushareToken = token
	return c
}

// SetTimeout 设置请求超时时间
func (c *Config) SetTimeout(timeout time.Duration) *Config {
	c.Provider.Timeout = timeout
	return c
}

// SetMaxRetries 设置最大重试次数
func (c *Config) SetMaxRetries(retries int) *Config {
	c.Provider.MaxRetries = retries
	return c
}

// SetCacheBackend 设置缓存后端
func (c *Config) SetCacheBackend(backend string) *Config {
	c.Cache.Backend = backend
	return c
}

// SetCacheTTL 设置缓存有效期
func (c *Config) SetCacheTTL(ttl time.Duration) *Config {
	c.Cache.TTL = ttl
	return c
}

// SetLogLevel 设置日志级别
func (c *Config) SetLogLevel(level string) *Config {
	c.Logger.Level = level
	return c
}

// LoadFile 从配置文件加载配置，文件中未出现的字段保持默认值
// 环境变量以 ASTOCK_ 为前缀覆盖同名配置项，例如 ASTOCK_PROVIDER_TUSHARE_TOKEN。
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("ASTOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
