package apperror

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode 错误代码类型
type ErrorCode string

// 标准错误代码常量定义了数据访问层可能出现的各种错误类别。
const (
	// ErrInvalidCodeFormat 表示股票代码无法标准化。
	ErrInvalidCodeFormat ErrorCode = "INVALID_CODE_FORMAT"
	// ErrMissingCredential 表示主数据源缺少访问凭证（token）。
	ErrMissingCredential ErrorCode = "MISSING_CREDENTIAL"
	// ErrProviderFetch 表示提供商请求失败（网络、配额等）。
	ErrProviderFetch ErrorCode = "PROVIDER_FETCH_FAILURE"
	// ErrProviderTimeout 表示提供商请求超时。
	ErrProviderTimeout ErrorCode = "PROVIDER_TIMEOUT"
	// ErrAllProvidersFailed 表示所有提供商均已尝试且失败。
	ErrAllProvidersFailed ErrorCode = "ALL_PROVIDERS_FAILED"
	// ErrDataQuality 表示验证器发现数据质量问题。
	ErrDataQuality ErrorCode = "DATA_QUALITY_ISSUE"
	// ErrCacheMiss 表示在缓存中未找到请求的条目。
	ErrCacheMiss ErrorCode = "CACHE_MISS"
	// ErrConfigInvalid 表示配置无效。
	ErrConfigInvalid ErrorCode = "CONFIG_INVALID"
)

// Error 数据访问层的基础错误类型
type Error struct {
	Code      ErrorCode              `json:"code"`              // 错误的分类代码
	Message   string                 `json:"message"`           // 人类可读的错误信息
	Cause     error                  `json:"-"`                 // 导致此错误的原始错误
	Context   map[string]interface{} `json:"context,omitempty"` // 额外的上下文信息
	Timestamp time.Time              `json:"timestamp"`         // 错误发生的时间戳
}

// New 创建新的基础错误
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Context:   make(map[string]interface{}),
	}
}

// Wrap 将一个已有的 error 包装成带错误代码的错误
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
		Context:   make(map[string]interface{}),
	}
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap 支持错误包装
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is 支持错误比较，相同错误代码视为同类错误
func (e *Error) Is(target error) bool {
	var ae *Error
	if errors.As(target, &ae) {
		return e.Code == ae.Code
	}
	return false
}

// WithContext 为错误附加一个键值对形式的上下文信息。
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// CodeOf 提取错误的分类代码，非本包错误返回空字符串
func CodeOf(err error) ErrorCode {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// RetryConfig 定义了重试操作的配置参数。
type RetryConfig struct {
	MaxAttempts   int           `json:"max_attempts"`   // 最大重试次数
	InitialDelay  time.Duration `json:"initial_delay"`  // 初始延迟
	MaxDelay      time.Duration `json:"max_delay"`      // 最大延迟
	BackoffFactor float64       `json:"backoff_factor"` // 退避因子
}

// DefaultRetryConfig 是一个默认的重试配置实例。
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:   3,
	InitialDelay:  1 * time.Second,
	MaxDelay:      30 * time.Second,
	BackoffFactor: 2.0,
}

// RetryDelay 根据配置和当前重试次数计算下一次重试的延迟时间（指数退避）。
// attempt 从1开始计数，第一次重试等待 InitialDelay。
func RetryDelay(attempt int, config RetryConfig) time.Duration {
	if attempt <= 1 {
		return config.InitialDelay
	}

	delay := float64(config.InitialDelay)
	for i := 1; i < attempt; i++ {
		delay *= config.BackoffFactor
	}

	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}

	return time.Duration(delay)
}
