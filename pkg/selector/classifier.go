package selector

import (
	"strings"

	"astockdata/pkg/apperror"
)

// ErrorLevel 定义错误的严重级别
type ErrorLevel int

const (
	LevelFatal     ErrorLevel = iota // 致命级，换用其他提供商
	LevelRetryable                   // 网络类错误，可重试
	LevelInvalid                     // 无效请求，重试没有意义
	LevelUnknown                     // 未知错误
)

// ErrorClassifier 负责根据错误类型进行分类，决定是否值得重试
type ErrorClassifier struct{}

// NewErrorClassifier 创建新的错误分类器
func NewErrorClassifier() *ErrorClassifier {
	return &ErrorClassifier{}
}

// Classify 根据错误内容分类错误级别
// 优先使用错误码判断，无错误码时退化为消息匹配。
func (c *ErrorClassifier) Classify(err error) ErrorLevel {
	if err == nil {
		return LevelUnknown
	}

	switch apperror.CodeOf(err) {
	case apperror.ErrMissingCredential:
		return LevelFatal
	case apperror.ErrInvalidCodeFormat:
		return LevelInvalid
	case apperror.ErrProviderTimeout:
		return LevelRetryable
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "connection refused"):
		return LevelFatal
	case strings.Contains(msg, "no such host"),
		strings.Contains(msg, "dial tcp"),
		strings.Contains(msg, "dial udp"):
		return LevelFatal
	case strings.Contains(msg, "forbidden"),
		strings.Contains(msg, "403"):
		return LevelFatal
	case strings.Contains(msg, "circuit breaker is open"):
		return LevelFatal
	}

	switch {
	case strings.Contains(msg, "timeout"):
		return LevelRetryable
	case strings.Contains(msg, "network is unreachable"):
		return LevelRetryable
	case strings.Contains(msg, "temporary failure"):
		return LevelRetryable
	case strings.Contains(msg, "connection reset"):
		return LevelRetryable
	}

	switch {
	case strings.Contains(msg, "invalid argument"):
		return LevelInvalid
	case strings.Contains(msg, "bad request"):
		return LevelInvalid
	case strings.Contains(msg, "404"):
		return LevelInvalid
	}

	return LevelUnknown
}

// Retryable 判断错误是否值得在同一提供商上重试
func (c *ErrorClassifier) Retryable(err error) bool {
	level := c.Classify(err)
	return level == LevelRetryable || level == LevelUnknown
}
