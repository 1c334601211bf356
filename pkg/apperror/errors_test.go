package apperror

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWrapAndCodeOf(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(ErrProviderFetch, "请求失败", cause).
		WithContext("provider", "tushare")

	assert.Equal(t, ErrProviderFetch, CodeOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "tushare", err.Context["provider"])

	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestRetryDelayBackoff(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:   5,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      1 * time.Second,
		BackoffFactor: 2.0,
	}

	// 第一次重试等待初始延迟，之后按因子递增
	assert.Equal(t, 100*time.Millisecond, RetryDelay(1, cfg))
	assert.Equal(t, 200*time.Millisecond, RetryDelay(2, cfg))
	assert.Equal(t, 400*time.Millisecond, RetryDelay(3, cfg))

	// 超过上限后截断
	assert.Equal(t, 1*time.Second, RetryDelay(10, cfg))

	// 非法的次数退化为初始延迟
	assert.Equal(t, 100*time.Millisecond, RetryDelay(0, cfg))
}
