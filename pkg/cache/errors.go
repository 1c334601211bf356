package cache

import (
	"astockdata/pkg/apperror"
)

var (
	// ErrMiss 表示在缓存中未找到请求的条目。
	ErrMiss = apperror.New(apperror.ErrCacheMiss, "cache entry not found")
)

// IsMiss 判断错误是否为缓存未命中
func IsMiss(err error) bool {
	return apperror.CodeOf(err) == apperror.ErrCacheMiss
}
