package provider

import (
	"context"
	"time"

	"astockdata/pkg/core"
)

// Provider 是所有数据提供商的基础接口。
// 它定义了所有提供商都必须具备的通用功能，如名称、健康状态和速率限制。
type Provider interface {
	// Name 返回提供商的名称，例如 "tushare" 或 "eastmoney"。
	Name() string

	// IsHealthy 检查提供商的健康状态。
	// 如果提供商能够正常服务，则返回 true。
	IsHealthy() bool

	// GetRateLimit 返回两个连续请求之间的最小允许间隔。
	GetRateLimit() time.Duration
}

// Configurable 可配置接口
// 支持动态配置的提供商可以实现此接口
type Configurable interface {
	// SetRateLimit 设置请求频率限制
	SetRateLimit(limit time.Duration)

	// SetTimeout 设置请求超时时间
	SetTimeout(timeout time.Duration)

	// SetMaxRetries 设置最大重试次数
	SetMaxRetries(retries int)
}

// Closable 可关闭接口
// 需要清理资源的提供商应实现此接口
type Closable interface {
	// Close 关闭提供商，清理资源
	Close() error
}

// HistoricalProvider 历史日线数据提供商接口
type HistoricalProvider interface {
	Provider

	// FetchDailyBars 获取指定区间的日线数据。
	// symbol: 标准化股票代码，例如 "600000.SH"。
	// start, end: 闭区间的起止日期。
	// 返回的数据按日期升序排列。
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]core.DailyBar, error)
}

// RealtimeProvider 实时行情提供商接口
type RealtimeProvider interface {
	Provider

	// FetchQuotes 获取指定股票代码列表的实时行情。
	// symbols: 标准化股票代码列表，例如 ["600000.SH", "000001.SZ"]。
	FetchQuotes(ctx context.Context, symbols []string) ([]core.Quote, error)

	// IsSymbolSupported 检查提供商是否支持给定的股票代码。
	IsSymbolSupported(symbol string) bool
}

// Decorator 装饰器基础接口
type Decorator interface {
	Provider
	GetBaseProvider() Provider
}

// BaseDecorator 装饰器基础实现
type BaseDecorator struct {
	base Provider
}

// NewBaseDecorator 创建基础装饰器
func NewBaseDecorator(base Provider) *BaseDecorator {
	return &BaseDecorator{base: base}
}

// Name 实现 Provider 接口
func (d *BaseDecorator) Name() string {
	return d.base.Name()
}

// GetRateLimit 实现 Provider 接口
func (d *BaseDecorator) GetRateLimit() time.Duration {
	return d.base.GetRateLimit()
}

// IsHealthy 实现 Provider 接口
func (d *BaseDecorator) IsHealthy() bool {
	return d.base.IsHealthy()
}

// GetBaseProvider 实现 Decorator 接口
func (d *BaseDecorator) GetBaseProvider() Provider {
	return d.base
}
