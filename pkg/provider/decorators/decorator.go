package decorators

import (
	"context"
	"time"

	"astockdata/pkg/core"
	"astockdata/pkg/provider"
)

// HistoricalBaseDecorator 历史数据提供商的装饰器基础实现
// 默认把所有调用透传给被装饰的提供商。
type HistoricalBaseDecorator struct {
	*provider.BaseDecorator
	historical provider.HistoricalProvider
}

// NewHistoricalBaseDecorator 创建历史数据装饰器
func NewHistoricalBaseDecorator(base provider.HistoricalProvider) *HistoricalBaseDecorator {
	return &HistoricalBaseDecorator{
		BaseDecorator: provider.NewBaseDecorator(base),
		historical:    base,
	}
}

// FetchDailyBars 透传到被装饰的提供商
func (d *HistoricalBaseDecorator) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]core.DailyBar, error) {
	return d.historical.FetchDailyBars(ctx, symbol, start, end)
}

// Historical 返回被装饰的历史数据提供商
func (d *HistoricalBaseDecorator) Historical() provider.HistoricalProvider {
	return d.historical
}

var _ provider.HistoricalProvider = (*HistoricalBaseDecorator)(nil)
var _ provider.Decorator = (*HistoricalBaseDecorator)(nil)
