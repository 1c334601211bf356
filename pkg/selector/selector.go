package selector

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"astockdata/pkg/apperror"
	"astockdata/pkg/cache"
	"astockdata/pkg/calendar"
	"astockdata/pkg/config"
	"astockdata/pkg/core"
	"astockdata/pkg/logger"
	"astockdata/pkg/provider"
	"astockdata/pkg/provider/decorators"
	"astockdata/pkg/provider/eastmoney"
	"astockdata/pkg/provider/sina"
	"astockdata/pkg/provider/tushare"
	"astockdata/pkg/symbol"
	"astockdata/pkg/validator"
)

// Method 数据获取方式
type Method string

const (
	MethodAuto      Method = "auto"      // 自动选择，按配置的优先级尝试
	MethodTushare   Method = "tushare"   // 只使用Tushare
	MethodEastmoney Method = "eastmoney" // 只使用东方财富
)

// Selector 数据源选择器
// 负责代码标准化、缓存、提供商选择与降级、数据验证的完整流程。
type Selector struct {
	cfg        *config.Config
	cache      cache.Cache
	calendar   *calendar.Calendar
	validator  *validator.Validator
	classifier *ErrorClassifier

	primary   provider.HistoricalProvider // tushare，可能为nil
	secondary provider.HistoricalProvider // eastmoney
	realtime  provider.RealtimeProvider   // sina

	method Method
	log    *logrus.Entry
}

// New 根据配置创建数据源选择器
// 没有Tushare令牌时自动退化为只使用东方财富。
func New(cfg *config.Config) (*Selector, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.WithComponent("Selector")

	c, err := cache.FromConfig(cfg.Cache)
	if err != nil {
		return nil, err
	}

	cal := calendar.Default()

	s := &Selector{
		cfg:        cfg,
		cache:      c,
		calendar:   cal,
		validator:  validator.NewWithWeights(cal, cfg.Validation.Weights),
		classifier: NewErrorClassifier(),
		method:     MethodAuto,
		log:        log,
	}

	if cfg.Provider.TushareToken != "" {
		ts, err := tushare.NewProvider(cfg.Provider.TushareToken)
		if err != nil {
			return nil, err
		}
		configure(ts, cfg.Provider)
		s.primary = decorators.NewCircuitBreakerProvider(ts, &decorators.CircuitBreakerConfig{
			Name:        "tushare",
			MaxRequests: 5,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: 5,
		})
	} else {
		log.Warnf("未配置Tushare令牌，历史数据只使用东方财富")
	}

	em := eastmoney.NewProvider()
	configure(em, cfg.Provider)
	s.secondary = decorators.NewCircuitBreakerProvider(em, &decorators.CircuitBreakerConfig{
		Name:        "eastmoney",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: 5,
	})

	sn := sina.NewProvider()
	configure(sn, cfg.Provider)
	s.realtime = sn

	return s, nil
}

// configure 把通用提供商配置应用到可配置的提供商上
func configure(p provider.Configurable, cfg config.ProviderConfig) {
	p.SetTimeout(cfg.Timeout)
	p.SetMaxRetries(cfg.MaxRetries)
	p.SetRateLimit(cfg.RateLimit)
}

// SetMethod 设置数据获取方式
func (s *Selector) SetMethod(method Method) *Selector {
	s.method = method
	return s
}

// Calendar 返回选择器使用的交易日历
func (s *Selector) Calendar() *calendar.Calendar {
	return s.calendar
}

// Validator 返回选择器使用的数据验证器
func (s *Selector) Validator() *validator.Validator {
	return s.validator
}

// GetStockData 获取指定区间的A股日线数据
// 完整流程: 标准化代码 -> 查缓存 -> 按优先级尝试提供商 -> 验证 -> 写缓存。
// 数据质量问题只记录日志，不阻断返回。
func (s *Selector) GetStockData(ctx context.Context, code string, start, end time.Time) ([]core.DailyBar, error) {
	std := symbol.Standardize(code)
	if std == "" {
		if mt := IdentifyMarketType(code); mt == MarketHK || mt == MarketUS {
			return nil, apperror.New(apperror.ErrInvalidCodeFormat, "仅支持A股代码").
				WithContext("code", code).
				WithContext("market", string(mt))
		}
		return nil, apperror.New(apperror.ErrInvalidCodeFormat, "无法识别的股票代码").
			WithContext("code", code)
	}

	key := cache.Key(std, start, end)
	if s.cache != nil {
		if bars, err := s.cache.Get(ctx, key); err == nil {
			s.log.Debugf("缓存命中: %s", key)
			return bars, nil
		}
	}

	bars, err := s.fetchWithFallback(ctx, std, start, end)
	if err != nil {
		return nil, err
	}

	if s.cfg.Validation.Enabled {
		report := s.validator.GenerateReport(bars, std, start, end)
		if report.OverallScore < s.cfg.Validation.MinScore {
			issue := apperror.New(apperror.ErrDataQuality, "数据质量低于阈值").
				WithContext("symbol", std).
				WithContext("score", report.OverallScore).
				WithContext("threshold", s.cfg.Validation.MinScore)
			s.log.Warnf("%v", issue)
		}
	}

	if s.cache != nil && len(bars) > 0 {
		if err := s.cache.Set(ctx, key, bars, s.cfg.Cache.TTL); err != nil {
			s.log.Warnf("写入缓存失败: %v", err)
		}
	}

	return bars, nil
}

// providerOrder 按照获取方式和配置决定提供商的尝试顺序
func (s *Selector) providerOrder() []provider.HistoricalProvider {
	switch s.method {
	case MethodTushare:
		if s.primary != nil {
			return []provider.HistoricalProvider{s.primary}
		}
		return nil
	case MethodEastmoney:
		return []provider.HistoricalProvider{s.secondary}
	}

	if s.primary != nil && s.cfg.Provider.PreferTushare {
		return []provider.HistoricalProvider{s.primary, s.secondary}
	}
	if s.primary != nil {
		return []provider.HistoricalProvider{s.secondary, s.primary}
	}
	return []provider.HistoricalProvider{s.secondary}
}

// fetchWithFallback 按顺序尝试各提供商，单个提供商内部做有限重试
func (s *Selector) fetchWithFallback(ctx context.Context, std string, start, end time.Time) ([]core.DailyBar, error) {
	order := s.providerOrder()
	if len(order) == 0 {
		return nil, apperror.New(apperror.ErrMissingCredential, "Tushare未配置，无法使用指定的获取方式")
	}

	retryCfg := apperror.RetryConfig{
		MaxAttempts:   s.cfg.Provider.MaxRetries,
		InitialDelay:  s.cfg.Provider.RetryDelay,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
	}

	attempted := make([]string, 0, len(order))
	failures := make(map[string]string, len(order))
	sawEmpty := false
	var lastErr error

	for _, p := range order {
		attempted = append(attempted, p.Name())

		bars, err := s.fetchWithRetry(ctx, p, std, start, end, retryCfg)
		if err == nil {
			// 空结果也降级到下一个提供商
			if len(bars) > 0 {
				return bars, nil
			}
			sawEmpty = true
			s.log.Warnf("提供商 %s 返回空结果，尝试下一个", p.Name())
			continue
		}
		lastErr = err
		failures[p.Name()] = err.Error()

		if ctx.Err() != nil {
			break
		}
		s.log.Warnf("提供商 %s 获取失败，尝试下一个: %v", p.Name(), err)
	}

	// 只要有提供商正常响应过，区间内没有数据就不算失败
	if sawEmpty {
		return []core.DailyBar{}, nil
	}

	return nil, apperror.Wrap(apperror.ErrAllProvidersFailed, "所有数据提供商均获取失败", lastErr).
		WithContext("symbol", std).
		WithContext("attempted", attempted).
		WithContext("failures", failures)
}

// fetchWithRetry 在单个提供商上执行有限重试，致命或无效错误立即放弃
func (s *Selector) fetchWithRetry(ctx context.Context, p provider.HistoricalProvider, std string, start, end time.Time, retryCfg apperror.RetryConfig) ([]core.DailyBar, error) {
	attempts := retryCfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, apperror.Wrap(apperror.ErrProviderTimeout, "请求被取消", ctx.Err())
			case <-time.After(apperror.RetryDelay(i, retryCfg)):
			}
		}

		bars, err := p.FetchDailyBars(ctx, std, start, end)
		if err == nil {
			return bars, nil
		}
		lastErr = err

		if !s.classifier.Retryable(err) {
			break
		}
	}

	return nil, lastErr
}

// GetRealtimeQuotes 获取实时行情，不支持的代码会被过滤掉
func (s *Selector) GetRealtimeQuotes(ctx context.Context, codes []string) ([]core.Quote, error) {
	supported := make([]string, 0, len(codes))
	for _, code := range codes {
		std := symbol.Standardize(code)
		if std == "" {
			return nil, apperror.New(apperror.ErrInvalidCodeFormat, "无法识别的股票代码").
				WithContext("code", code)
		}
		if s.realtime.IsSymbolSupported(std) {
			supported = append(supported, std)
		} else {
			s.log.Warnf("实时行情不支持该代码，已跳过: %s", std)
		}
	}

	if len(supported) == 0 {
		return []core.Quote{}, nil
	}

	return s.realtime.FetchQuotes(ctx, supported)
}

// GetStockInfo 获取股票基本信息
// 配置了Tushare时从接口获取，否则根据代码前缀推断。
func (s *Selector) GetStockInfo(ctx context.Context, code string) (*core.StockInfo, error) {
	std := symbol.Standardize(code)
	if std == "" {
		return nil, apperror.New(apperror.ErrInvalidCodeFormat, "无法识别的股票代码").
			WithContext("code", code)
	}

	if s.primary != nil {
		if ts := s.tushareProvider(); ts != nil {
			info, err := ts.FetchStockInfo(ctx, std)
			if err == nil {
				return info, nil
			}
			s.log.Warnf("Tushare获取基本信息失败，改用本地推断: %v", err)
		}
	}

	info := symbol.MarketInfo(std)
	if info == nil {
		return nil, apperror.New(apperror.ErrInvalidCodeFormat, "无法识别的股票代码").
			WithContext("code", code)
	}

	return &core.StockInfo{
		Symbol:   std,
		Market:   string(info.Market),
		Board:    info.Board,
		Currency: "CNY",
	}, nil
}

// tushareProvider 从装饰器链中取出底层的Tushare提供商
func (s *Selector) tushareProvider() *tushare.Provider {
	p := provider.Provider(s.primary)
	for {
		if ts, ok := p.(*tushare.Provider); ok {
			return ts
		}
		d, ok := p.(provider.Decorator)
		if !ok {
			return nil
		}
		p = d.GetBaseProvider()
	}
}

// CacheStats 返回缓存统计信息，缓存被禁用时返回零值
func (s *Selector) CacheStats() cache.Stats {
	if s.cache == nil {
		return cache.Stats{}
	}
	return s.cache.Stats()
}

// ClearCache 清空缓存
func (s *Selector) ClearCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Clear(ctx)
}

// Close 关闭选择器持有的全部资源
func (s *Selector) Close() error {
	var firstErr error

	closeProvider := func(p provider.Provider) {
		for p != nil {
			if c, ok := p.(provider.Closable); ok {
				if err := c.Close(); err != nil && firstErr == nil {
					firstErr = err
				}
				break
			}
			d, ok := p.(provider.Decorator)
			if !ok {
				break
			}
			p = d.GetBaseProvider()
		}
	}

	if s.primary != nil {
		closeProvider(s.primary)
	}
	closeProvider(s.secondary)
	closeProvider(s.realtime)

	if s.cache != nil {
		if err := s.cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
