package decorators

import (
	"context"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"astockdata/pkg/core"
	"astockdata/pkg/logger"
	"astockdata/pkg/provider"
)

// CircuitBreakerProvider 熔断器装饰器
// 使用 sony/gobreaker 在提供商连续失败时快速失败，避免雪崩。
type CircuitBreakerProvider struct {
	*HistoricalBaseDecorator

	cb     *gobreaker.CircuitBreaker
	config *CircuitBreakerConfig

	mu    sync.RWMutex
	stats CircuitBreakerStats
}

// CircuitBreakerConfig 熔断器配置
type CircuitBreakerConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`                   // 熔断器名称
	MaxRequests uint32        `yaml:"max_requests" mapstructure:"max_requests"`   // 半开状态下的最大请求数
	Interval    time.Duration `yaml:"interval" mapstructure:"interval"`           // 统计窗口时间
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`             // 熔断器打开后的超时时间
	ReadyToTrip uint32        `yaml:"ready_to_trip" mapstructure:"ready_to_trip"` // 触发熔断的失败次数阈值
}

// CircuitBreakerStats 熔断器统计信息
type CircuitBreakerStats struct {
	TotalRequests      int64     `json:"total_requests"`
	SuccessfulRequests int64     `json:"successful_requests"`
	FailedRequests     int64     `json:"failed_requests"`
	LastFailure        time.Time `json:"last_failure"`
}

// DefaultCircuitBreakerConfig 默认熔断器配置
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Name:        "HistoricalProvider",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: 5,
	}
}

// NewCircuitBreakerProvider 创建熔断器装饰器
func NewCircuitBreakerProvider(base provider.HistoricalProvider, config *CircuitBreakerConfig) *CircuitBreakerProvider {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}

	log := logger.WithComponent("CircuitBreaker")

	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.ReadyToTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("熔断器 %s 状态从 %v 变更为 %v", name, from, to)
		},
	}

	return &CircuitBreakerProvider{
		HistoricalBaseDecorator: NewHistoricalBaseDecorator(base),
		cb:                      gobreaker.NewCircuitBreaker(settings),
		config:                  config,
	}
}

// FetchDailyBars 经过熔断器执行请求
func (p *CircuitBreakerProvider) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]core.DailyBar, error) {
	result, err := p.cb.Execute(func() (interface{}, error) {
		return p.Historical().FetchDailyBars(ctx, symbol, start, end)
	})

	p.recordResult(err)
	if err != nil {
		return nil, err
	}
	return result.([]core.DailyBar), nil
}

// IsHealthy 熔断器打开时视为不健康
func (p *CircuitBreakerProvider) IsHealthy() bool {
	if p.cb.State() == gobreaker.StateOpen {
		return false
	}
	return p.HistoricalBaseDecorator.IsHealthy()
}

// State 返回熔断器当前状态
func (p *CircuitBreakerProvider) State() gobreaker.State {
	return p.cb.State()
}

// Stats 返回熔断器统计信息
func (p *CircuitBreakerProvider) Stats() CircuitBreakerStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats
}

func (p *CircuitBreakerProvider) recordResult(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.TotalRequests++
	if err != nil {
		p.stats.FailedRequests++
		p.stats.LastFailure = time.Now()
	} else {
		p.stats.SuccessfulRequests++
	}
}

var _ provider.HistoricalProvider = (*CircuitBreakerProvider)(nil)
