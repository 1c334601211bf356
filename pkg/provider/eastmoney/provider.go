package eastmoney

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"astockdata/pkg/apperror"
	"astockdata/pkg/core"
	"astockdata/pkg/logger"
	"astockdata/pkg/provider"
	"astockdata/pkg/symbol"
)

// 东方财富历史K线接口
const klineURL = "https://push2his.eastmoney.com/api/qt/stock/kline/get"

// Provider 东方财富数据提供商，无需令牌即可使用
type Provider struct {
	apiURL      string
	httpClient  *http.Client
	lastRequest time.Time
	requestMu   sync.Mutex
	rateLimit   time.Duration
	maxRetries  int
	userAgent   string
	unhealthy   int32
	log         *logrus.Entry
}

// NewProvider 创建东方财富数据提供商
func NewProvider() *Provider {
	return &Provider{
		apiURL: klineURL,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
				MaxConnsPerHost:     10,
			},
			Timeout: 15 * time.Second,
		},
		rateLimit:  200 * time.Millisecond,
		maxRetries: 3,
		userAgent:  "AStockData/1.0",
		log:        logger.WithComponent("EastmoneyProvider"),
	}
}

// Name 返回提供商名称
func (p *Provider) Name() string {
	return "eastmoney"
}

// IsHealthy 检查提供商健康状态
func (p *Provider) IsHealthy() bool {
	return atomic.LoadInt32(&p.unhealthy) == 0
}

// GetRateLimit 返回请求频率限制
func (p *Provider) GetRateLimit() time.Duration {
	return p.rateLimit
}

// SetRateLimit 设置请求频率限制
func (p *Provider) SetRateLimit(limit time.Duration) {
	p.rateLimit = limit
}

// SetMaxRetries 设置最大重试次数
func (p *Provider) SetMaxRetries(retries int) {
	p.maxRetries = retries
}

// SetTimeout 设置超时时间
func (p *Provider) SetTimeout(timeout time.Duration) {
	p.httpClient.Timeout = timeout
}

// Close 关闭空闲连接
func (p *Provider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

// FetchDailyBars 获取前复权日线数据
func (p *Provider) FetchDailyBars(ctx context.Context, sym string, start, end time.Time) ([]core.DailyBar, error) {
	secID := symbol.ToSecID(sym)
	if secID == "" {
		return nil, apperror.New(apperror.ErrInvalidCodeFormat, "无法识别的股票代码").
			WithContext("symbol", sym)
	}

	if err := p.enforceRateLimit(ctx); err != nil {
		return nil, err
	}

	body, err := p.get(ctx, p.buildURL(secID, start, end))
	if err != nil {
		return nil, err
	}

	bars, err := parseKlineResponse(body, sym)
	if err != nil {
		atomic.StoreInt32(&p.unhealthy, 1)
		return nil, err
	}

	atomic.StoreInt32(&p.unhealthy, 0)
	p.log.Debugf("获取日线数据成功: symbol=%s rows=%d", sym, len(bars))
	return bars, nil
}

// buildURL 构建K线请求URL
// klt=101 表示日线，fqt=1 表示前复权。
func (p *Provider) buildURL(secID string, start, end time.Time) string {
	params := url.Values{}
	params.Set("secid", secID)
	params.Set("fields1", "f1,f2,f3,f4,f5,f6")
	params.Set("fields2", "f51,f52,f53,f54,f55,f56,f57")
	params.Set("klt", "101")
	params.Set("fqt", "1")
	params.Set("beg", start.Format("20060102"))
	params.Set("end", end.Format("20060102"))

	return p.apiURL + "?" + params.Encode()
}

// get 发送GET请求并处理重试
func (p *Provider) get(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error
	for i := 0; i < p.maxRetries; i++ {
		if i > 0 {
			p.log.Debugf("重试请求: attempt=%d/%d", i+1, p.maxRetries)
			select {
			case <-ctx.Done():
				return nil, wrapContextErr(ctx.Err())
			case <-time.After(time.Duration(i) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			lastErr = err
			continue
		}
		req.Header.Set("User-Agent", p.userAgent)

		resp, err := p.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, wrapContextErr(ctx.Err())
			}
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("HTTP状态错误: %d", resp.StatusCode)
			continue
		}

		return body, nil
	}

	atomic.StoreInt32(&p.unhealthy, 1)
	return nil, apperror.Wrap(apperror.ErrProviderFetch, "东方财富请求失败", lastErr)
}

// enforceRateLimit 执行频率限制
func (p *Provider) enforceRateLimit(ctx context.Context) error {
	p.requestMu.Lock()
	defer p.requestMu.Unlock()

	elapsed := time.Since(p.lastRequest)
	if elapsed < p.rateLimit && !p.lastRequest.IsZero() {
		select {
		case <-ctx.Done():
			return wrapContextErr(ctx.Err())
		case <-time.After(p.rateLimit - elapsed):
		}
	}
	p.lastRequest = time.Now()

	return nil
}

func wrapContextErr(err error) error {
	return apperror.Wrap(apperror.ErrProviderTimeout, "东方财富请求超时", err)
}

var (
	_ provider.HistoricalProvider = (*Provider)(nil)
	_ provider.Configurable       = (*Provider)(nil)
	_ provider.Closable           = (*Provider)(nil)
)
