package tushare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"astockdata/pkg/apperror"
	"astockdata/pkg/core"
	"astockdata/pkg/logger"
	"astockdata/pkg/provider"
)

// Tushare Pro API 入口
const apiURL = "https://api.tushare.pro"

// Provider Tushare数据提供商，需要有效的API令牌
type Provider struct {
	token       string
	apiURL      string
	httpClient  *http.Client
	lastRequest time.Time
	requestMu   sync.Mutex
	rateLimit   time.Duration
	maxRetries  int
	unhealthy   int32
	log         *logrus.Entry
}

// NewProvider 创建Tushare数据提供商，令牌为空时返回错误
func NewProvider(token string) (*Provider, error) {
	if token == "" {
		return nil, apperror.New(apperror.ErrMissingCredential, "缺少Tushare API令牌").
			WithContext("env", "TUSHARE_TOKEN")
	}

	return &Provider{
		token:  token,
		apiURL: apiURL,
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
		log:        logger.WithComponent("TushareProvider"),
	}, nil
}

// Name 返回提供商名称
func (p *Provider) Name() string {
	return "tushare"
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

// apiRequest Tushare Pro 请求体
type apiRequest struct {
	APIName string            `json:"api_name"`
	Token   string            `json:"token"`
	Params  map[string]string `json:"params"`
	Fields  string            `json:"fields"`
}

// FetchDailyBars 获取日线数据，返回按日期升序排列的结果
func (p *Provider) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]core.DailyBar, error) {
	req := apiRequest{
		APIName: "daily",
		Token:   p.token,
		Params: map[string]string{
			"ts_code":    symbol,
			"start_date": start.Format("20060102"),
			"end_date":   end.Format("20060102"),
		},
		Fields: "ts_code,trade_date,open,high,low,close,vol,amount",
	}

	body, err := p.call(ctx, req)
	if err != nil {
		return nil, err
	}

	bars, err := parseDailyResponse(body, symbol)
	if err != nil {
		atomic.StoreInt32(&p.unhealthy, 1)
		return nil, err
	}

	atomic.StoreInt32(&p.unhealthy, 0)
	p.log.Debugf("获取日线数据成功: symbol=%s rows=%d", symbol, len(bars))
	return bars, nil
}

// FetchStockInfo 获取股票基本信息
func (p *Provider) FetchStockInfo(ctx context.Context, symbol string) (*core.StockInfo, error) {
	req := apiRequest{
		APIName: "stock_basic",
		Token:   p.token,
		Params: map[string]string{
			"ts_code": symbol,
		},
		Fields: "ts_code,name,industry,market,list_date",
	}

	body, err := p.call(ctx, req)
	if err != nil {
		return nil, err
	}

	return parseStockInfoResponse(body, symbol)
}

// call 发送API请求并处理重试，重试间隔随尝试次数线性增长
func (p *Provider) call(ctx context.Context, request apiRequest) ([]byte, error) {
	if err := p.enforceRateLimit(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for i := 0; i < p.maxRetries; i++ {
		if i > 0 {
			p.log.Debugf("重试请求: api=%s attempt=%d/%d", request.APIName, i+1, p.maxRetries)
			select {
			case <-ctx.Done():
				return nil, wrapContextErr(ctx.Err())
			case <-time.After(time.Duration(i) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payload))
		if err != nil {
			lastErr = err
			continue
		}
		req.Header.Set("Content-Type", "application/json")

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
	return nil, apperror.Wrap(apperror.ErrProviderFetch, "Tushare请求失败", lastErr).
		WithContext("api", request.APIName)
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

// wrapContextErr 把context取消或超时转换为带错误码的超时错误
func wrapContextErr(err error) error {
	return apperror.Wrap(apperror.ErrProviderTimeout, "Tushare请求超时", err)
}

var (
	_ provider.HistoricalProvider = (*Provider)(nil)
	_ provider.Configurable       = (*Provider)(nil)
	_ provider.Closable           = (*Provider)(nil)
)
