package sina

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"astockdata/pkg/apperror"
	"astockdata/pkg/core"
	"astockdata/pkg/logger"
	"astockdata/pkg/provider"
	"astockdata/pkg/symbol"
)

// Provider 新浪实时行情提供商
type Provider struct {
	httpClient *http.Client
	userAgent  string
	log        *logrus.Entry
	baseURL    string
	rateLimit  time.Duration
}

// NewProvider 创建新浪实时行情提供商
func NewProvider() *Provider {
	return &Provider{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
			Timeout: 15 * time.Second,
		},
		userAgent: "AStockData/1.0",
		log:       logger.WithComponent("SinaProvider"),
		baseURL:   "https://hq.sinajs.cn/list=",
		rateLimit: 200 * time.Millisecond,
	}
}

// Name 返回提供商名称
func (p *Provider) Name() string {
	return "sina"
}

// IsHealthy 检查提供商健康状态
func (p *Provider) IsHealthy() bool {
	return p.httpClient != nil
}

// GetRateLimit 获取请求频率限制
func (p *Provider) GetRateLimit() time.Duration {
	return p.rateLimit
}

// SetRateLimit 设置请求频率限制
func (p *Provider) SetRateLimit(limit time.Duration) {
	p.rateLimit = limit
}

// SetTimeout 设置请求超时时间
func (p *Provider) SetTimeout(timeout time.Duration) {
	p.httpClient.Timeout = timeout
}

// SetMaxRetries (空实现，为了接口兼容性)
func (p *Provider) SetMaxRetries(retries int) {
	// 新浪行情接口不做重试
}

// Close 关闭提供商，清理资源
func (p *Provider) Close() error {
	if p.httpClient != nil {
		p.httpClient.CloseIdleConnections()
	}
	return nil
}

// IsSymbolSupported 检查是否支持该股票代码，新浪行情接口不覆盖北交所
func (p *Provider) IsSymbolSupported(sym string) bool {
	info := symbol.MarketInfo(sym)
	if info == nil {
		return false
	}
	switch info.Market {
	case symbol.MarketSH, symbol.MarketSZ:
		return true
	default:
		return false
	}
}

// FetchQuotes 获取实时行情
func (p *Provider) FetchQuotes(ctx context.Context, symbols []string) ([]core.Quote, error) {
	if len(symbols) == 0 {
		return []core.Quote{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.buildURL(symbols), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", p.userAgent)
	// 新浪接口要求携带来源页
	req.Header.Set("Referer", "https://finance.sina.com.cn/")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperror.Wrap(apperror.ErrProviderTimeout, "新浪行情请求超时", ctx.Err())
		}
		return nil, apperror.Wrap(apperror.ErrProviderFetch, "新浪行情请求失败", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.New(apperror.ErrProviderFetch, "新浪行情接口状态错误").
			WithContext("status", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrProviderFetch, "读取新浪行情响应失败", err)
	}

	quotes := parseQuoteResponse(string(body))
	p.log.Debugf("获取实时行情: requested=%d got=%d", len(symbols), len(quotes))
	return quotes, nil
}

// buildURL 构建行情请求URL，多个代码以逗号分隔
func (p *Provider) buildURL(symbols []string) string {
	codes := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if code := symbol.ToQuoteCode(sym); code != "" {
			codes = append(codes, code)
		}
	}
	return p.baseURL + strings.Join(codes, ",")
}

var (
	_ provider.RealtimeProvider = (*Provider)(nil)
	_ provider.Configurable     = (*Provider)(nil)
	_ provider.Closable         = (*Provider)(nil)
)
