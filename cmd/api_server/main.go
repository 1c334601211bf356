package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"astockdata/pkg/apperror"
	"astockdata/pkg/config"
	"astockdata/pkg/core"
	"astockdata/pkg/logger"
	"astockdata/pkg/selector"
	"astockdata/pkg/symbol"
)

var (
	configPath = flag.String("config", "", "配置文件路径")
	listenAddr = flag.String("listen", ":8080", "HTTP监听地址")
	ginMode    = flag.String("mode", "release", "gin运行模式 (debug, release)")
	logLevel   = flag.String("log-level", "info", "日志级别")
	logFormat  = flag.String("log-format", "json", "日志格式 (json 或 text)")
)

// APIServer A股数据HTTP服务
type APIServer struct {
	sel    *selector.Selector
	server *http.Server
	log    *logrus.Entry
}

func main() {
	flag.Parse()

	logger.Init(logger.Config{
		Level:  *logLevel,
		Format: *logFormat,
	})
	log := logger.WithComponent("api_server")

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			log.Errorf("加载配置失败: %v", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	sel, err := selector.New(cfg)
	if err != nil {
		log.Errorf("初始化数据源选择器失败: %v", err)
		os.Exit(1)
	}

	srv := &APIServer{
		sel: sel,
		log: log,
	}

	gin.SetMode(*ginMode)
	router := srv.buildRouter()

	srv.server = &http.Server{
		Addr:         *listenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Infof("HTTP服务启动: %s", *listenAddr)
		if err := srv.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("HTTP服务异常退出: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("收到退出信号，开始关闭")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.server.Shutdown(ctx); err != nil {
		log.Errorf("HTTP服务关闭失败: %v", err)
	}
	if err := sel.Close(); err != nil {
		log.Errorf("关闭数据源选择器失败: %v", err)
	}
	log.Info("已退出")
}

func (s *APIServer) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/daily/:code", s.getDaily)
		v1.GET("/quote", s.getQuotes)
		v1.GET("/validate/:code", s.validateDaily)
		v1.GET("/symbol/:code", s.getSymbol)
		v1.GET("/calendar/trading-days", s.getTradingDays)
		v1.GET("/cache/stats", s.getCacheStats)
	}

	return router
}

func (s *APIServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// parseRange 解析start/end查询参数，默认最近90天
func parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	end := time.Now()
	start := end.AddDate(0, 0, -90)

	var err error
	if v := c.Query("start"); v != "" {
		if start, err = core.ParseDate(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的起始日期: " + v})
			return time.Time{}, time.Time{}, false
		}
	}
	if v := c.Query("end"); v != "" {
		if end, err = core.ParseDate(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的结束日期: " + v})
			return time.Time{}, time.Time{}, false
		}
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "结束日期早于起始日期"})
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// statusFor 把错误码映射为HTTP状态码
func statusFor(err error) int {
	switch apperror.CodeOf(err) {
	case apperror.ErrInvalidCodeFormat:
		return http.StatusBadRequest
	case apperror.ErrMissingCredential, apperror.ErrConfigInvalid:
		return http.StatusInternalServerError
	case apperror.ErrProviderTimeout:
		return http.StatusGatewayTimeout
	case apperror.ErrAllProvidersFailed, apperror.ErrProviderFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *APIServer) getDaily(c *gin.Context) {
	start, end, ok := parseRange(c)
	if !ok {
		return
	}

	bars, err := s.sel.GetStockData(c.Request.Context(), c.Param("code"), start, end)
	if err != nil {
		s.log.Warnf("获取日线数据失败: %v", err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol": symbol.Standardize(c.Param("code")),
		"count":  len(bars),
		"bars":   bars,
	})
}

func (s *APIServer) getQuotes(c *gin.Context) {
	codes := c.QueryArray("code")
	if len(codes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少code参数"})
		return
	}

	quotes, err := s.sel.GetRealtimeQuotes(c.Request.Context(), codes)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(quotes),
		"quotes": quotes,
	})
}

func (s *APIServer) validateDaily(c *gin.Context) {
	start, end, ok := parseRange(c)
	if !ok {
		return
	}

	code := c.Param("code")
	bars, err := s.sel.GetStockData(c.Request.Context(), code, start, end)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	report := s.sel.Validator().GenerateReport(bars, symbol.Standardize(code), start, end)
	c.JSON(http.StatusOK, report)
}

func (s *APIServer) getSymbol(c *gin.Context) {
	info, err := s.sel.GetStockInfo(c.Request.Context(), c.Param("code"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *APIServer) getTradingDays(c *gin.Context) {
	start, end, ok := parseRange(c)
	if !ok {
		return
	}

	days := s.sel.Calendar().TradingDays(start, end)
	formatted := make([]string, 0, len(days))
	for _, day := range days {
		formatted = append(formatted, core.FormatDate(day))
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(formatted),
		"days":  formatted,
	})
}

func (s *APIServer) getCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.sel.CacheStats())
}
