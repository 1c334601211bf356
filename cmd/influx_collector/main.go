package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/sirupsen/logrus"

	"astockdata/pkg/calendar"
	"astockdata/pkg/config"
	"astockdata/pkg/logger"
	"astockdata/pkg/selector"
)

var (
	configPath  = flag.String("config", "", "配置文件路径")
	symbolsFlag = flag.String("symbols", "600000,000001", "采集的股票代码，逗号分隔")
	interval    = flag.Duration("interval", 30*time.Second, "采集间隔")
	alwaysOn    = flag.Bool("always", false, "非交易时段也采集")
	influxURL   = flag.String("influxdb-url", "http://localhost:8086", "InfluxDB URL")
	influxToken = flag.String("influxdb-token", "", "InfluxDB token")
	influxOrg   = flag.String("influxdb-org", "astock", "InfluxDB组织")
	influxBkt   = flag.String("influxdb-bucket", "stock_data", "InfluxDB bucket")
	logLevel    = flag.String("log-level", "info", "日志级别")
	logFormat   = flag.String("log-format", "json", "日志格式 (json 或 text)")
)

// Collector 定时采集实时行情并写入InfluxDB
type Collector struct {
	sel      *selector.Selector
	cal      *calendar.Calendar
	writeAPI api.WriteAPI
	symbols  []string
	log      *logrus.Entry
}

func main() {
	flag.Parse()

	logger.Init(logger.Config{
		Level:  *logLevel,
		Format: *logFormat,
	})
	log := logger.WithComponent("influx_collector")

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

	symbols := splitSymbols(*symbolsFlag)
	if len(symbols) == 0 {
		log.Error("未指定采集代码")
		os.Exit(2)
	}

	influxClient := influxdb2.NewClient(*influxURL, *influxToken)
	defer influxClient.Close()

	collector := &Collector{
		sel:      sel,
		cal:      calendar.Default(),
		writeAPI: influxClient.WriteAPI(*influxOrg, *influxBkt),
		symbols:  symbols,
		log:      log,
	}
	go collector.handleWriteErrors()

	log.Infof("采集器启动: symbols=%v interval=%v", symbols, *interval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	collector.collectOnce(ctx)
	for {
		select {
		case <-ticker.C:
			collector.collectOnce(ctx)
		case <-quit:
			log.Info("收到退出信号，开始关闭")
			collector.writeAPI.Flush()
			if err := sel.Close(); err != nil {
				log.Errorf("关闭数据源选择器失败: %v", err)
			}
			return
		}
	}
}

// collectOnce 执行一次采集，非交易时段默认跳过
func (c *Collector) collectOnce(ctx context.Context) {
	if !*alwaysOn && !c.cal.IsTradingTime(time.Now()) {
		c.log.Debug("非交易时段，跳过采集")
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	quotes, err := c.sel.GetRealtimeQuotes(fetchCtx, c.symbols)
	if err != nil {
		c.log.Errorf("采集实时行情失败: %v", err)
		return
	}

	for _, q := range quotes {
		point := influxdb2.NewPointWithMeasurement("stock_realtime").
			AddTag("symbol", q.Symbol).
			AddTag("name", q.Name).
			AddField("price", q.Price).
			AddField("change", q.Change).
			AddField("change_percent", q.ChangePercent).
			AddField("open", q.Open).
			AddField("high", q.High).
			AddField("low", q.Low).
			AddField("prev_close", q.PrevClose).
			AddField("volume", q.Volume).
			AddField("turnover", q.Turnover).
			SetTime(q.Timestamp)

		c.writeAPI.WritePoint(point)
	}

	c.log.Debugf("写入行情数据点: %d", len(quotes))
}

// handleWriteErrors 消费异步写入的错误通道
func (c *Collector) handleWriteErrors() {
	for err := range c.writeAPI.Errors() {
		c.log.Errorf("InfluxDB写入失败: %v", err)
	}
}

func splitSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			symbols = append(symbols, p)
		}
	}
	return symbols
}
