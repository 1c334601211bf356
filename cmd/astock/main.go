package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"astockdata/pkg/calendar"
	"astockdata/pkg/config"
	"astockdata/pkg/core"
	"astockdata/pkg/logger"
	"astockdata/pkg/selector"
	"astockdata/pkg/symbol"
)

var (
	configPath = flag.String("config", "", "配置文件路径 (例如 config/astock.yaml)")
	startDate  = flag.String("start", "", "起始日期 (YYYY-MM-DD，默认90天前)")
	endDate    = flag.String("end", "", "结束日期 (YYYY-MM-DD，默认今天)")
	method     = flag.String("method", "auto", "数据获取方式 (auto, tushare, eastmoney)")
	asJSON     = flag.Bool("json", false, "以JSON格式输出")
	logLevel   = flag.String("log-level", "info", "日志级别 (debug, info, warn, error)")
	logFormat  = flag.String("log-format", "text", "日志格式 (json 或 text)")
)

func usage() {
	fmt.Fprintf(os.Stderr, `用法: astock [选项] <命令> [参数]

命令:
  fetch <代码>      获取日线数据，例如 astock fetch 600000
  quote <代码>...   获取实时行情
  validate <代码>   获取日线数据并输出质量报告
  info <代码>       查询股票基本信息
  calendar          列出指定区间的交易日

选项:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	logger.Init(logger.Config{
		Level:  *logLevel,
		Format: *logFormat,
	})

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	start, end, err := parseRange()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, args, start, end); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadFile(*configPath)
	}
	return config.Default(), nil
}

func parseRange() (time.Time, time.Time, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -90)

	var err error
	if *startDate != "" {
		if start, err = core.ParseDate(*startDate); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("无效的起始日期: %s", *startDate)
		}
	}
	if *endDate != "" {
		if end, err = core.ParseDate(*endDate); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("无效的结束日期: %s", *endDate)
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("结束日期早于起始日期")
	}
	return start, end, nil
}

func run(ctx context.Context, cfg *config.Config, args []string, start, end time.Time) error {
	command := args[0]

	if command == "calendar" {
		return runCalendar(start, end)
	}

	if len(args) < 2 {
		return fmt.Errorf("命令 %s 需要股票代码参数", command)
	}

	sel, err := selector.New(cfg)
	if err != nil {
		return err
	}
	defer sel.Close()
	sel.SetMethod(selector.Method(*method))

	switch command {
	case "fetch":
		return runFetch(ctx, sel, args[1], start, end)
	case "quote":
		return runQuote(ctx, sel, args[1:])
	case "validate":
		return runValidate(ctx, sel, args[1], start, end)
	case "info":
		return runInfo(ctx, sel, args[1])
	default:
		return fmt.Errorf("未知命令: %s", command)
	}
}

func runFetch(ctx context.Context, sel *selector.Selector, code string, start, end time.Time) error {
	bars, err := sel.GetStockData(ctx, code, start, end)
	if err != nil {
		return err
	}

	if *asJSON {
		return printJSON(bars)
	}

	fmt.Printf("%-12s %-8s %-8s %-8s %-8s %-12s\n", "日期", "开盘", "最高", "最低", "收盘", "成交量")
	for _, bar := range bars {
		fmt.Printf("%-12s %-8.2f %-8.2f %-8.2f %-8.2f %-12d\n",
			core.FormatDate(bar.Date), bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
	}
	fmt.Printf("共 %d 条\n", len(bars))
	return nil
}

func runQuote(ctx context.Context, sel *selector.Selector, codes []string) error {
	quotes, err := sel.GetRealtimeQuotes(ctx, codes)
	if err != nil {
		return err
	}

	if *asJSON {
		return printJSON(quotes)
	}

	for _, q := range quotes {
		fmt.Printf("%s %s 现价:%.2f 涨跌:%+.2f(%+.2f%%) 成交量:%d手\n",
			q.Symbol, q.Name, q.Price, q.Change, q.ChangePercent, q.Volume)
	}
	return nil
}

func runValidate(ctx context.Context, sel *selector.Selector, code string, start, end time.Time) error {
	std := symbol.Standardize(code)
	bars, err := sel.GetStockData(ctx, code, start, end)
	if err != nil {
		return err
	}

	report := sel.Validator().GenerateReport(bars, std, start, end)
	if *asJSON {
		return printJSON(report)
	}

	fmt.Printf("数据质量报告 %s (%s ~ %s)\n", report.Symbol, report.StartDate, report.EndDate)
	fmt.Printf("  总评分:     %.1f\n", report.OverallScore)
	fmt.Printf("  结构得分:   %.1f\n", report.StructureScore)
	fmt.Printf("  一致性得分: %.1f\n", report.ConsistencyScore)
	fmt.Printf("  完整度得分: %.1f\n", report.CompletenessScore)
	fmt.Printf("  涨跌停违规: %d  疑似停牌: %d  数据缺口: %d\n",
		len(report.LimitViolations), len(report.SuspendedDays), len(report.Continuity.Gaps))
	for _, e := range report.Basic.Errors {
		fmt.Printf("  错误: %s\n", e)
	}
	for _, w := range report.Basic.Warnings {
		fmt.Printf("  警告: %s\n", w)
	}
	return nil
}

func runInfo(ctx context.Context, sel *selector.Selector, code string) error {
	info, err := sel.GetStockInfo(ctx, code)
	if err != nil {
		return err
	}

	if *asJSON {
		return printJSON(info)
	}

	fmt.Printf("代码: %s\n", info.Symbol)
	if info.Name != "" {
		fmt.Printf("名称: %s\n", info.Name)
	}
	fmt.Printf("市场: %s  板块: %s\n", info.Market, info.Board)
	if info.Industry != "" {
		fmt.Printf("行业: %s\n", info.Industry)
	}
	return nil
}

func runCalendar(start, end time.Time) error {
	cal := calendar.Default()
	days := cal.TradingDays(start, end)

	if *asJSON {
		formatted := make([]string, 0, len(days))
		for _, day := range days {
			formatted = append(formatted, core.FormatDate(day))
		}
		return printJSON(formatted)
	}

	for _, day := range days {
		fmt.Println(core.FormatDate(day))
	}
	fmt.Printf("共 %d 个交易日\n", len(days))
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
