package validator

import (
	"math"
	"time"

	"github.com/google/uuid"

	"astockdata/pkg/core"
)

// PriceRange 价格区间统计
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// VolumeSummary 成交量统计
type VolumeSummary struct {
	Min int64   `json:"min"`
	Max int64   `json:"max"`
	Avg float64 `json:"avg"`
}

// Summary 数据概要统计
type Summary struct {
	TotalDays  int           `json:"total_days"`  // 数据行数
	StartDate  string        `json:"start_date"`  // 数据起始日期
	EndDate    string        `json:"end_date"`    // 数据结束日期
	PriceRange PriceRange    `json:"price_range"` // 收盘价统计
	Volume     VolumeSummary `json:"volume"`      // 成交量统计
	Volatility float64       `json:"volatility"`  // 年化波动率
}

// Report 数据质量验证报告
type Report struct {
	ID          string    `json:"id"`           // 报告唯一标识
	Symbol      string    `json:"symbol"`       // 标准化后的股票代码
	ValidatedAt time.Time `json:"validated_at"` // 验证时间
	StartDate   string    `json:"start_date"`   // 请求的起始日期
	EndDate     string    `json:"end_date"`     // 请求的结束日期

	Basic           BasicResult      `json:"basic"`            // 基础结构验证
	Summary         Summary          `json:"summary"`          // 概要统计
	LimitViolations []LimitViolation `json:"limit_violations"` // 涨跌停违规
	SuspendedDays   []string         `json:"suspended_days"`   // 疑似停牌日
	Volume          VolumeResult     `json:"volume"`           // 成交量模式
	Continuity      ContinuityResult `json:"continuity"`       // 连续性

	StructureScore    float64 `json:"structure_score"`    // 结构得分 0-100
	ConsistencyScore  float64 `json:"consistency_score"`  // 一致性得分 0-100
	CompletenessScore float64 `json:"completeness_score"` // 完整度得分 0-100
	OverallScore      float64 `json:"overall_score"`      // 总评分 0-100
}

// 各类问题的扣分上限
const (
	limitPenaltyPer = 5.0
	limitPenaltyCap = 30.0

	suspensionPenaltyPer = 2.0
	suspensionPenaltyCap = 20.0

	volumePenaltyPer = 3.0
	volumePenaltyCap = 15.0

	gapPenaltyPer = 3.0
	gapPenaltyCap = 15.0
)

// GenerateReport 执行全部验证并生成质量报告
// 完整、无异常的数据总评分为100，各类问题按固定上限扣分，评分不会低于0。
func (v *Validator) GenerateReport(bars []core.DailyBar, symbol string, start, end time.Time) *Report {
	report := &Report{
		ID:          uuid.New().String(),
		Symbol:      symbol,
		ValidatedAt: time.Now(),
		StartDate:   core.FormatDate(start),
		EndDate:     core.FormatDate(end),
	}

	report.Basic = v.ValidateBasicStructure(bars)
	report.Summary = summarize(bars)
	report.LimitViolations = v.ValidatePriceLimit(bars, symbol)
	report.SuspendedDays = v.SuspensionDays(bars, start, end)
	report.Volume = v.ValidateVolumePattern(bars)
	report.Continuity = v.CheckDataContinuity(bars)

	report.StructureScore = structureScore(report.Basic)
	report.ConsistencyScore = consistencyScore(bars)
	report.CompletenessScore = v.completenessScore(bars, start, end)

	report.OverallScore = v.overallScore(report)

	if report.OverallScore < 60 {
		v.log.Warnf("数据质量偏低: symbol=%s score=%.1f errors=%d",
			symbol, report.OverallScore, len(report.Basic.Errors))
	}

	return report
}

// structureScore 结构得分，每个结构错误扣25分
func structureScore(basic BasicResult) float64 {
	if basic.Valid {
		return 100
	}
	score := 100 - 25*float64(len(basic.Errors))
	return math.Max(0, score)
}

// consistencyScore 一致性得分，按通过OHLC逻辑检查的行占比计算
func consistencyScore(bars []core.DailyBar) float64 {
	if len(bars) == 0 {
		return 0
	}

	passing := 0
	for _, bar := range bars {
		if barConsistent(bar) {
			passing++
		}
	}
	return 100 * float64(passing) / float64(len(bars))
}

// completenessScore 完整度得分，按预期交易日的覆盖率计算
func (v *Validator) completenessScore(bars []core.DailyBar, start, end time.Time) float64 {
	expected := v.calendar.TradingDays(start, end)
	if len(expected) == 0 {
		return 100
	}

	actual := make(map[string]struct{}, len(bars))
	for _, bar := range bars {
		actual[core.FormatDate(bar.Date)] = struct{}{}
	}

	covered := 0
	for _, day := range expected {
		if _, ok := actual[core.FormatDate(day)]; ok {
			covered++
		}
	}

	ratio := float64(covered) / float64(len(expected))
	return 100 * math.Min(1, ratio)
}

// overallScore 加权汇总子项得分并扣除各类问题的惩罚分
func (v *Validator) overallScore(report *Report) float64 {
	w := v.weights
	total := w.Structure + w.Consistency + w.Completeness
	if total <= 0 {
		w = DefaultWeights()
		total = w.Structure + w.Consistency + w.Completeness
	}

	score := (w.Structure*report.StructureScore +
		w.Consistency*report.ConsistencyScore +
		w.Completeness*report.CompletenessScore) / total

	score -= cappedPenalty(len(report.LimitViolations), limitPenaltyPer, limitPenaltyCap)
	score -= cappedPenalty(len(report.SuspendedDays), suspensionPenaltyPer, suspensionPenaltyCap)
	score -= cappedPenalty(volumeIssueDays(report.Volume), volumePenaltyPer, volumePenaltyCap)
	score -= cappedPenalty(len(report.Continuity.Gaps), gapPenaltyPer, gapPenaltyCap)

	return math.Max(0, math.Min(100, score))
}

// cappedPenalty 按单项扣分乘以数量计算惩罚，不超过上限
func cappedPenalty(count int, per, cap float64) float64 {
	if count <= 0 {
		return 0
	}
	return math.Min(per*float64(count), cap)
}

// volumeIssueDays 统计成交量异常涉及的总天数
func volumeIssueDays(result VolumeResult) int {
	days := 0
	for _, issue := range result.Issues {
		days += issue.Count
	}
	return days
}

// summarize 计算数据概要统计
func summarize(bars []core.DailyBar) Summary {
	if len(bars) == 0 {
		return Summary{}
	}

	sorted := sortByDate(bars)
	summary := Summary{
		TotalDays: len(sorted),
		StartDate: core.FormatDate(sorted[0].Date),
		EndDate:   core.FormatDate(sorted[len(sorted)-1].Date),
	}

	minPrice := sorted[0].Close
	maxPrice := sorted[0].Close
	var priceSum float64

	minVol := sorted[0].Volume
	maxVol := sorted[0].Volume
	var volSum float64

	for _, bar := range sorted {
		if bar.Close < minPrice {
			minPrice = bar.Close
		}
		if bar.Close > maxPrice {
			maxPrice = bar.Close
		}
		priceSum += bar.Close

		if bar.Volume < minVol {
			minVol = bar.Volume
		}
		if bar.Volume > maxVol {
			maxVol = bar.Volume
		}
		volSum += float64(bar.Volume)
	}

	n := float64(len(sorted))
	summary.PriceRange = PriceRange{Min: minPrice, Max: maxPrice, Avg: priceSum / n}
	summary.Volume = VolumeSummary{Min: minVol, Max: maxVol, Avg: volSum / n}
	summary.Volatility = annualizedVolatility(sorted)

	return summary
}

// 年交易日数量，用于波动率年化
const tradingDaysPerYear = 252

// annualizedVolatility 基于日收益率标准差计算年化波动率
func annualizedVolatility(sorted []core.DailyBar) float64 {
	if len(sorted) < 3 {
		return 0
	}

	var returns []float64
	for i := 1; i < len(sorted); i++ {
		prev := sorted[i-1].Close
		if prev <= 0 {
			continue
		}
		returns = append(returns, (sorted[i].Close-prev)/prev)
	}
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(returns)-1))

	return std * math.Sqrt(tradingDaysPerYear)
}
