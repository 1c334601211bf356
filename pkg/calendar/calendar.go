package calendar

import (
	"time"

	"astockdata/pkg/core"
)

// TimeService 提供当前时间接口，用于mock测试
type TimeService interface {
	Now() time.Time
}

// SystemTimeService 使用系统实际时间
type SystemTimeService struct{}

func (s *SystemTimeService) Now() time.Time {
	return time.Now()
}

// Calendar A股交易日历
// 由内置休市表和工作日规则构建，构建后不可变，所有查询方法均为纯函数。
type Calendar struct {
	holidays    map[string]struct{}
	timeService TimeService
}

// New 创建交易日历，使用内置休市表
func New(timeService TimeService) *Calendar {
	holidays := make(map[string]struct{}, len(exchangeHolidays))
	for _, day := range exchangeHolidays {
		holidays[day] = struct{}{}
	}

	return &Calendar{
		holidays:    holidays,
		timeService: timeService,
	}
}

// Default 使用系统时间的默认交易日历
func Default() *Calendar {
	return New(&SystemTimeService{})
}

// IsTradingDay 判断是否为交易日（周一至周五且非休市日）
func (c *Calendar) IsTradingDay(t time.Time) bool {
	weekday := t.Weekday()
	if weekday == time.Saturday || weekday == time.Sunday {
		return false
	}

	_, closed := c.holidays[core.FormatDate(t)]
	return !closed
}

// TradingDays 返回 [start, end] 范围内的全部交易日，严格升序
func (c *Calendar) TradingDays(start, end time.Time) []time.Time {
	start = truncateDay(start)
	end = truncateDay(end)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.IsTradingDay(d) {
			days = append(days, d)
		}
	}
	return days
}

// CountTradingDays 计算 [start, end] 范围内的交易日数量
func (c *Calendar) CountTradingDays(start, end time.Time) int {
	return len(c.TradingDays(start, end))
}

// NextTradingDay 返回严格大于给定日期的最近交易日。
// 超出查找上限（一年）时第二个返回值为 false。
func (c *Calendar) NextTradingDay(t time.Time) (time.Time, bool) {
	d := truncateDay(t)
	for i := 0; i < 366; i++ {
		d = d.AddDate(0, 0, 1)
		if c.IsTradingDay(d) {
			return d, true
		}
	}
	return time.Time{}, false
}

// PreviousTradingDay 返回严格小于给定日期的最近交易日
func (c *Calendar) PreviousTradingDay(t time.Time) (time.Time, bool) {
	d := truncateDay(t)
	for i := 0; i < 366; i++ {
		d = d.AddDate(0, 0, -1)
		if c.IsTradingDay(d) {
			return d, true
		}
	}
	return time.Time{}, false
}

// Holidays 返回 [start, end] 范围内落在工作日的休市日
func (c *Calendar) Holidays(start, end time.Time) []time.Time {
	start = truncateDay(start)
	end = truncateDay(end)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		weekday := d.Weekday()
		if weekday == time.Saturday || weekday == time.Sunday {
			continue
		}
		if _, closed := c.holidays[core.FormatDate(d)]; closed {
			days = append(days, d)
		}
	}
	return days
}

// CurrentTradingDay 返回当前交易日。
// 今天是交易日则返回今天，否则返回下一个交易日。
func (c *Calendar) CurrentTradingDay() (time.Time, bool) {
	today := truncateDay(c.timeService.Now())
	if c.IsTradingDay(today) {
		return today, true
	}
	return c.NextTradingDay(today)
}

// TradingSession 返回指定交易日的开盘与收盘时间。
// A股交易时间：9:30-11:30, 13:00-15:00。非交易日返回 ok=false。
func (c *Calendar) TradingSession(date time.Time) (open, close time.Time, ok bool) {
	if !c.IsTradingDay(date) {
		return time.Time{}, time.Time{}, false
	}

	open = time.Date(date.Year(), date.Month(), date.Day(), 9, 30, 0, 0, date.Location())
	close = time.Date(date.Year(), date.Month(), date.Day(), 15, 0, 0, 0, date.Location())
	return open, close, true
}

// IsTradingTime 判断给定时刻是否处于连续竞价时段
func (c *Calendar) IsTradingTime(t time.Time) bool {
	if !c.IsTradingDay(t) {
		return false
	}

	clock := t.Format("15:04:05")

	morningStart := "09:30:00"
	morningEnd := "11:30:00"
	afternoonStart := "13:00:00"
	afternoonEnd := "15:00:00"

	return (clock >= morningStart && clock <= morningEnd) ||
		(clock >= afternoonStart && clock <= afternoonEnd)
}

// truncateDay 去除时间部分，保留日期
func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
