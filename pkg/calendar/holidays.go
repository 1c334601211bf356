package calendar

// 交易所休市安排（不含周末），依据沪深北交易所历年休市公告整理。
// 表中仅收录落在周一至周五的休市日，周末由工作日规则统一排除。
var exchangeHolidays = []string{
	// 2023
	"2023-01-02", // 元旦
	"2023-01-23", "2023-01-24", "2023-01-25", "2023-01-26", "2023-01-27", // 春节
	"2023-04-05",                               // 清明节
	"2023-05-01", "2023-05-02", "2023-05-03", // 劳动节
	"2023-06-22", "2023-06-23", // 端午节
	"2023-09-29",                                                           // 中秋节
	"2023-10-02", "2023-10-03", "2023-10-04", "2023-10-05", "2023-10-06", // 国庆节

	// 2024
	"2024-01-01", // 元旦
	"2024-02-09", "2024-02-12", "2024-02-13", "2024-02-14", "2024-02-15", "2024-02-16", // 春节
	"2024-04-04", "2024-04-05", // 清明节
	"2024-05-01", "2024-05-02", "2024-05-03", // 劳动节
	"2024-06-10",               // 端午节
	"2024-09-16", "2024-09-17", // 中秋节
	"2024-10-01", "2024-10-02", "2024-10-03", "2024-10-04", "2024-10-07", // 国庆节

	// 2025
	"2025-01-01", // 元旦
	"2025-01-28", "2025-01-29", "2025-01-30", "2025-01-31", "2025-02-03", "2025-02-04", // 春节
	"2025-04-04",                               // 清明节
	"2025-05-01", "2025-05-02", "2025-05-05", // 劳动节
	"2025-06-02", // 端午节
	"2025-10-01", "2025-10-02", "2025-10-03", "2025-10-06", "2025-10-07", "2025-10-08", // 国庆节、中秋节

	// 2026
	"2026-01-01", "2026-01-02", // 元旦
	"2026-02-16", "2026-02-17", "2026-02-18", "2026-02-19", "2026-02-20", // 春节
	"2026-04-06",                               // 清明节
	"2026-05-01", "2026-05-04", "2026-05-05", // 劳动节
	"2026-06-19", // 端午节
	"2026-09-25", // 中秋节
	"2026-10-01", "2026-10-02", "2026-10-05", "2026-10-06", "2026-10-07", // 国庆节
}
