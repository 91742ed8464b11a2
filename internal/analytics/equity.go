package analytics

// EquityPoint 资金曲线上的一个点，每个平仓日一个，日期严格递增。
type EquityPoint struct {
	Date            string  `json:"date"` // YYYY-MM-DD
	CumulativeR     float64 `json:"cumulative_r"`
	Equity          float64 `json:"equity"`
	DrawdownPercent float64 `json:"drawdown_percent"`
}

// BuildEquityCurve 单趟扫描已按平仓时间升序的交易集合，
// 产出逐日资金曲线与相对峰值的回撤百分比。
// 前置条件：输入有序；乱序输入产出无意义结果（文档化契约，
// 不做防御性重排，保持 O(n)）。
func BuildEquityCurve(trades []Trade, startingBalance float64) []EquityPoint {
	if len(trades) == 0 {
		return nil
	}

	cumR := 0.0
	equity := startingBalance
	peak := startingBalance

	points := make([]EquityPoint, 0, len(trades))
	flush := func(date string) {
		if equity > peak {
			peak = equity
		}
		dd := 0.0
		if peak > 0 {
			dd = (peak - equity) / peak * 100
			if dd < 0 {
				dd = 0
			}
		}
		points = append(points, EquityPoint{
			Date:            date,
			CumulativeR:     cumR,
			Equity:          equity,
			DrawdownPercent: dd,
		})
	}

	current := trades[0].CloseDate
	for _, t := range trades {
		if t.CloseDate != current {
			flush(current)
			current = t.CloseDate
		}
		if t.RValid {
			cumR += t.R
		}
		equity += t.PnL
	}
	flush(current)
	return points
}
