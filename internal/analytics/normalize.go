package analytics

import (
	"time"

	"tradelens/internal/types"
)

// Outcome 单笔交易的胜负分类，pnl 为 0 记为平局。
type Outcome int

const (
	OutcomeTie Outcome = iota
	OutcomeWin
	OutcomeLoss
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLoss:
		return "loss"
	default:
		return "tie"
	}
}

// Trade 归一化后的交易，携带所有下游统计需要的派生标量。
// R 未定义（风险额缺失或为 0）的交易 RValid 为 false，
// 会被所有 R 口径统计排除，但仍计入样本数与货币口径统计。
type Trade struct {
	types.Trade

	R           float64
	RValid      bool
	HoldMinutes float64
	HoldValid   bool
	Outcome     Outcome
	Hour        int
	Weekday     time.Weekday
	CloseDate   string // YYYY-MM-DD，按参考时区
}

// Normalize 逐笔派生标量字段，输入集合不被修改。
// loc 为小时/日期归属的参考时区，nil 时取 UTC（跨用户可比）。
func Normalize(trades []types.Trade, loc *time.Location) []Trade {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]Trade, 0, len(trades))
	for _, t := range trades {
		nt := Trade{Trade: t}

		switch {
		case t.RMultiple != nil:
			nt.R = *t.RMultiple
			nt.RValid = true
		case t.Risk > 0:
			nt.R = t.PnL / t.Risk
			nt.RValid = true
		}

		if !t.EntryAt.IsZero() && !t.ExitAt.IsZero() && !t.ExitAt.Before(t.EntryAt) {
			nt.HoldMinutes = t.ExitAt.Sub(t.EntryAt).Minutes()
			nt.HoldValid = true
		}

		switch {
		case t.PnL > 0:
			nt.Outcome = OutcomeWin
		case t.PnL < 0:
			nt.Outcome = OutcomeLoss
		}

		entry := t.EntryAt.In(loc)
		exit := t.ExitAt.In(loc)
		nt.Hour = entry.Hour()
		nt.Weekday = exit.Weekday()
		nt.CloseDate = exit.Format("2006-01-02")

		out = append(out, nt)
	}
	return out
}

// DailyResults 把归一化交易按平仓日聚合为逐日结果，并补齐中间的
// 无交易日（Trades 为 0），供连胜/连亏检测消费。
// 前置条件：输入已按平仓时间升序。
func DailyResults(trades []Trade) []types.DayResult {
	if len(trades) == 0 {
		return nil
	}
	var days []types.DayResult
	for _, t := range trades {
		if len(days) == 0 || days[len(days)-1].Date != t.CloseDate {
			days = appendGapDays(days, t.CloseDate)
			days = append(days, types.DayResult{Date: t.CloseDate})
		}
		d := &days[len(days)-1]
		d.Trades++
		if t.RValid {
			d.NetR += t.R
		}
	}
	return days
}

func appendGapDays(days []types.DayResult, next string) []types.DayResult {
	if len(days) == 0 {
		return days
	}
	last, err1 := time.Parse("2006-01-02", days[len(days)-1].Date)
	to, err2 := time.Parse("2006-01-02", next)
	if err1 != nil || err2 != nil {
		return days
	}
	for d := last.AddDate(0, 0, 1); d.Before(to); d = d.AddDate(0, 0, 1) {
		days = append(days, types.DayResult{Date: d.Format("2006-01-02")})
	}
	return days
}
