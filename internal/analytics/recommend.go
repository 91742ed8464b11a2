package analytics

import "tradelens/internal/types"

// Confidence 推荐置信档位，按样本量划分。
type Confidence string

const (
	ConfidenceLow    Confidence = "low"    // n < 10
	ConfidenceMedium Confidence = "medium" // 10 <= n < 30
	ConfidenceHigh   Confidence = "high"   // n >= 30
)

// RecommendedMetrics 基于回测记录的中位数推荐。
type RecommendedMetrics struct {
	SLPips     float64    `json:"sl_pips"`
	TPPips     float64    `json:"tp_pips"`
	RR         float64    `json:"rr"`
	SampleSize int        `json:"sample_size"`
	Confidence Confidence `json:"confidence"`
}

// RecommendFromBacktests 对三个 planned 字段齐全的回测记录，
// 分别取中位数（抗极值，明确不用均值）给出推荐止损/止盈/盈亏比。
// 过滤后为空返回 nil（无推荐不是错误）。
func RecommendFromBacktests(backtests []types.Backtest) *RecommendedMetrics {
	var sl, tp, rr []float64
	for _, b := range backtests {
		if b.SLPips == nil || b.TPPips == nil || b.RR == nil {
			continue
		}
		sl = append(sl, *b.SLPips)
		tp = append(tp, *b.TPPips)
		rr = append(rr, *b.RR)
	}
	if len(sl) == 0 {
		return nil
	}
	return &RecommendedMetrics{
		SLPips:     median(sl),
		TPPips:     median(tp),
		RR:         median(rr),
		SampleSize: len(sl),
		Confidence: confidenceFor(len(sl)),
	}
}

func confidenceFor(n int) Confidence {
	switch {
	case n < 10:
		return ConfidenceLow
	case n < 30:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}
