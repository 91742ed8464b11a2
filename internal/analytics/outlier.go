package analytics

import (
	"math"
	"sort"
)

// DefaultTrimFraction 每侧默认去除 2.5% 的极端 R 观测。
const DefaultTrimFraction = 0.025

// TrimResult 去极值结果，保留集保持输入顺序。
type TrimResult struct {
	Trades       []Trade `json:"trades"`
	TrimmedCount int     `json:"trimmed_count"`
	TotalCount   int     `json:"total_count"`
}

// TrimOutliers 按 R 倍数去掉两侧各 ceil(n*fraction) 笔极端交易。
// 无 R 的交易不参与候选，始终保留。fraction <= 0 时原样返回，
// 因此对已去极值的集合再做 0 比例裁剪是恒等操作。
func TrimOutliers(trades []Trade, fraction float64) TrimResult {
	total := len(trades)
	if fraction <= 0 || total == 0 {
		return TrimResult{Trades: trades, TotalCount: total}
	}

	candidates := make([]int, 0, total)
	for i, t := range trades {
		if t.RValid {
			candidates = append(candidates, i)
		}
	}
	k := int(math.Ceil(float64(len(candidates)) * fraction))
	if k == 0 || 2*k >= len(candidates) {
		// 样本太小，裁剪会掏空候选集，原样返回。
		return TrimResult{Trades: trades, TotalCount: total}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return trades[candidates[a]].R < trades[candidates[b]].R
	})
	trimmed := make(map[int]bool, 2*k)
	for _, idx := range candidates[:k] {
		trimmed[idx] = true
	}
	for _, idx := range candidates[len(candidates)-k:] {
		trimmed[idx] = true
	}

	kept := make([]Trade, 0, total-len(trimmed))
	for i, t := range trades {
		if !trimmed[i] {
			kept = append(kept, t)
		}
	}
	return TrimResult{Trades: kept, TrimmedCount: len(trimmed), TotalCount: total}
}
