package analytics

import (
	"time"

	"tradelens/internal/types"
)

// ExploratoryMin 桶样本低于该值标记为探索性（展示降权，不过滤）。
const ExploratoryMin = 30

// BucketMetrics 单个时间桶的 KPI 子集。
// n 为 0 的桶 HasData 为 false，指标字段一律中性零值，
// 展示层必须渲染为"无数据"而不是 0。
type BucketMetrics struct {
	N           int     `json:"n"`
	WinRate     float64 `json:"win_rate"`
	ExpectancyR float64 `json:"expectancy_r"`
	NetR        float64 `json:"net_r"`
	HasData     bool    `json:"has_data"`
	Exploratory bool    `json:"exploratory"`
}

func finalizeBucket(acc metricAcc) BucketMetrics {
	if acc.n == 0 {
		return BucketMetrics{Exploratory: true}
	}
	return BucketMetrics{
		N:           acc.n,
		WinRate:     acc.winRate(),
		ExpectancyR: acc.expectancyR(),
		NetR:        acc.sumR,
		HasData:     true,
		Exploratory: acc.n < ExploratoryMin,
	}
}

// BreakdownByDOW 按周几（周日..周六）分桶归约，7 桶全量返回。
func BreakdownByDOW(trades []Trade) [7]BucketMetrics {
	var accs [7]metricAcc
	for _, t := range trades {
		accs[int(t.Weekday)].add(t)
	}
	var out [7]BucketMetrics
	for i := range accs {
		out[i] = finalizeBucket(accs[i])
	}
	return out
}

// BreakdownByHourSession 按（时段, 小时）分桶归约。
// 固定返回三个时段各 24 桶；无时段标签的交易不参与该维度。
func BreakdownByHourSession(trades []Trade) map[string][24]BucketMetrics {
	accs := make(map[string]*[24]metricAcc, len(types.Sessions))
	for _, s := range types.Sessions {
		accs[s] = &[24]metricAcc{}
	}
	for _, t := range trades {
		if t.Session == nil {
			continue
		}
		row, ok := accs[*t.Session]
		if !ok {
			continue
		}
		if t.Hour >= 0 && t.Hour < 24 {
			row[t.Hour].add(t)
		}
	}
	out := make(map[string][24]BucketMetrics, len(accs))
	for session, row := range accs {
		var buckets [24]BucketMetrics
		for h := range row {
			buckets[h] = finalizeBucket(row[h])
		}
		out[session] = buckets
	}
	return out
}

// weekdayLabel 展示用周几名称。
func weekdayLabel(d time.Weekday) string { return d.String() }
