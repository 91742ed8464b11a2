package analytics

import (
	"fmt"
	"time"
)

// DefaultInsightMinSample 洞察规则的最小样本阈值，
// 低于阈值的洞察直接抑制，而不是挂低置信标签放出去。
const DefaultInsightMinSample = 15

// GenerateInsights 在 KPI 与分桶结果之上跑规则集，产出自然语言洞察。
// minSample <= 0 时取 DefaultInsightMinSample。
func GenerateInsights(kpis KPIs, dow [7]BucketMetrics, hours map[string][24]BucketMetrics, minSample int) []string {
	if minSample <= 0 {
		minSample = DefaultInsightMinSample
	}
	var insights []string

	if s := bestWeekdayInsight(dow, minSample); s != "" {
		insights = append(insights, s)
	}
	if s := worstWeekdayInsight(dow, minSample); s != "" {
		insights = append(insights, s)
	}
	if s := bestSessionInsight(hours, minSample); s != "" {
		insights = append(insights, s)
	}
	if s := profitFactorInsight(kpis, minSample); s != "" {
		insights = append(insights, s)
	}
	return insights
}

func bestWeekdayInsight(dow [7]BucketMetrics, minSample int) string {
	best := -1
	for i, b := range dow {
		if !b.HasData || b.N < minSample {
			continue
		}
		if best == -1 || b.ExpectancyR > dow[best].ExpectancyR {
			best = i
		}
	}
	if best == -1 || dow[best].ExpectancyR <= 0 {
		return ""
	}
	return fmt.Sprintf("Your best day is %s with %.2fR expectancy over %d trades.",
		weekdayLabel(time.Weekday(best)), dow[best].ExpectancyR, dow[best].N)
}

func worstWeekdayInsight(dow [7]BucketMetrics, minSample int) string {
	worst := -1
	for i, b := range dow {
		if !b.HasData || b.N < minSample || b.ExpectancyR >= 0 {
			continue
		}
		if worst == -1 || b.ExpectancyR < dow[worst].ExpectancyR {
			worst = i
		}
	}
	if worst == -1 {
		return ""
	}
	return fmt.Sprintf("%s is costing you %.2fR per trade across %d trades — consider sitting it out.",
		weekdayLabel(time.Weekday(worst)), -dow[worst].ExpectancyR, dow[worst].N)
}

func bestSessionInsight(hours map[string][24]BucketMetrics, minSample int) string {
	bestSession := ""
	bestAvg := 0.0
	bestN := 0
	for session, row := range hours {
		n := 0
		netR := 0.0
		for _, b := range row {
			n += b.N
			netR += b.NetR
		}
		if n < minSample {
			continue
		}
		avg := netR / float64(n)
		if bestSession == "" || avg > bestAvg {
			bestSession, bestAvg, bestN = session, avg, n
		}
	}
	if bestSession == "" || bestAvg <= 0 {
		return ""
	}
	return fmt.Sprintf("Your best session is %s, averaging %.2fR per trade (n=%d).",
		bestSession, bestAvg, bestN)
}

func profitFactorInsight(kpis KPIs, minSample int) string {
	if kpis.N < minSample {
		return ""
	}
	if kpis.ProfitFactor.Unbounded {
		return fmt.Sprintf("No losing trades across %d samples — profit factor is unbounded, but the sample may not be representative.", kpis.N)
	}
	if kpis.ProfitFactor.Value >= 1.5 {
		return fmt.Sprintf("Profit factor of %.2f over %d trades — your edge is holding up.",
			kpis.ProfitFactor.Value, kpis.N)
	}
	return ""
}
