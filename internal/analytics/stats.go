package analytics

import "sort"

// median 排序后取中位数：奇数取中间值，偶数取中间两值均值。
// 不修改入参。
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// metricAcc 单桶累加器：一次遍历建桶，终态一次换算成指标。
type metricAcc struct {
	n      int
	wins   int
	losses int
	sumR   float64

	winR      float64 // 盈利子集 R 合计
	lossR     float64 // 亏损子集 R 合计的幅度（正数）
	winRCnt   int
	lossRCnt  int
	scoreSum  float64
	scoreCnt  int
}

func (a *metricAcc) add(t Trade) {
	a.n++
	switch t.Outcome {
	case OutcomeWin:
		a.wins++
	case OutcomeLoss:
		a.losses++
	}
	if !t.RValid {
		return
	}
	a.sumR += t.R
	if t.R > 0 {
		a.winR += t.R
		a.winRCnt++
	} else if t.R < 0 {
		a.lossR += -t.R
		a.lossRCnt++
	}
	if t.SetupScore != nil {
		a.scoreSum += *t.SetupScore
		a.scoreCnt++
	}
}

func (a *metricAcc) winRate() float64 {
	if a.n == 0 {
		return 0
	}
	return float64(a.wins) / float64(a.n)
}

func (a *metricAcc) avgWinR() float64 {
	if a.winRCnt == 0 {
		return 0
	}
	return a.winR / float64(a.winRCnt)
}

func (a *metricAcc) avgLossR() float64 {
	if a.lossRCnt == 0 {
		return 0
	}
	return a.lossR / float64(a.lossRCnt)
}

func (a *metricAcc) expectancyR() float64 {
	wr := a.winRate()
	return wr*a.avgWinR() - (1-wr)*a.avgLossR()
}

func (a *metricAcc) avgScore() float64 {
	if a.scoreCnt == 0 {
		return 0
	}
	return a.scoreSum / float64(a.scoreCnt)
}
