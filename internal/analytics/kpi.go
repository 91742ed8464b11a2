package analytics

import "sort"

// KPIs 单期核心指标汇总。AvgLossR 以正数幅度存储。
type KPIs struct {
	N      int `json:"n"`
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`

	WinRate      float64 `json:"win_rate"`
	AvgWinR      float64 `json:"avg_win_r"`
	AvgLossR     float64 `json:"avg_loss_r"`
	ProfitFactor Ratio   `json:"profit_factor"`
	ExpectancyR  float64 `json:"expectancy_r"`
	NetR         float64 `json:"net_r"`
	MaxDrawdownR float64 `json:"max_drawdown_r"`
	Recovery     Ratio   `json:"recovery"`
}

// KPIReport 当期指标加可选的上一期，增量展示由调用方完成。
type KPIReport struct {
	Current KPIs  `json:"current"`
	Prior   *KPIs `json:"prior,omitempty"`
}

// ComputeKPIs 将（可能已去极值的）交易集合归约为 KPI 记录。
// 归约本身与周期无关，prior 只是对第二个集合的同一套归约。
// 空集合产出全零结果而非错误，任何除零都映射为 0 或无界哨兵。
func ComputeKPIs(current, prior []Trade) KPIReport {
	report := KPIReport{Current: reduceKPIs(current)}
	if prior != nil {
		p := reduceKPIs(prior)
		report.Prior = &p
	}
	return report
}

func reduceKPIs(trades []Trade) KPIs {
	var acc metricAcc
	for _, t := range trades {
		acc.add(t)
	}
	k := KPIs{
		N:        acc.n,
		Wins:     acc.wins,
		Losses:   acc.losses,
		Ties:     acc.n - acc.wins - acc.losses,
		WinRate:  acc.winRate(),
		AvgWinR:  acc.avgWinR(),
		AvgLossR: acc.avgLossR(),
		NetR:     acc.sumR,
	}
	k.ExpectancyR = acc.expectancyR()

	switch {
	case acc.lossR == 0 && acc.winR > 0:
		k.ProfitFactor = UnboundedRatio()
	case acc.lossR == 0:
		k.ProfitFactor = FiniteRatio(0)
	default:
		k.ProfitFactor = FiniteRatio(acc.winR / acc.lossR)
	}

	k.MaxDrawdownR = maxDrawdownR(trades)
	switch {
	case k.MaxDrawdownR == 0 && k.NetR > 0:
		k.Recovery = UnboundedRatio()
	case k.MaxDrawdownR == 0:
		k.Recovery = FiniteRatio(0)
	default:
		k.Recovery = FiniteRatio(k.NetR / k.MaxDrawdownR)
	}
	return k
}

// maxDrawdownR 累计 R 序列的最大峰谷降幅。归约允许乱序输入，
// 这里自行按平仓时间排序副本再单趟跑 running peak。
func maxDrawdownR(trades []Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	sorted := make([]Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ExitAt.Before(sorted[j].ExitAt)
	})

	var cum, peak, maxDD float64
	for _, t := range sorted {
		if !t.RValid {
			continue
		}
		cum += t.R
		if cum > peak {
			peak = cum
		}
		if dd := peak - cum; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
