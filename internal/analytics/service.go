package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tradelens/internal/types"

	"golang.org/x/sync/errgroup"
)

// TradeSource 交易检索服务，返回已按用户范围过滤的记录。
type TradeSource interface {
	ListTrades(ctx context.Context, accountID string, from, to time.Time) ([]types.Trade, error)
}

// BacktestSource 回测记录检索。
type BacktestSource interface {
	ListBacktests(ctx context.Context, playbookID string) ([]types.Backtest, error)
}

// Options 引擎外围选项，由配置层装配。
type Options struct {
	Timezone         *time.Location // 小时/日期归属的参考时区，nil 取 UTC
	TrimFraction     float64        // KPI 口径的去极值比例，0 表示不裁剪
	InsightMinSample int
	StartingBalance  float64
}

// Service 组合存储 → 归一化 → 各统计分量，产出展示层结构。
// 引擎分量全部是纯函数，同一输入集并发计算是安全的。
type Service struct {
	trades    TradeSource
	backtests BacktestSource
	opts      Options
}

func NewService(trades TradeSource, backtests BacktestSource, opts Options) (*Service, error) {
	if trades == nil {
		return nil, fmt.Errorf("trade source 不能为空")
	}
	return &Service{trades: trades, backtests: backtests, opts: opts}, nil
}

// DashboardRequest 一次看板计算的范围参数。
// From/To 皆为零值时取全量；两者齐全时会额外计算紧邻的
// 等长上一期供增量展示。
type DashboardRequest struct {
	AccountID       string
	From, To        time.Time
	StartingBalance float64
}

// Dashboard 一次全量重算的看板结果，无任何增量/缓存状态。
type Dashboard struct {
	KPIs     KPIReport                    `json:"kpis"`
	Trim     TrimStats                    `json:"trim"`
	DOW      [7]BucketMetrics             `json:"dow"`
	Hours    map[string][24]BucketMetrics `json:"hours"`
	Equity   []EquityPoint                `json:"equity"`
	Streaks  StreakState                  `json:"streaks"`
	Grades   [6]GradeMetrics              `json:"grades"`
	Scatter  []ScatterPoint               `json:"scatter"`
	Insights []string                     `json:"insights"`
}

// TrimStats 去极值的样本口径说明。
type TrimStats struct {
	TrimmedCount int `json:"trimmed_count"`
	TotalCount   int `json:"total_count"`
}

// Dashboard 拉取交易、归一化并并行计算各展示分量。
// 曲线与连续检测要求有序输入，排序在这里（调用方职责）完成一次。
func (s *Service) Dashboard(ctx context.Context, req DashboardRequest) (*Dashboard, error) {
	raw, err := s.trades.ListTrades(ctx, req.AccountID, req.From, req.To)
	if err != nil {
		return nil, fmt.Errorf("拉取交易失败: %w", err)
	}

	trades := Normalize(raw, s.opts.Timezone)
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].ExitAt.Before(trades[j].ExitAt)
	})

	var prior []Trade
	if !req.From.IsZero() && !req.To.IsZero() && req.To.After(req.From) {
		span := req.To.Sub(req.From)
		rawPrior, err := s.trades.ListTrades(ctx, req.AccountID, req.From.Add(-span), req.From)
		if err != nil {
			return nil, fmt.Errorf("拉取上一期交易失败: %w", err)
		}
		prior = Normalize(rawPrior, s.opts.Timezone)
	}

	balance := req.StartingBalance
	if balance == 0 {
		balance = s.opts.StartingBalance
	}

	dash := &Dashboard{}
	group, _ := errgroup.WithContext(ctx)

	group.Go(func() error {
		trimmed := TrimOutliers(trades, s.opts.TrimFraction)
		dash.Trim = TrimStats{TrimmedCount: trimmed.TrimmedCount, TotalCount: trimmed.TotalCount}
		priorSet := prior
		if priorSet != nil {
			priorSet = TrimOutliers(prior, s.opts.TrimFraction).Trades
		}
		dash.KPIs = ComputeKPIs(trimmed.Trades, priorSet)
		return nil
	})
	group.Go(func() error {
		dash.DOW = BreakdownByDOW(trades)
		dash.Hours = BreakdownByHourSession(trades)
		return nil
	})
	group.Go(func() error {
		dash.Equity = BuildEquityCurve(trades, balance)
		return nil
	})
	group.Go(func() error {
		dash.Streaks = DetectStreaks(DailyResults(trades))
		return nil
	})
	group.Go(func() error {
		dash.Grades = GradeCorrelation(trades)
		dash.Scatter = ScatterPoints(trades)
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	dash.Insights = GenerateInsights(dash.KPIs.Current, dash.DOW, dash.Hours, s.opts.InsightMinSample)
	return dash, nil
}

// Recommend 独立的回测推荐管线。
func (s *Service) Recommend(ctx context.Context, playbookID string) (*RecommendedMetrics, error) {
	if s.backtests == nil {
		return nil, fmt.Errorf("backtest source 未配置")
	}
	records, err := s.backtests.ListBacktests(ctx, playbookID)
	if err != nil {
		return nil, fmt.Errorf("拉取回测记录失败: %w", err)
	}
	return RecommendFromBacktests(records), nil
}
