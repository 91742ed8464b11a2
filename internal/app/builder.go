package app

import (
	"context"
	"fmt"

	"tradelens/internal/analytics"
	"tradelens/internal/config"
	"tradelens/internal/logger"
	"tradelens/internal/playbook"
	"tradelens/internal/store/btstore"
	"tradelens/internal/store/gormstore"
	analyticshttp "tradelens/internal/transport/http/analytics"
)

// AppBuilder 把配置装配为可运行的 App。
// 各构造器以函数字段暴露，便于测试替换。
type AppBuilder struct {
	cfg *config.Config

	tradeStoreFn func(string) (*gormstore.GormStore, error)
	btStoreFn    func(string) (*btstore.Store, error)
	registryFn   func(string) (*playbook.Registry, error)

	tradeSourceOverride analytics.TradeSource
	btSourceOverride    analytics.BacktestSource
}

type AppBuilderOption func(*AppBuilder)

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:          cfg,
		tradeStoreFn: gormstore.NewGormStore,
		btStoreFn:    btstore.New,
		registryFn:   playbook.NewRegistry,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// WithTradeSource 覆盖交易来源，跳过 SQLite 存储。
func WithTradeSource(src analytics.TradeSource) AppBuilderOption {
	return func(b *AppBuilder) { b.tradeSourceOverride = src }
}

// WithBacktestSource 覆盖回测来源。
func WithBacktestSource(src analytics.BacktestSource) AppBuilderOption {
	return func(b *AppBuilder) { b.btSourceOverride = src }
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := b.cfg
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}

	app := &App{cfg: cfg}

	var tradeSource analytics.TradeSource = b.tradeSourceOverride
	var writer analyticshttp.TradeWriter
	if tradeSource == nil {
		store, err := b.tradeStoreFn(cfg.Store.TradesPath)
		if err != nil {
			return nil, fmt.Errorf("初始化交易存储失败: %w", err)
		}
		app.trades = store
		tradeSource = store
		writer = store
	}

	var btSource analytics.BacktestSource = b.btSourceOverride
	if btSource == nil && cfg.Store.BacktestsPath != "" {
		results, err := b.btStoreFn(cfg.Store.BacktestsPath)
		if err != nil {
			return nil, fmt.Errorf("初始化回测存储失败: %w", err)
		}
		app.results = results
		btSource = results
	}

	var registry *playbook.Registry
	if cfg.Playbooks.Path != "" {
		reg, err := b.registryFn(cfg.Playbooks.Path)
		if err != nil {
			logger.Warnf("playbook registry 未启用: %v", err)
		} else {
			registry = reg
		}
	}

	loc, err := cfg.Engine.Location()
	if err != nil {
		return nil, err
	}
	svc, err := analytics.NewService(tradeSource, btSource, analytics.Options{
		Timezone:         loc,
		TrimFraction:     cfg.Engine.TrimFraction,
		InsightMinSample: cfg.Engine.InsightMinSample,
		StartingBalance:  cfg.Engine.StartingBalance,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化分析服务失败: %w", err)
	}

	httpSrv, err := analyticshttp.NewHTTPServer(analyticshttp.HTTPConfig{
		Addr:      cfg.Server.Addr,
		Svc:       svc,
		Writer:    writer,
		Registry:  registry,
		SMAPeriod: cfg.Report.SMAPeriod,
		Snapshot:  cfg.Report.SnapshotEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 HTTP 服务失败: %w", err)
	}
	app.httpSrv = httpSrv
	return app, nil
}
