package app

import (
	"context"
	"fmt"

	"tradelens/internal/config"
	"tradelens/internal/logger"
	"tradelens/internal/store/btstore"
	"tradelens/internal/store/gormstore"
	analyticshttp "tradelens/internal/transport/http/analytics"

	"golang.org/x/sync/errgroup"
)

// App 负责应用级编排：加载配置→初始化存储与引擎→启动 HTTP 服务。
type App struct {
	cfg     *config.Config
	trades  *gormstore.GormStore
	results *btstore.Store
	httpSrv *analyticshttp.HTTPServer
}

// NewApp 根据配置构建应用对象（不启动）
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run 启动 HTTP 服务，阻塞直到 ctx 取消或出错。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.httpSrv == nil {
		return fmt.Errorf("http server not initialized")
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Infof("analytics http server listening on %s", a.cfg.Server.Addr)
		if err := a.httpSrv.Start(ctx); err != nil {
			return fmt.Errorf("analytics http server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		a.closeStores()
		return nil
	})

	return group.Wait()
}

func (a *App) closeStores() {
	if a.trades != nil {
		if err := a.trades.Close(); err != nil {
			logger.Warnf("关闭交易存储失败: %v", err)
		}
	}
	if a.results != nil {
		if err := a.results.Close(); err != nil {
			logger.Warnf("关闭回测存储失败: %v", err)
		}
	}
}
