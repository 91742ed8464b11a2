package analytics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tradelens/internal/analytics"
	"tradelens/internal/importer"
	"tradelens/internal/playbook"
	"tradelens/internal/report"
	"tradelens/internal/types"
)

// TradeWriter 导入接口落库的最小依赖。
type TradeWriter interface {
	UpsertTrades(ctx context.Context, trades []types.Trade) error
}

// HTTPServer 提供分析看板和导入的 Gin 接口。
type HTTPServer struct {
	addr     string
	svc      *analytics.Service
	writer   TradeWriter
	registry *playbook.Registry
	router   *gin.Engine

	smaPeriod int
	snapshot  bool
}

type HTTPConfig struct {
	Addr     string
	Svc      *analytics.Service
	Writer   TradeWriter
	Registry *playbook.Registry

	SMAPeriod int
	Snapshot  bool
}

func NewHTTPServer(cfg HTTPConfig) (*HTTPServer, error) {
	if cfg.Svc == nil {
		return nil, errors.New("service 不能为空")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9980"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &HTTPServer{
		addr:      cfg.Addr,
		svc:       cfg.Svc,
		writer:    cfg.Writer,
		registry:  cfg.Registry,
		router:    router,
		smaPeriod: cfg.SMAPeriod,
		snapshot:  cfg.Snapshot,
	}
	s.registerRoutes()
	return s, nil
}

func (s *HTTPServer) registerRoutes() {
	api := s.router.Group("/api/analytics")
	api.GET("/dashboard", s.handleDashboard)
	api.GET("/kpis", s.handleKPIs)
	api.GET("/breakdown/dow", s.handleDOW)
	api.GET("/breakdown/hours", s.handleHours)
	api.GET("/equity", s.handleEquity)
	api.GET("/equity/chart", s.handleEquityChart)
	api.GET("/streaks", s.handleStreaks)
	api.GET("/grades", s.handleGrades)
	api.GET("/scatter", s.handleScatter)
	api.GET("/insights", s.handleInsights)
	api.GET("/recommend", s.handleRecommend)

	imp := s.router.Group("/api/import")
	imp.POST("/trades", s.handleImport)

	s.router.GET("/api/playbooks", s.handlePlaybooks)
}

func (s *HTTPServer) dashboardFromQuery(c *gin.Context) (*analytics.Dashboard, bool) {
	req, err := parseDashboardQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	dash, err := s.svc.Dashboard(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return dash, true
}

func parseDashboardQuery(c *gin.Context) (analytics.DashboardRequest, error) {
	req := analytics.DashboardRequest{AccountID: c.Query("account")}
	if req.AccountID == "" {
		return req, errors.New("account 必填")
	}
	var err error
	if req.From, err = parseTimeParam(c.Query("from")); err != nil {
		return req, fmt.Errorf("from 非法: %w", err)
	}
	if req.To, err = parseTimeParam(c.Query("to")); err != nil {
		return req, fmt.Errorf("to 非法: %w", err)
	}
	if raw := c.Query("balance"); raw != "" {
		req.StartingBalance, err = strconv.ParseFloat(raw, 64)
		if err != nil || req.StartingBalance < 0 {
			return req, errors.New("balance 非法")
		}
	}
	return req, nil
}

func parseTimeParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", raw)
}

func (s *HTTPServer) handleDashboard(c *gin.Context) {
	dash, ok := s.dashboardFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (s *HTTPServer) handleKPIs(c *gin.Context) {
	dash, ok := s.dashboardFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"kpis": dash.KPIs, "trim": dash.Trim})
}

func (s *HTTPServer) handleDOW(c *gin.Context) {
	dash, ok := s.dashboardFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"dow": dash.DOW})
}

func (s *HTTPServer) handleHours(c *gin.Context) {
	dash, ok := s.dashboardFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"hours": dash.Hours})
}

func (s *HTTPServer) handleEquity(c *gin.Context) {
	dash, ok := s.dashboardFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"equity": dash.Equity})
}

func (s *HTTPServer) handleEquityChart(c *gin.Context) {
	dash, ok := s.dashboardFromQuery(c)
	if !ok {
		return
	}
	img, err := report.RenderEquity(report.Input{
		Context:   c.Request.Context(),
		AccountID: c.Query("account"),
		Curve:     dash.Equity,
		SMAPeriod: s.smaPeriod,
		Snapshot:  s.snapshot && c.Query("format") == "png",
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(img.PNG) > 0 {
		c.Data(http.StatusOK, "image/png", img.PNG)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", img.HTML)
}

func (s *HTTPServer) handleStreaks(c *gin.Context) {
	dash, ok := s.dashboardFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"streaks": dash.Streaks})
}

func (s *HTTPServer) handleGrades(c *gin.Context) {
	dash, ok := s.dashboardFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"grades": dash.Grades})
}

func (s *HTTPServer) handleScatter(c *gin.Context) {
	dash, ok := s.dashboardFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"scatter": dash.Scatter})
}

func (s *HTTPServer) handleInsights(c *gin.Context) {
	dash, ok := s.dashboardFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": dash.Insights})
}

func (s *HTTPServer) handleRecommend(c *gin.Context) {
	playbookID := c.Query("playbook")
	if playbookID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "playbook 必填"})
		return
	}
	rec, err := s.svc.Recommend(c.Request.Context(), playbookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "该 playbook 无可用回测记录"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendation": rec})
}

func (s *HTTPServer) handleImport(c *gin.Context) {
	if s.writer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "交易存储未启用"})
		return
	}
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := importer.ParseTrades(payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.writer.UpsertTrades(c.Request.Context(), result.Trades); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"imported": len(result.Trades),
		"total":    result.Total,
		"skipped":  result.Skipped,
	})
}

func (s *HTTPServer) handlePlaybooks(c *gin.Context) {
	if s.registry == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "playbook registry 未启用"})
		return
	}
	snap := s.registry.Snapshot()
	c.JSON(http.StatusOK, gin.H{"version": snap.Version, "playbooks": snap.Playbooks})
}

// Start 启动 HTTP 服务，阻塞直到 ctx 取消或出现错误。
func (s *HTTPServer) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Handler 暴露路由，便于测试。
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}
