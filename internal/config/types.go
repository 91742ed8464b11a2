package config

import (
	"fmt"
	"time"
)

// Config 是 tradelens 的主配置载体。
type Config struct {
	App       AppConfig       `toml:"app"`
	Server    ServerConfig    `toml:"server"`
	Store     StoreConfig     `toml:"store"`
	Engine    EngineConfig    `toml:"engine"`
	Playbooks PlaybooksConfig `toml:"playbooks"`
	Report    ReportConfig    `toml:"report"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	LogPath  string `toml:"log_path"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type StoreConfig struct {
	TradesPath    string `toml:"trades_path"`
	BacktestsPath string `toml:"backtests_path"`
}

// EngineConfig 分析引擎的外围选项。引擎本身是纯函数，
// 这些选项只在装配 Service 时注入一次。
type EngineConfig struct {
	Timezone         string  `toml:"timezone"`           // 小时归属的参考时区，默认 UTC
	TrimFraction     float64 `toml:"trim_fraction"`      // KPI 口径每侧去极值比例
	InsightMinSample int     `toml:"insight_min_sample"` // 洞察规则最小样本
	StartingBalance  float64 `toml:"starting_balance"`
}

// Location 解析参考时区，空值与 "UTC" 都落到 time.UTC。
func (e EngineConfig) Location() (*time.Location, error) {
	if e.Timezone == "" || e.Timezone == "UTC" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return nil, fmt.Errorf("解析 engine.timezone 失败: %w", err)
	}
	return loc, nil
}

type PlaybooksConfig struct {
	Path string `toml:"path"`
}

// ReportConfig 资金曲线图表渲染参数。
type ReportConfig struct {
	SMAPeriod       int  `toml:"sma_period"`       // 曲线均线窗口，0 表示不叠加
	SnapshotEnabled bool `toml:"snapshot_enabled"` // 是否用本机 Chrome 截 PNG
}
