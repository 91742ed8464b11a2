package types

import (
	"time"
)

const (
	DirectionLong  = "long"
	DirectionShort = "short"
)

// 交易时段标签，按入场时间归属。
const (
	SessionAsia   = "Asia"
	SessionLondon = "London"
	SessionNY     = "NY"
)

// Sessions 固定时段轴，展示层按此顺序渲染。
var Sessions = []string{SessionAsia, SessionLondon, SessionNY}

// Trade 单笔已平仓交易记录，由存储层按用户范围返回。
// 引擎只读，所有派生字段在 analytics.Normalize 中计算。
type Trade struct {
	ID         string     `json:"id"`
	AccountID  string     `json:"account_id"`
	Symbol     string     `json:"symbol"`
	Direction  string     `json:"direction"`
	EntryAt    time.Time  `json:"entry_at"`
	ExitAt     time.Time  `json:"exit_at"`
	PnL        float64    `json:"pnl"`
	Risk       float64    `json:"risk"`
	RMultiple  *float64   `json:"r_multiple,omitempty"`
	PlaybookID *string    `json:"playbook_id,omitempty"`
	Playbook   string     `json:"playbook,omitempty"`
	SetupScore *float64   `json:"setup_score,omitempty"`
	Grade      *string    `json:"grade,omitempty"`
	Session    *string    `json:"session,omitempty"`
	LotSize    float64    `json:"lot_size"`
	Tags       []string   `json:"tags,omitempty"`
	ImportedAt *time.Time `json:"imported_at,omitempty"`
}

// DayResult 单个交易日的聚合结果，连胜/连亏检测的输入粒度。
// 一个"win day"指当日 R 合计为正，与单笔交易的胜负是两个概念。
type DayResult struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	NetR   float64 `json:"net_r"`
	Trades int     `json:"trades"`
}
