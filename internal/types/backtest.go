package types

import "time"

// Backtest 单条回测记录，与实盘 Trade 是两条独立管线。
// 三个 planned 字段均可缺省，建议引擎只统计三者齐全的记录。
type Backtest struct {
	ID         string    `json:"id"`
	PlaybookID string    `json:"playbook_id"`
	Symbol     string    `json:"symbol"`
	SLPips     *float64  `json:"sl_pips,omitempty"`
	TPPips     *float64  `json:"tp_pips,omitempty"`
	RR         *float64  `json:"rr,omitempty"`
	Outcome    string    `json:"outcome,omitempty"`
	TestedAt   time.Time `json:"tested_at"`
}
