package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TradeModel 已平仓交易的持久化形态。货币金额用 decimal 存储，
// 进入分析引擎前在存储层边界换算为 float64。
type TradeModel struct {
	ID            string          `gorm:"column:id;primaryKey"`
	AccountID     string          `gorm:"column:account_id;index:idx_trades_account_exit,priority:1"`
	Symbol        string          `gorm:"column:symbol"`
	Direction     string          `gorm:"column:direction"`
	EntryAtUnix   int64           `gorm:"column:entry_at"`
	ExitAtUnix    int64           `gorm:"column:exit_at;index:idx_trades_account_exit,priority:2"`
	PnL           decimal.Decimal `gorm:"column:pnl;type:TEXT"`
	Risk          decimal.Decimal `gorm:"column:risk;type:TEXT"`
	RMultiple     *float64        `gorm:"column:r_multiple"`
	PlaybookID    *string         `gorm:"column:playbook_id;index"`
	Playbook      string          `gorm:"column:playbook"`
	SetupScore    *float64        `gorm:"column:setup_score"`
	Grade         *string         `gorm:"column:grade"`
	Session       *string         `gorm:"column:session"`
	LotSize       float64         `gorm:"column:lot_size"`
	TagsJSON      datatypes.JSON  `gorm:"column:tags_json;type:TEXT"`
	ImportedAt    *int64          `gorm:"column:imported_at"`
	CreatedAtUnix int64           `gorm:"column:created_at"`
	UpdatedAtUnix int64           `gorm:"column:updated_at"`
}

func (TradeModel) TableName() string { return "trades" }
