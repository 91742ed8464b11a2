package gormstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	storemodel "tradelens/internal/store/model"
	"tradelens/internal/types"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GormStore 基于 Gorm + SQLite 的交易存储，
// 实现 analytics.TradeSource 的检索口径（按账户、按平仓时间升序）。
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 打开（必要时建表）交易库。
func NewGormStore(path string) (*GormStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("gorm store: 交易库路径不能为空")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&storemodel.TradeModel{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL：允许少量并行读，锁竞争保持低位。
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &GormStore{db: db}, nil
}

// Close 关闭底层连接。
func (s *GormStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// UpsertTrades 按主键写入/更新一批交易。
func (s *GormStore) UpsertTrades(ctx context.Context, trades []types.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	models := make([]storemodel.TradeModel, 0, len(trades))
	now := time.Now().Unix()
	for _, t := range trades {
		m, err := toModel(t)
		if err != nil {
			return err
		}
		m.CreatedAtUnix = now
		m.UpdatedAtUnix = now
		models = append(models, m)
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&models).Error
}

// ListTrades 返回指定账户、时间窗内的交易，按平仓时间升序。
// from/to 为零值时不限制对应边界。
func (s *GormStore) ListTrades(ctx context.Context, accountID string, from, to time.Time) ([]types.Trade, error) {
	q := s.db.WithContext(ctx).
		Model(&storemodel.TradeModel{}).
		Where("account_id = ?", accountID)
	if !from.IsZero() {
		q = q.Where("exit_at >= ?", from.Unix())
	}
	if !to.IsZero() {
		q = q.Where("exit_at < ?", to.Unix())
	}
	var models []storemodel.TradeModel
	if err := q.Order("exit_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("查询交易失败: %w", err)
	}
	out := make([]types.Trade, 0, len(models))
	for _, m := range models {
		out = append(out, fromModel(m))
	}
	return out, nil
}

// CountTrades 账户的交易总数。
func (s *GormStore) CountTrades(ctx context.Context, accountID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&storemodel.TradeModel{}).
		Where("account_id = ?", accountID).
		Count(&n).Error
	return n, err
}

func toModel(t types.Trade) (storemodel.TradeModel, error) {
	m := storemodel.TradeModel{
		ID:         t.ID,
		AccountID:  t.AccountID,
		Symbol:     t.Symbol,
		Direction:  t.Direction,
		PnL:        decimal.NewFromFloat(t.PnL),
		Risk:       decimal.NewFromFloat(t.Risk),
		RMultiple:  t.RMultiple,
		PlaybookID: t.PlaybookID,
		Playbook:   t.Playbook,
		SetupScore: t.SetupScore,
		Grade:      t.Grade,
		Session:    t.Session,
		LotSize:    t.LotSize,
	}
	if !t.EntryAt.IsZero() {
		m.EntryAtUnix = t.EntryAt.Unix()
	}
	if !t.ExitAt.IsZero() {
		m.ExitAtUnix = t.ExitAt.Unix()
	}
	if t.ImportedAt != nil {
		ts := t.ImportedAt.Unix()
		m.ImportedAt = &ts
	}
	if len(t.Tags) > 0 {
		raw, err := json.Marshal(t.Tags)
		if err != nil {
			return m, fmt.Errorf("序列化 tags 失败: %w", err)
		}
		m.TagsJSON = datatypes.JSON(raw)
	}
	return m, nil
}

func fromModel(m storemodel.TradeModel) types.Trade {
	t := types.Trade{
		ID:         m.ID,
		AccountID:  m.AccountID,
		Symbol:     m.Symbol,
		Direction:  m.Direction,
		PnL:        m.PnL.InexactFloat64(),
		Risk:       m.Risk.InexactFloat64(),
		RMultiple:  m.RMultiple,
		PlaybookID: m.PlaybookID,
		Playbook:   m.Playbook,
		SetupScore: m.SetupScore,
		Grade:      m.Grade,
		Session:    m.Session,
		LotSize:    m.LotSize,
	}
	if m.EntryAtUnix > 0 {
		t.EntryAt = time.Unix(m.EntryAtUnix, 0).UTC()
	}
	if m.ExitAtUnix > 0 {
		t.ExitAt = time.Unix(m.ExitAtUnix, 0).UTC()
	}
	if m.ImportedAt != nil {
		ts := time.Unix(*m.ImportedAt, 0).UTC()
		t.ImportedAt = &ts
	}
	if len(m.TagsJSON) > 0 {
		_ = json.Unmarshal(m.TagsJSON, &t.Tags) // 损坏的 tags 不阻塞读取
	}
	return t
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
