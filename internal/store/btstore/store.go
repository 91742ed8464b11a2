package btstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"tradelens/internal/types"

	_ "modernc.org/sqlite"
)

// Store 管理 backtests 表，实现 analytics.BacktestSource。
// 回测记录与实盘交易是独立管线，分库存放。
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// New 打开（必要时建表）回测库。
func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("backtest store 路径不能为空")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS backtests (
		id TEXT PRIMARY KEY,
		playbook_id TEXT NOT NULL,
		symbol TEXT NOT NULL DEFAULT '',
		sl_pips REAL,
		tp_pips REAL,
		rr REAL,
		outcome TEXT NOT NULL DEFAULT '',
		tested_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);`)
	if err != nil {
		return fmt.Errorf("建表 backtests 失败: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_backtests_playbook ON backtests(playbook_id, tested_at);`)
	if err != nil {
		return fmt.Errorf("建索引失败: %w", err)
	}
	return nil
}

// Insert 写入一条回测记录。
func (s *Store) Insert(ctx context.Context, b types.Backtest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("store 已关闭")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO backtests
		 (id, playbook_id, symbol, sl_pips, tp_pips, rr, outcome, tested_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.PlaybookID, b.Symbol,
		nullableFloat(b.SLPips), nullableFloat(b.TPPips), nullableFloat(b.RR),
		b.Outcome, b.TestedAt.Unix(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("写入回测记录失败: %w", err)
	}
	return nil
}

// ListBacktests 返回指定 playbook 的全部回测记录（按测试时间升序）。
func (s *Store) ListBacktests(ctx context.Context, playbookID string) ([]types.Backtest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, fmt.Errorf("store 已关闭")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, playbook_id, symbol, sl_pips, tp_pips, rr, outcome, tested_at
		 FROM backtests WHERE playbook_id = ? ORDER BY tested_at ASC`, playbookID)
	if err != nil {
		return nil, fmt.Errorf("查询回测记录失败: %w", err)
	}
	defer rows.Close()

	var out []types.Backtest
	for rows.Next() {
		var (
			b          types.Backtest
			sl, tp, rr sql.NullFloat64
			testedAt   int64
		)
		if err := rows.Scan(&b.ID, &b.PlaybookID, &b.Symbol, &sl, &tp, &rr, &b.Outcome, &testedAt); err != nil {
			return nil, err
		}
		b.SLPips = floatPtr(sl)
		b.TPPips = floatPtr(tp)
		b.RR = floatPtr(rr)
		b.TestedAt = time.Unix(testedAt, 0).UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
