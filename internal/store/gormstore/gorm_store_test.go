package gormstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelens/internal/types"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	store, err := NewGormStore(filepath.Join(t.TempDir(), "trades.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func strPtr(s string) *string   { return &s }
func f64Ptr(v float64) *float64 { return &v }

func testTrade(id string, exitAt time.Time, pnl float64) types.Trade {
	return types.Trade{
		ID:        id,
		AccountID: "a1",
		Symbol:    "EURUSD",
		Direction: types.DirectionLong,
		EntryAt:   exitAt.Add(-time.Hour),
		ExitAt:    exitAt,
		PnL:       pnl,
		Risk:      100,
	}
}

func TestUpsertAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC)

	t.Run("写入后按平仓时间升序读出", func(t *testing.T) {
		trades := []types.Trade{
			testTrade("t2", base.Add(24*time.Hour), -50),
			testTrade("t1", base, 200),
		}
		require.NoError(t, store.UpsertTrades(ctx, trades))

		got, err := store.ListTrades(ctx, "a1", time.Time{}, time.Time{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "t1", got[0].ID)
		assert.Equal(t, "t2", got[1].ID)
		assert.Equal(t, base, got[0].ExitAt)
		assert.InDelta(t, 200, got[0].PnL, 1e-9)
	})

	t.Run("重复写入覆盖而非报错", func(t *testing.T) {
		updated := testTrade("t1", base, 300)
		require.NoError(t, store.UpsertTrades(ctx, []types.Trade{updated}))

		got, err := store.ListTrades(ctx, "a1", time.Time{}, time.Time{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.InDelta(t, 300, got[0].PnL, 1e-9)
	})

	t.Run("时间窗过滤", func(t *testing.T) {
		got, err := store.ListTrades(ctx, "a1", base.Add(time.Hour), time.Time{})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "t2", got[0].ID)

		got, err = store.ListTrades(ctx, "a1", time.Time{}, base.Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "t1", got[0].ID)
	})

	t.Run("其他账户不可见", func(t *testing.T) {
		got, err := store.ListTrades(ctx, "a2", time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("空批次为 no-op", func(t *testing.T) {
		assert.NoError(t, store.UpsertTrades(ctx, nil))
	})
}

func TestOptionalFieldsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	exitAt := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)

	trade := testTrade("t9", exitAt, 120)
	trade.RMultiple = f64Ptr(1.2)
	trade.PlaybookID = strPtr("orb")
	trade.SetupScore = f64Ptr(8.5)
	trade.Grade = strPtr("A")
	trade.Session = strPtr(types.SessionLondon)
	trade.Tags = []string{"news", "breakout"}
	require.NoError(t, store.UpsertTrades(ctx, []types.Trade{trade}))

	got, err := store.ListTrades(ctx, "a1", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 1)

	out := got[0]
	require.NotNil(t, out.RMultiple)
	assert.InDelta(t, 1.2, *out.RMultiple, 1e-9)
	assert.Equal(t, "orb", *out.PlaybookID)
	assert.Equal(t, "A", *out.Grade)
	assert.Equal(t, types.SessionLondon, *out.Session)
	assert.Equal(t, []string{"news", "breakout"}, out.Tags)
}

func TestCountTrades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.UpsertTrades(ctx, []types.Trade{
		testTrade("c1", time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC), 10),
		testTrade("c2", time.Date(2025, 3, 4, 15, 0, 0, 0, time.UTC), 20),
	}))

	n, err := store.CountTrades(ctx, "a1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestNewGormStore(t *testing.T) {
	t.Run("空路径报错", func(t *testing.T) {
		_, err := NewGormStore(" ")
		assert.Error(t, err)
	})

	t.Run("自动创建父目录", func(t *testing.T) {
		store, err := NewGormStore(filepath.Join(t.TempDir(), "nested", "dir", "trades.db"))
		require.NoError(t, err)
		assert.NoError(t, store.Close())
	})
}
