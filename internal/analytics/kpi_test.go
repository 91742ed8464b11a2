package analytics

import (
	"testing"
	"time"

	"tradelens/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalized(t *testing.T, raw ...types.Trade) []Trade {
	t.Helper()
	return Normalize(raw, nil)
}

func TestComputeKPIs(t *testing.T) {
	base := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)

	t.Run("三笔基础场景", func(t *testing.T) {
		trades := normalized(t,
			mkTrade(200, 100, base),                   // +2R
			mkTrade(-100, 100, base.AddDate(0, 0, 1)), // -1R
			mkTrade(100, 100, base.AddDate(0, 0, 2)),  // +1R
		)
		k := ComputeKPIs(trades, nil).Current
		assert.Equal(t, 3, k.N)
		assert.Equal(t, 2, k.Wins)
		assert.Equal(t, 1, k.Losses)
		assert.InDelta(t, 0.667, k.WinRate, 0.001)
		assert.InDelta(t, 2, k.NetR, 1e-9)
		assert.False(t, k.ProfitFactor.Unbounded)
		assert.InDelta(t, 3, k.ProfitFactor.Value, 1e-9)
	})

	t.Run("全胜集合触发无界哨兵", func(t *testing.T) {
		trades := normalized(t,
			mkTrade(100, 100, base),
			mkTrade(300, 100, base.AddDate(0, 0, 1)),
		)
		k := ComputeKPIs(trades, nil).Current
		assert.True(t, k.ProfitFactor.Unbounded)
		assert.True(t, k.Recovery.Unbounded, "maxDDR 为 0 时恢复因子无界")
		assert.Zero(t, k.MaxDrawdownR)
		assert.Greater(t, k.ProfitFactor.Float(), float64(RatioCap))
	})

	t.Run("空集合产出全零而非 NaN", func(t *testing.T) {
		k := ComputeKPIs(nil, nil).Current
		assert.Zero(t, k.N)
		assert.Zero(t, k.WinRate)
		assert.Zero(t, k.ExpectancyR)
		assert.False(t, k.ProfitFactor.Unbounded)
		assert.False(t, k.Recovery.Unbounded)
	})

	t.Run("wins+losses+ties 守恒", func(t *testing.T) {
		trades := normalized(t,
			mkTrade(50, 100, base),
			mkTrade(0, 100, base.Add(time.Hour)),
			mkTrade(-20, 100, base.Add(2*time.Hour)),
			mkTrade(0, 0, base.Add(3*time.Hour)),
		)
		k := ComputeKPIs(trades, nil).Current
		assert.Equal(t, k.N, k.Wins+k.Losses+k.Ties)
		assert.Equal(t, 2, k.Ties)
	})

	t.Run("expectancy*n 与 netR 一致", func(t *testing.T) {
		pnls := []float64{120, -80, 45, -30, 200, -150, 60, 10, -5, 90}
		raw := make([]types.Trade, 0, len(pnls))
		for i, p := range pnls {
			raw = append(raw, mkTrade(p, 100, base.Add(time.Duration(i)*time.Hour)))
		}
		trades := Normalize(raw, nil)
		k := ComputeKPIs(trades, nil).Current
		require.NotZero(t, k.N)
		assert.InDelta(t, k.NetR, k.ExpectancyR*float64(k.N), 1e-9)
	})

	t.Run("无风险额的交易不进 R 口径但计入 n", func(t *testing.T) {
		trades := normalized(t,
			mkTrade(100, 100, base),
			mkTrade(500, 0, base.Add(time.Hour)), // R 未定义
		)
		k := ComputeKPIs(trades, nil).Current
		assert.Equal(t, 2, k.N)
		assert.InDelta(t, 1, k.NetR, 1e-9)
	})

	t.Run("上一期独立归约", func(t *testing.T) {
		cur := normalized(t, mkTrade(100, 100, base))
		prior := normalized(t, mkTrade(-100, 100, base.AddDate(0, -1, 0)))
		rep := ComputeKPIs(cur, prior)
		require.NotNil(t, rep.Prior)
		assert.Equal(t, 1, rep.Prior.Losses)
		assert.Equal(t, 1, rep.Current.Wins)
	})

	t.Run("归约与输入顺序无关", func(t *testing.T) {
		a := normalized(t,
			mkTrade(200, 100, base),
			mkTrade(-100, 100, base.AddDate(0, 0, 1)),
			mkTrade(100, 100, base.AddDate(0, 0, 2)),
		)
		b := []Trade{a[2], a[0], a[1]}
		assert.Equal(t, ComputeKPIs(a, nil).Current, ComputeKPIs(b, nil).Current)
	})
}

func TestMaxDrawdownR(t *testing.T) {
	base := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)

	t.Run("单调上升时为零", func(t *testing.T) {
		trades := normalized(t,
			mkTrade(100, 100, base),
			mkTrade(50, 100, base.Add(time.Hour)),
		)
		assert.Zero(t, maxDrawdownR(trades))
	})

	t.Run("峰谷距离", func(t *testing.T) {
		trades := normalized(t,
			mkTrade(300, 100, base),                   // cum 3
			mkTrade(-200, 100, base.Add(time.Hour)),   // cum 1
			mkTrade(-100, 100, base.Add(2*time.Hour)), // cum 0, dd 3
			mkTrade(400, 100, base.Add(3*time.Hour)),  // cum 4
		)
		assert.InDelta(t, 3, maxDrawdownR(trades), 1e-9)
	})
}
