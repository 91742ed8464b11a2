package analytics

import (
	"testing"

	"tradelens/internal/types"

	"github.com/stretchr/testify/assert"
)

func day(date string, netR float64, n int) types.DayResult {
	return types.DayResult{Date: date, NetR: netR, Trades: n}
}

func TestDetectStreaks(t *testing.T) {
	t.Run("基础连胜连亏", func(t *testing.T) {
		state := DetectStreaks([]types.DayResult{
			day("2025-05-01", 2, 3),
			day("2025-05-02", 1, 2),
			day("2025-05-03", 0.5, 1),
			day("2025-05-04", -1, 2),
			day("2025-05-05", -2, 1),
		})
		assert.Equal(t, 2, state.Current)
		assert.Equal(t, StreakLoss, state.CurrentType)
		assert.Equal(t, 3, state.BestWin.Length)
		assert.Equal(t, "2025-05-01", state.BestWin.Start)
		assert.Equal(t, "2025-05-03", state.BestWin.End)
		assert.Equal(t, 2, state.WorstLoss.Length)
	})

	t.Run("无交易日打断但不惩罚", func(t *testing.T) {
		state := DetectStreaks([]types.DayResult{
			day("2025-05-01", 1, 1),
			day("2025-05-02", 1, 1),
			day("2025-05-03", 0, 0), // 无交易
			day("2025-05-04", 1, 1),
		})
		assert.Equal(t, 1, state.Current)
		assert.Equal(t, StreakWin, state.CurrentType)
		assert.Equal(t, 2, state.BestWin.Length, "已存的最佳不受无交易日影响")
	})

	t.Run("无交易日清零当前状态", func(t *testing.T) {
		state := DetectStreaks([]types.DayResult{
			day("2025-05-01", 1, 1),
			day("2025-05-02", 0, 0),
		})
		assert.Zero(t, state.Current)
		assert.Equal(t, StreakNone, state.CurrentType)
	})

	t.Run("等长并列保留最早一段", func(t *testing.T) {
		state := DetectStreaks([]types.DayResult{
			day("2025-05-01", 1, 1),
			day("2025-05-02", 1, 1),
			day("2025-05-03", -1, 1),
			day("2025-05-04", 1, 1),
			day("2025-05-05", 1, 1),
		})
		assert.Equal(t, 2, state.BestWin.Length)
		assert.Equal(t, "2025-05-01", state.BestWin.Start)
		assert.Equal(t, "2025-05-02", state.BestWin.End)
	})

	t.Run("日内 R 合计决定胜负日", func(t *testing.T) {
		// 当日多笔交易，合计为负即是 loss day
		state := DetectStreaks([]types.DayResult{
			day("2025-05-01", -0.5, 4),
		})
		assert.Equal(t, StreakLoss, state.CurrentType)
		assert.Equal(t, 1, state.WorstLoss.Length)
	})

	t.Run("空输入", func(t *testing.T) {
		state := DetectStreaks(nil)
		assert.Zero(t, state.Current)
		assert.Equal(t, StreakNone, state.CurrentType)
		assert.Zero(t, state.BestWin.Length)
	})
}
