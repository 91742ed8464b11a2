package analytics

import (
	"testing"
	"time"

	"tradelens/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradedTrade(pnl float64, grade string, score float64, exit time.Time) types.Trade {
	tr := mkTrade(pnl, 100, exit)
	tr.Grade = &grade
	tr.SetupScore = &score
	return tr
}

func TestGradeCorrelation(t *testing.T) {
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	trades := Normalize([]types.Trade{
		gradedTrade(200, "A+", 0.95, base),
		gradedTrade(100, "A+", 0.85, base.Add(time.Hour)),
		gradedTrade(-100, "C", 0.5, base.Add(2*time.Hour)),
		mkTrade(50, 100, base.Add(3*time.Hour)), // 无评级
	}, nil)

	metrics := GradeCorrelation(trades)

	t.Run("六个评级桶全量返回", func(t *testing.T) {
		require.Len(t, metrics, 6)
		for i, g := range GradeAxis {
			assert.Equal(t, g, metrics[i].Grade)
		}
	})

	t.Run("按评级聚合", func(t *testing.T) {
		assert.Equal(t, 2, metrics[0].N) // A+
		assert.InDelta(t, 0.9, metrics[0].AvgScore, 1e-9)
		assert.InDelta(t, 1.5, metrics[0].ExpectancyR, 1e-9)
	})

	t.Run("零样本评级仍占位", func(t *testing.T) {
		assert.Equal(t, "F", metrics[5].Grade)
		assert.Zero(t, metrics[5].N)
		assert.Zero(t, metrics[5].AvgScore)
	})

	t.Run("未知评级字母被忽略", func(t *testing.T) {
		odd := "E"
		tr := mkTrade(10, 100, base)
		tr.Grade = &odd
		m := GradeCorrelation(Normalize([]types.Trade{tr}, nil))
		total := 0
		for _, g := range m {
			total += g.N
		}
		assert.Zero(t, total)
	})
}
