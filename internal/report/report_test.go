package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelens/internal/analytics"
)

func sampleCurve() []analytics.EquityPoint {
	return []analytics.EquityPoint{
		{Date: "2025-03-03", CumulativeR: 1.5, Equity: 10150, DrawdownPercent: 0},
		{Date: "2025-03-04", CumulativeR: 0.5, Equity: 10050, DrawdownPercent: 0.99},
		{Date: "2025-03-05", CumulativeR: 2.5, Equity: 10250, DrawdownPercent: 0},
		{Date: "2025-03-06", CumulativeR: 3.0, Equity: 10300, DrawdownPercent: 0},
	}
}

func TestRenderEquity(t *testing.T) {
	t.Run("生成 HTML 报表", func(t *testing.T) {
		img, err := RenderEquity(Input{
			AccountID: "acct-1",
			Curve:     sampleCurve(),
			SMAPeriod: 2,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, img.HTML)
		assert.Empty(t, img.PNG)
		assert.Equal(t, "acct-1_equity.png", img.Filename)
		assert.Contains(t, img.Description, "ACCT-1")

		html := string(img.HTML)
		assert.True(t, strings.Contains(html, "Equity"))
		assert.True(t, strings.Contains(html, "Drawdown"))
	})

	t.Run("空曲线返回错误", func(t *testing.T) {
		_, err := RenderEquity(Input{AccountID: "acct-1"})
		assert.Error(t, err)
	})

	t.Run("缺少账户返回错误", func(t *testing.T) {
		_, err := RenderEquity(Input{Curve: sampleCurve()})
		assert.Error(t, err)
	})
}

func TestSmaSeries(t *testing.T) {
	t.Run("样本不足返回 nil", func(t *testing.T) {
		assert.Nil(t, smaSeries(sampleCurve(), 10))
		assert.Nil(t, smaSeries(sampleCurve(), 0))
	})

	t.Run("周期内取均值", func(t *testing.T) {
		out := smaSeries(sampleCurve(), 2)
		require.Len(t, out, 4)
		assert.InDelta(t, (10150.0+10050.0)/2, out[1], 1e-9)
		assert.InDelta(t, (10250.0+10300.0)/2, out[3], 1e-9)
	})
}

func TestMaxDrawdownPercent(t *testing.T) {
	assert.InDelta(t, 0.99, maxDrawdownPercent(sampleCurve()), 1e-9)
	assert.Zero(t, maxDrawdownPercent(nil))
}
