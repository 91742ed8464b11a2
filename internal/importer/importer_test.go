package importer

import (
	"testing"

	"tradelens/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrades(t *testing.T) {
	t.Run("合法载荷", func(t *testing.T) {
		payload := []byte(`{
			"account_id": "acct-1",
			"trades": [
				{
					"symbol": "EURUSD",
					"direction": "short",
					"entry_at": "2025-03-04T09:00:00Z",
					"exit_at": "2025-03-04T11:30:00Z",
					"pnl": 150.5,
					"risk": 100,
					"session": "London",
					"grade": "A",
					"setup_score": 0.8,
					"tags": ["breakout", "news"]
				},
				{
					"symbol": "GBPUSD",
					"entry_at": "2025-03-05 10:00:00",
					"exit_at": "2025-03-05 12:00:00",
					"pnl": -50
				}
			]
		}`)
		res, err := ParseTrades(payload)
		require.NoError(t, err)
		require.Len(t, res.Trades, 2)
		assert.Equal(t, 2, res.Total)
		assert.Empty(t, res.Skipped)

		first := res.Trades[0]
		assert.NotEmpty(t, first.ID)
		assert.Equal(t, "acct-1", first.AccountID)
		assert.Equal(t, types.DirectionShort, first.Direction)
		require.NotNil(t, first.Session)
		assert.Equal(t, "London", *first.Session)
		require.NotNil(t, first.SetupScore)
		assert.InDelta(t, 0.8, *first.SetupScore, 1e-9)
		assert.Equal(t, []string{"breakout", "news"}, first.Tags)

		second := res.Trades[1]
		assert.Equal(t, types.DirectionLong, second.Direction, "方向缺省按 long")
		assert.Nil(t, second.Grade)
	})

	t.Run("缺必填字段整体拒绝", func(t *testing.T) {
		_, err := ParseTrades([]byte(`{"trades": []}`))
		assert.Error(t, err)
	})

	t.Run("非 JSON 载荷报错", func(t *testing.T) {
		_, err := ParseTrades([]byte(`not json`))
		assert.Error(t, err)
	})

	t.Run("坏记录跳过不拖垮整批", func(t *testing.T) {
		payload := []byte(`{
			"account_id": "acct-1",
			"trades": [
				{"symbol": "EURUSD", "entry_at": "garbage", "exit_at": "2025-03-04T11:00:00Z", "pnl": 1},
				{"symbol": "EURUSD", "entry_at": "2025-03-04T09:00:00Z", "exit_at": "2025-03-04T11:00:00Z", "pnl": 1}
			]
		}`)
		res, err := ParseTrades(payload)
		require.NoError(t, err)
		assert.Len(t, res.Trades, 1)
		assert.Len(t, res.Skipped, 1)
		assert.Equal(t, 2, res.Total)
	})
}
