package analytics

import (
	"context"
	"testing"
	"time"

	"tradelens/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTradeSource struct {
	mock.Mock
}

func (m *MockTradeSource) ListTrades(ctx context.Context, accountID string, from, to time.Time) ([]types.Trade, error) {
	args := m.Called(ctx, accountID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Trade), args.Error(1)
}

type MockBacktestSource struct {
	mock.Mock
}

func (m *MockBacktestSource) ListBacktests(ctx context.Context, playbookID string) ([]types.Backtest, error) {
	args := m.Called(ctx, playbookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Backtest), args.Error(1)
}

func TestServiceDashboard(t *testing.T) {
	base := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	raw := []types.Trade{
		mkTrade(200, 100, base.AddDate(0, 0, 2)), // 乱序给入，service 负责排序
		mkTrade(-100, 100, base),
		mkTrade(100, 100, base.AddDate(0, 0, 1)),
	}

	src := new(MockTradeSource)
	src.On("ListTrades", mock.Anything, "acct-1", mock.Anything, mock.Anything).Return(raw, nil)

	svc, err := NewService(src, nil, Options{StartingBalance: 10000})
	require.NoError(t, err)

	dash, err := svc.Dashboard(context.Background(), DashboardRequest{AccountID: "acct-1"})
	require.NoError(t, err)

	t.Run("各分量口径一致", func(t *testing.T) {
		assert.Equal(t, 3, dash.KPIs.Current.N)
		require.NotEmpty(t, dash.Equity)
		assert.InDelta(t, dash.KPIs.Current.NetR, dash.Equity[len(dash.Equity)-1].CumulativeR, 1e-9)
	})

	t.Run("曲线按日期升序", func(t *testing.T) {
		for i := 1; i < len(dash.Equity); i++ {
			assert.Greater(t, dash.Equity[i].Date, dash.Equity[i-1].Date)
		}
	})

	t.Run("连续检测消费逐日聚合", func(t *testing.T) {
		assert.Equal(t, StreakWin, dash.Streaks.CurrentType)
		assert.Equal(t, 2, dash.Streaks.Current)
	})

	src.AssertExpectations(t)
}

func TestServiceDashboardPriorPeriod(t *testing.T) {
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	from := base
	to := base.AddDate(0, 1, 0)

	src := new(MockTradeSource)
	src.On("ListTrades", mock.Anything, "acct-1", from, to).
		Return([]types.Trade{mkTrade(100, 100, from.Add(time.Hour))}, nil)
	src.On("ListTrades", mock.Anything, "acct-1", from.Add(-to.Sub(from)), from).
		Return([]types.Trade{mkTrade(-100, 100, from.Add(-time.Hour))}, nil)

	svc, err := NewService(src, nil, Options{})
	require.NoError(t, err)

	dash, err := svc.Dashboard(context.Background(), DashboardRequest{AccountID: "acct-1", From: from, To: to})
	require.NoError(t, err)
	require.NotNil(t, dash.KPIs.Prior)
	assert.Equal(t, 1, dash.KPIs.Prior.Losses)
	assert.Equal(t, 1, dash.KPIs.Current.Wins)
	src.AssertExpectations(t)
}

func TestServiceRecommend(t *testing.T) {
	bts := new(MockBacktestSource)
	bts.On("ListBacktests", mock.Anything, "pb-1").Return([]types.Backtest{
		bt(10, 20, 2), bt(14, 28, 2), bt(12, 24, 2),
	}, nil)

	src := new(MockTradeSource)
	svc, err := NewService(src, bts, Options{})
	require.NoError(t, err)

	rec, err := svc.Recommend(context.Background(), "pb-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.InDelta(t, 12, rec.SLPips, 1e-9)
	bts.AssertExpectations(t)
}

func TestServiceRequiresTradeSource(t *testing.T) {
	_, err := NewService(nil, nil, Options{})
	assert.Error(t, err)
}
