package analytics

import "tradelens/internal/types"

// StreakType 连续状态类型。
type StreakType string

const (
	StreakNone StreakType = "none"
	StreakWin  StreakType = "win"
	StreakLoss StreakType = "loss"
)

// StreakSpan 一段历史最佳/最差连续的长度与日期区间。
type StreakSpan struct {
	Length int    `json:"length"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
}

// StreakState 当前连续与历史最佳连胜/最差连亏。
type StreakState struct {
	Current     int        `json:"current"`
	CurrentType StreakType `json:"current_type"`
	BestWin     StreakSpan `json:"best_win"`
	WorstLoss   StreakSpan `json:"worst_loss"`
}

// DetectStreaks 对按日期升序的逐日结果做单趟扫描。
// 粒度是"日"：当日 R 合计为正记一个 win day，与单笔交易胜负无关。
// 无交易日把当前连续清为 0/none（打断但不延长也不反向），
// R 恰好为 0 的交易日同样视为打断。
// 最佳/最差严格按 ">" 更新，等长并列时保留最早出现的一段。
func DetectStreaks(days []types.DayResult) StreakState {
	state := StreakState{CurrentType: StreakNone}
	start := ""

	for _, day := range days {
		if day.Trades == 0 || day.NetR == 0 {
			state.Current = 0
			state.CurrentType = StreakNone
			start = ""
			continue
		}
		var typ StreakType
		if day.NetR > 0 {
			typ = StreakWin
		} else {
			typ = StreakLoss
		}
		if typ == state.CurrentType {
			state.Current++
		} else {
			state.Current = 1
			state.CurrentType = typ
			start = day.Date
		}

		switch typ {
		case StreakWin:
			if state.Current > state.BestWin.Length {
				state.BestWin = StreakSpan{Length: state.Current, Start: start, End: day.Date}
			}
		case StreakLoss:
			if state.Current > state.WorstLoss.Length {
				state.WorstLoss = StreakSpan{Length: state.Current, Start: start, End: day.Date}
			}
		}
	}
	return state
}
