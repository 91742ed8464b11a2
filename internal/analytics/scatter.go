package analytics

// ScatterPoint 持仓时长×R 散点，元数据供 tooltip 展示。
type ScatterPoint struct {
	Date        string  `json:"date"`
	Symbol      string  `json:"symbol"`
	Playbook    string  `json:"playbook,omitempty"`
	HoldMinutes float64 `json:"hold_minutes"`
	R           float64 `json:"r"`
}

// ScatterPoints 把同时具备持仓时长与 R 倍数的交易投影为散点，
// 缺任一坐标的交易静默略过。
func ScatterPoints(trades []Trade) []ScatterPoint {
	points := make([]ScatterPoint, 0, len(trades))
	for _, t := range trades {
		if !t.HoldValid || !t.RValid {
			continue
		}
		points = append(points, ScatterPoint{
			Date:        t.CloseDate,
			Symbol:      t.Symbol,
			Playbook:    t.Playbook,
			HoldMinutes: t.HoldMinutes,
			R:           t.R,
		})
	}
	return points
}
