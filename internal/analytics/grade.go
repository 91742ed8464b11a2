package analytics

// GradeAxis 固定的评级轴，结果始终按此顺序全量返回，
// 样本为 0 的评级也占位，展示层才能画出完整坐标。
var GradeAxis = [6]string{"A+", "A", "B", "C", "D", "F"}

// GradeMetrics 单个评级桶的相关性指标。
type GradeMetrics struct {
	Grade       string  `json:"grade"`
	N           int     `json:"n"`
	AvgScore    float64 `json:"avg_score"`
	ExpectancyR float64 `json:"expectancy_r"`
}

// GradeCorrelation 按交易携带的评级字母分桶（评级由上游产品在
// 写入时反规范化到交易上，这里不重新计算），产出每档的样本数、
// 平均 setup 得分与 R 期望。
func GradeCorrelation(trades []Trade) [6]GradeMetrics {
	index := make(map[string]int, len(GradeAxis))
	for i, g := range GradeAxis {
		index[g] = i
	}
	var accs [6]metricAcc
	for _, t := range trades {
		if t.Grade == nil {
			continue
		}
		i, ok := index[*t.Grade]
		if !ok {
			continue
		}
		accs[i].add(t)
	}
	var out [6]GradeMetrics
	for i, g := range GradeAxis {
		out[i] = GradeMetrics{
			Grade:       g,
			N:           accs[i].n,
			AvgScore:    accs[i].avgScore(),
			ExpectancyR: accs[i].expectancyR(),
		}
	}
	return out
}
