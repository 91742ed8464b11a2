package analytics

import "encoding/json"

// RatioCap 比值展示上限，约定超过该值一律按 "∞" 渲染。
const RatioCap = 99

// unboundedValue 无界比值序列化时落在上限之外的哨兵数值。
const unboundedValue = RatioCap + 1

// Ratio 显式区分有界/无界的比值（利润因子、恢复因子）。
// 不用浮点 Inf 表达无界，序列化与比较在任何消费端都有明确语义。
type Ratio struct {
	Value     float64
	Unbounded bool
}

func FiniteRatio(v float64) Ratio { return Ratio{Value: v} }

func UnboundedRatio() Ratio { return Ratio{Unbounded: true} }

// Float 返回用于排序/展示的数值，无界时固定落在 RatioCap 之上。
func (r Ratio) Float() float64 {
	if r.Unbounded {
		return unboundedValue
	}
	return r.Value
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value     float64 `json:"value"`
		Unbounded bool    `json:"unbounded"`
	}{Value: r.Float(), Unbounded: r.Unbounded})
}

func (r *Ratio) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value     float64 `json:"value"`
		Unbounded bool    `json:"unbounded"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Unbounded {
		*r = UnboundedRatio()
		return nil
	}
	*r = FiniteRatio(raw.Value)
	return nil
}
