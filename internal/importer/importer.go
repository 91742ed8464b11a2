package importer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tradelens/internal/types"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

// tradeSchema 约束导入载荷的最小形态，字段映射的宽容性由 gjson 负责，
// 结构合法性由 schema 把关。
const tradeSchema = `{
	"type": "object",
	"required": ["account_id", "trades"],
	"properties": {
		"account_id": {"type": "string", "minLength": 1},
		"trades": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["symbol", "entry_at", "exit_at", "pnl"],
				"properties": {
					"symbol": {"type": "string", "minLength": 1},
					"direction": {"type": "string"},
					"entry_at": {"type": "string"},
					"exit_at": {"type": "string"},
					"pnl": {"type": "number"},
					"risk": {"type": "number"},
					"r_multiple": {"type": "number"},
					"playbook_id": {"type": "string"},
					"playbook": {"type": "string"},
					"setup_score": {"type": "number"},
					"grade": {"type": "string"},
					"session": {"type": "string"},
					"lot_size": {"type": "number"},
					"tags": {"type": "array", "items": {"type": "string"}}
				}
			}
		}
	}
}`

var compiledTradeSchema = mustCompile(tradeSchema)

func mustCompile(raw string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("trades.json", strings.NewReader(raw)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("trades.json")
}

// Result 一次导入的解析结果与逐条跳过原因。
type Result struct {
	Trades  []types.Trade `json:"-"`
	Total   int           `json:"total"`
	Skipped []string      `json:"skipped,omitempty"`
}

// ParseTrades 校验并解析券商导出的 JSON 载荷。
// 结构不合法整体报错；单条记录的可恢复问题（时间解析失败等）
// 记入 Skipped 并继续，不让一条坏记录拖垮整批导入。
func ParseTrades(payload []byte) (*Result, error) {
	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("导入载荷不是合法 JSON: %w", err)
	}
	if err := compiledTradeSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("导入载荷校验失败: %w", err)
	}

	root := gjson.ParseBytes(payload)
	accountID := root.Get("account_id").String()

	res := &Result{}
	now := time.Now().UTC()
	root.Get("trades").ForEach(func(idx, item gjson.Result) bool {
		res.Total++
		trade, err := parseTrade(accountID, item, now)
		if err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("#%d: %v", int(idx.Int()), err))
			return true
		}
		res.Trades = append(res.Trades, trade)
		return true
	})
	return res, nil
}

func parseTrade(accountID string, item gjson.Result, importedAt time.Time) (types.Trade, error) {
	entry, err := parseTime(item.Get("entry_at").String())
	if err != nil {
		return types.Trade{}, fmt.Errorf("entry_at: %w", err)
	}
	exit, err := parseTime(item.Get("exit_at").String())
	if err != nil {
		return types.Trade{}, fmt.Errorf("exit_at: %w", err)
	}

	direction := strings.ToLower(item.Get("direction").String())
	if direction != types.DirectionShort {
		direction = types.DirectionLong
	}

	t := types.Trade{
		ID:         uuid.NewString(),
		AccountID:  accountID,
		Symbol:     item.Get("symbol").String(),
		Direction:  direction,
		EntryAt:    entry,
		ExitAt:     exit,
		PnL:        item.Get("pnl").Float(),
		Risk:       item.Get("risk").Float(),
		LotSize:    item.Get("lot_size").Float(),
		Playbook:   item.Get("playbook").String(),
		ImportedAt: &importedAt,
	}
	if v := item.Get("r_multiple"); v.Exists() {
		r := v.Float()
		t.RMultiple = &r
	}
	if v := item.Get("playbook_id"); v.Exists() {
		id := v.String()
		t.PlaybookID = &id
	}
	if v := item.Get("setup_score"); v.Exists() {
		s := v.Float()
		t.SetupScore = &s
	}
	if v := item.Get("grade"); v.Exists() {
		g := v.String()
		t.Grade = &g
	}
	if v := item.Get("session"); v.Exists() {
		s := v.String()
		t.Session = &s
	}
	for _, tag := range item.Get("tags").Array() {
		t.Tags = append(t.Tags, tag.String())
	}
	return t, nil
}

// parseTime 依次尝试 RFC3339 与常见的日期时间写法。
func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("时间字段为空")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析时间: %q", raw)
}
