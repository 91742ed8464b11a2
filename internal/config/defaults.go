package config

import "strings"

// 默认值常量
const (
	defaultAppEnv           = "dev"
	defaultAppLogLevel      = "info"
	defaultServerAddr       = ":9980"
	defaultTradesPath       = "/data/db/trades.db"
	defaultBacktestsPath    = "/data/db/backtests.db"
	defaultTimezone         = "UTC"
	defaultTrimFraction     = 0.025
	defaultInsightMinSample = 15
	defaultStartingBalance  = 10000
	defaultPlaybooksPath    = "configs/playbooks.yaml"
	defaultSMAPeriod        = 20
)

type keySet map[string]struct{}

func (k keySet) mark(key string) { k[key] = struct{}{} }

func (k keySet) isSet(key string) bool {
	_, ok := k[strings.ToLower(key)]
	return ok
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target == 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func floatFieldDefault(key string, target *float64, def float64) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target == 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

// applyDefaults 为所有子配置应用默认值，已显式设置的键不覆盖。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Server.applyDefaults(keys)
	c.Store.applyDefaults(keys)
	c.Engine.applyDefaults(keys)
	c.Playbooks.applyDefaults(keys)
	c.Report.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
	)
}

func (s *ServerConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("server.addr", &s.Addr, defaultServerAddr),
	)
}

func (s *StoreConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("store.trades_path", &s.TradesPath, defaultTradesPath),
		stringFieldDefault("store.backtests_path", &s.BacktestsPath, defaultBacktestsPath),
	)
}

func (e *EngineConfig) applyDefaults(keys keySet) {
	if e == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("engine.timezone", &e.Timezone, defaultTimezone),
		floatFieldDefault("engine.trim_fraction", &e.TrimFraction, defaultTrimFraction),
		intFieldDefault("engine.insight_min_sample", &e.InsightMinSample, defaultInsightMinSample),
		floatFieldDefault("engine.starting_balance", &e.StartingBalance, defaultStartingBalance),
	)
}

func (p *PlaybooksConfig) applyDefaults(keys keySet) {
	if p == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("playbooks.path", &p.Path, defaultPlaybooksPath),
	)
}

func (r *ReportConfig) applyDefaults(keys keySet) {
	if r == nil {
		return
	}
	applyFieldDefaults(keys,
		intFieldDefault("report.sma_period", &r.SMAPeriod, defaultSMAPeriod),
	)
}
