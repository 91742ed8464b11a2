package config

import "fmt"

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.Engine.validate(); err != nil {
		return err
	}
	if err := c.Report.validate(); err != nil {
		return err
	}
	return nil
}

func (e *EngineConfig) validate() error {
	if e.TrimFraction < 0 || e.TrimFraction >= 0.5 {
		return fmt.Errorf("engine.trim_fraction must be in [0, 0.5)")
	}
	if e.InsightMinSample < 0 {
		return fmt.Errorf("engine.insight_min_sample must be >= 0")
	}
	if e.StartingBalance < 0 {
		return fmt.Errorf("engine.starting_balance must be >= 0")
	}
	if _, err := e.Location(); err != nil {
		return err
	}
	return nil
}

func (r *ReportConfig) validate() error {
	if r.SMAPeriod < 0 {
		return fmt.Errorf("report.sma_period must be >= 0")
	}
	return nil
}
