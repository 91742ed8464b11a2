package playbook

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"tradelens/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Definition 单个交易策略手册（playbook）的定义。
// 评级阈值按分数降序匹配：score >= MinScore 的第一档即为评级。
type Definition struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	GradeScale  []GradeThreshold `yaml:"grade_scale"`
}

// GradeThreshold 评级档位。
type GradeThreshold struct {
	Grade    string  `yaml:"grade"`
	MinScore float64 `yaml:"min_score"`
}

// FileConfig 映射 playbooks 配置文件。
type FileConfig struct {
	Playbooks map[string]Definition `yaml:"playbooks"`
}

// Snapshot 公开的定义快照。
type Snapshot struct {
	Version   int64
	LoadedAt  time.Time
	Playbooks map[string]Definition
}

// ChangeListener 在 registry 重载时触发。
type ChangeListener func(Snapshot)

// Registry 管理 playbook 定义，配置文件变更时热重载。
type Registry struct {
	path string
	v    *viper.Viper

	mu        sync.RWMutex
	snapshot  Snapshot
	listeners []ChangeListener
}

// NewRegistry 读取定义文件并监听更新。
func NewRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("playbook registry requires path")
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read playbook config failed: %w", err)
	}
	r := &Registry{path: path, v: v}
	if err := r.reload(); err != nil {
		return nil, err
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := r.reload(); err != nil {
			logger.Errorf("playbook reload failed: %v", err)
			return
		}
		r.notifyListeners()
	})
	v.WatchConfig()
	return r, nil
}

// Snapshot 返回当前定义集。
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSnapshot(r.snapshot)
}

// Definition 返回指定 ID 的定义。
func (r *Registry) Definition(id string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.snapshot.Playbooks[strings.TrimSpace(id)]
	return def, ok
}

// OnChange 注册重载监听。
func (r *Registry) OnChange(fn ChangeListener) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// GradeFor 按定义的评级档位把 setup 分数换算为评级字母。
// 无定义或无档位时返回 false，交由调用方保留原值。
func (r *Registry) GradeFor(id string, score float64) (string, bool) {
	def, ok := r.Definition(id)
	if !ok || len(def.GradeScale) == 0 {
		return "", false
	}
	return def.gradeFor(score)
}

func (d Definition) gradeFor(score float64) (string, bool) {
	scale := append([]GradeThreshold(nil), d.GradeScale...)
	sort.SliceStable(scale, func(i, j int) bool {
		return scale[i].MinScore > scale[j].MinScore
	})
	for _, t := range scale {
		if score >= t.MinScore {
			return t.Grade, true
		}
	}
	return scale[len(scale)-1].Grade, true
}

func (r *Registry) reload() error {
	cfg, err := readPlaybookFile(r.path)
	if err != nil {
		return err
	}
	defs := make(map[string]Definition, len(cfg.Playbooks))
	for name, def := range cfg.Playbooks {
		norm := normalizeDefinition(name, def)
		defs[norm.ID] = norm
	}
	r.mu.Lock()
	r.snapshot = Snapshot{
		Version:   r.snapshot.Version + 1,
		LoadedAt:  time.Now(),
		Playbooks: defs,
	}
	r.mu.Unlock()
	logger.Infof("playbook registry loaded %d definitions from %s", len(defs), filepath.Base(r.path))
	return nil
}

func (r *Registry) notifyListeners() {
	r.mu.RLock()
	snap := cloneSnapshot(r.snapshot)
	listeners := append([]ChangeListener(nil), r.listeners...)
	r.mu.RUnlock()
	for _, fn := range listeners {
		if fn == nil {
			continue
		}
		go func(cb ChangeListener) {
			defer safeRecover("playbook listener")
			cb(snap)
		}(fn)
	}
}

func normalizeDefinition(name string, def Definition) Definition {
	def.ID = strings.TrimSpace(def.ID)
	if def.ID == "" {
		def.ID = strings.TrimSpace(name)
	}
	if def.Name == "" {
		def.Name = def.ID
	}
	def.Description = strings.TrimSpace(def.Description)
	return def
}

func readPlaybookFile(path string) (FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read playbook config failed: %w", err)
	}
	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse playbook config failed: %w", err)
	}
	return cfg, nil
}

func cloneSnapshot(src Snapshot) Snapshot {
	dst := Snapshot{
		Version:   src.Version,
		LoadedAt:  src.LoadedAt,
		Playbooks: make(map[string]Definition, len(src.Playbooks)),
	}
	for id, def := range src.Playbooks {
		dst.Playbooks[id] = def
	}
	return dst
}

func safeRecover(tag string) {
	if r := recover(); r != nil {
		logger.Errorf("%s panic: %v", tag, r)
	}
}
