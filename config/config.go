// Package config 从 YAML/JSON 文件加载调参表（core.Tuning）。
//
// 加载语义：文件内容覆盖在默认调参之上（未出现的字段保留默认值），
// 加载后统一校验，非法调参直接拒绝。
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/tonekit/core"
)

// LoadTuning 按扩展名（.yaml/.yml/.json）加载调参文件。
func LoadTuning(path string) (*core.Tuning, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadTuningYAML(path)
	case ".json":
		return LoadTuningJSON(path)
	default:
		return nil, fmt.Errorf("config: unsupported tuning file %q (want .yaml/.yml/.json)", path)
	}
}

// LoadTuningYAML 加载 YAML 调参文件，覆盖在默认调参之上。
func LoadTuningYAML(path string) (*core.Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read tuning file: %w", err)
	}
	t := core.DefaultTuning()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("config: parse tuning yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadTuningJSON 加载 JSON 调参文件，覆盖在默认调参之上。
func LoadTuningJSON(path string) (*core.Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read tuning file: %w", err)
	}
	t := core.DefaultTuning()
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("config: parse tuning json: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
