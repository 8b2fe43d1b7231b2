package core

import (
	"sort"

	"github.com/rushteam/tonekit/pkg/conv"
	"github.com/rushteam/tonekit/pkg/utils"
)

// Style 是增强配置的全局风格。
type Style string

const (
	StyleNatural Style = "natural" // 自然
	StyleVibrant Style = "vibrant" // 鲜艳
	StyleMuted   Style = "muted"   // 低饱和
	StyleWarm    Style = "warm"    // 暖调
	StyleCool    Style = "cool"    // 冷调
)

// Styles 返回全部风格（固定顺序，用于确定性遍历）。
func Styles() []Style {
	return []Style{StyleNatural, StyleVibrant, StyleMuted, StyleWarm, StyleCool}
}

// Priority 是增强配置的全局优先级。
type Priority string

const (
	PriorityQuality  Priority = "quality"  // 质量优先
	PrioritySpeed    Priority = "speed"    // 速度优先
	PriorityArtistic Priority = "artistic" // 艺术化优先
)

// UserPreferences 是调用方显式给出的用户偏好（可选输入）。
// 显式偏好优先于从历史学到的画像，例如 PreferredStyle 直接决定配置风格。
type UserPreferences struct {
	PreferredStyle Style `json:"preferred_style,omitempty"`
}

// OperationConfig 是单个被调度的操作实例。
//
// 设计要点：
//   - Name 必须能在操作注册表（op 包）解析
//   - Order 定义执行顺序（全序）；同名操作允许重复出现（有意重复应用时）
//   - Labels 记录该操作的来源与调权历史（labels-first，可解释）
type OperationConfig struct {
	Name    string                 `json:"name"`
	Enabled bool                   `json:"enabled"`
	Params  map[string]any         `json:"params,omitempty"`
	Order   int                    `json:"order"`
	Labels  map[string]utils.Label `json:"labels,omitempty"`
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (oc *OperationConfig) PutLabel(key string, lbl utils.Label) {
	if oc.Labels == nil {
		oc.Labels = make(map[string]utils.Label)
	}
	if old, ok := oc.Labels[key]; ok {
		oc.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	oc.Labels[key] = lbl
}

// Clone 深拷贝操作实例（参数与 Labels 独立，互不影响）。
func (oc *OperationConfig) Clone() *OperationConfig {
	if oc == nil {
		return nil
	}
	out := &OperationConfig{
		Name:    oc.Name,
		Enabled: oc.Enabled,
		Order:   oc.Order,
		Params:  conv.CloneParams(oc.Params),
	}
	if oc.Labels != nil {
		out.Labels = make(map[string]utils.Label, len(oc.Labels))
		for k, v := range oc.Labels {
			out.Labels[k] = v
		}
	}
	return out
}

// EnhancementConfig 是单张图像的完整增强计划。
//
// 不变式：
//   - Strength 始终在 [0,1]
//   - Operations 在执行前按 Order 升序排列
//   - 交付给编排器（orchestrate）后视为不可变，调整一律走 Clone
type EnhancementConfig struct {
	Operations []*OperationConfig `json:"operations"`
	Strength   float64            `json:"strength"`
	Priority   Priority           `json:"priority"`
	Style      Style              `json:"style"`
}

// SortOperations 按 Order 升序稳定排序。
func (c *EnhancementConfig) SortOperations() {
	sort.SliceStable(c.Operations, func(i, j int) bool {
		return c.Operations[i].Order < c.Operations[j].Order
	})
}

// NextOrder 返回下一个可用的 Order 槽位（当前最大 Order + 1）。
func (c *EnhancementConfig) NextOrder() int {
	next := 0
	for _, op := range c.Operations {
		if op.Order >= next {
			next = op.Order + 1
		}
	}
	return next
}

// FindOperation 按名称查找首个操作实例，不存在时返回 nil。
func (c *EnhancementConfig) FindOperation(name string) *OperationConfig {
	for _, op := range c.Operations {
		if op.Name == name {
			return op
		}
	}
	return nil
}

// EnabledOperationNames 返回启用操作的名称（按 Order 升序）。
func (c *EnhancementConfig) EnabledOperationNames() []string {
	ops := make([]*OperationConfig, len(c.Operations))
	copy(ops, c.Operations)
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].Order < ops[j].Order })
	names := make([]string, 0, len(ops))
	for _, op := range ops {
		if op.Enabled {
			names = append(names, op.Name)
		}
	}
	return names
}

// Clone 深拷贝整个配置。
func (c *EnhancementConfig) Clone() *EnhancementConfig {
	if c == nil {
		return nil
	}
	out := &EnhancementConfig{
		Strength: c.Strength,
		Priority: c.Priority,
		Style:    c.Style,
	}
	out.Operations = make([]*OperationConfig, len(c.Operations))
	for i, op := range c.Operations {
		out.Operations[i] = op.Clone()
	}
	return out
}

// Clamp01 将 v 收敛到 [0,1]。
// 生成/个性化路径上的越界数值一律收敛、不报错（构造期的 gamma 校验除外）。
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
