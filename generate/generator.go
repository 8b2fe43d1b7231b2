// Package generate 实现配置生成器：分析结果 -> 有序、带参数的增强配置。
//
// 确定性是必须满足的可测性质：相同的分析结果与偏好输入，输出逐字节一致
// （无随机、无时间依赖）。
package generate

import (
	"fmt"

	"github.com/rushteam/tonekit/core"
	"github.com/rushteam/tonekit/op"
	"github.com/rushteam/tonekit/pkg/utils"
)

// Generator 是配置生成器。
//
// 算法（规则驱动）：
//  1. 按图像类型取基础操作集（未知类型回退 landscape）
//  2. 每个条目用注册表默认参数实例化，Order 递增
//  3. 扫描质量阈值：exposure/sharpness 偏低时追加尚未出现的修正操作
//  4. 按 Order 排序
//  5. overall 质量经阶梯函数得出全局强度
//  6. 推导优先级与风格（显式偏好 > 氛围规则 > 类型规则 > 自然）
type Generator struct {
	registry *op.Registry
	tuning   *core.Tuning
}

// New 创建生成器。registry/tuning 传 nil 时使用默认值。
func New(registry *op.Registry, tuning *core.Tuning) *Generator {
	if registry == nil {
		registry = op.Default()
	}
	if tuning == nil {
		tuning = core.DefaultTuning()
	}
	return &Generator{registry: registry, tuning: tuning}
}

// Generate 生成基础增强配置。
// 基础集或修正组引用了未注册的操作名时返回 UNKNOWN_OPERATION
// （构建配置阶段是硬拒绝；执行阶段的容忍跳过在 orchestrate 包）。
func (g *Generator) Generate(a *core.AnalysisResult, prefs *core.UserPreferences) (*core.EnhancementConfig, error) {
	if a == nil {
		return nil, fmt.Errorf("generate: analysis result is required")
	}

	cfg := &core.EnhancementConfig{}

	// 1-2. 基础操作集
	for _, name := range baseSetFor(a.ImageType) {
		oc, err := g.instantiate(name, cfg.NextOrder())
		if err != nil {
			return nil, err
		}
		oc.PutLabel("selected_by", utils.Label{Value: "base_set", Source: "generate"})
		cfg.Operations = append(cfg.Operations, oc)
	}

	// 3. 质量规则：只追加尚未出现的操作
	if a.Technical.Exposure < g.tuning.LowExposureCut {
		if err := g.appendMissing(cfg, exposureFixOps, "exposure_rule"); err != nil {
			return nil, err
		}
	}
	if a.Technical.Sharpness < g.tuning.LowSharpnessCut {
		if err := g.appendMissing(cfg, sharpnessFixOps, "sharpness_rule"); err != nil {
			return nil, err
		}
	}

	// 4. 排序
	cfg.SortOperations()

	// 5. 强度阶梯
	cfg.Strength = g.strengthFor(a.Technical.Overall)

	// 6. 优先级与风格
	cfg.Priority = g.priorityFor(a)
	cfg.Style = g.styleFor(a, prefs)

	return cfg, nil
}

// instantiate 用注册表默认参数实例化一个操作。
func (g *Generator) instantiate(name string, order int) (*core.OperationConfig, error) {
	params, err := g.registry.DefaultParams(name)
	if err != nil {
		return nil, err
	}
	return &core.OperationConfig{
		Name:    name,
		Enabled: true,
		Params:  params,
		Order:   order,
	}, nil
}

// appendMissing 追加组内尚未出现的操作，使用下一个可用 Order。
func (g *Generator) appendMissing(cfg *core.EnhancementConfig, names []string, rule string) error {
	for _, name := range names {
		if cfg.FindOperation(name) != nil {
			continue
		}
		oc, err := g.instantiate(name, cfg.NextOrder())
		if err != nil {
			return err
		}
		oc.PutLabel("selected_by", utils.Label{Value: rule, Source: "generate"})
		cfg.Operations = append(cfg.Operations, oc)
	}
	return nil
}

// strengthFor 整体质量 -> 强度的阶梯函数。输出始终在 [0,1]。
func (g *Generator) strengthFor(overall float64) float64 {
	switch {
	case overall < g.tuning.LowQualityCut:
		return core.Clamp01(g.tuning.StrengthLowQuality)
	case overall < g.tuning.MidQualityCut:
		return core.Clamp01(g.tuning.StrengthMidQuality)
	default:
		return core.Clamp01(g.tuning.StrengthHighQuality)
	}
}

// priorityFor 人像 -> quality；艺术氛围 -> artistic；其余 quality。
func (g *Generator) priorityFor(a *core.AnalysisResult) core.Priority {
	if a.ImageType == core.ImageTypePortrait {
		return core.PriorityQuality
	}
	if artisticMoods[a.Mood] {
		return core.PriorityArtistic
	}
	return core.PriorityQuality
}

// styleFor 显式用户偏好优先；其次氛围规则；再次类型规则；默认 natural。
func (g *Generator) styleFor(a *core.AnalysisResult, prefs *core.UserPreferences) core.Style {
	if prefs != nil && prefs.PreferredStyle != "" {
		return prefs.PreferredStyle
	}
	switch {
	case warmMoods[a.Mood]:
		return core.StyleWarm
	case coolMoods[a.Mood]:
		return core.StyleCool
	case a.ImageType == core.ImageTypeLandscape:
		return core.StyleVibrant
	default:
		return core.StyleNatural
	}
}
