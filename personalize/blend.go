package personalize

import (
	"fmt"
	"strings"

	"github.com/rushteam/tonekit/core"
	"github.com/rushteam/tonekit/pkg/conv"
	"github.com/rushteam/tonekit/pkg/utils"
)

// Personalize 将画像混入基础配置，返回个性化后的新配置（base 不被修改）。
//
// 混合规则：
//   - strength' = base*BaseStrengthWeight + profile.avg*ProfileStrengthWeight
//   - 风格取画像中得分超过 StyleScoreFloor 的最高项，否则沿用基础风格
//   - 基础配置中命中偏好算法的操作：敏感参数 x PreferredBoost（受每操作上限）
//   - 缺失且适用（注册表谓词）的偏好算法：用默认参数追加到下一个 Order 槽位
//
// base 为 nil 时先用内部生成器生成基础配置。
func (e *Engine) Personalize(a *core.AnalysisResult, profile *core.UserEditingProfile, base *core.EnhancementConfig) (*core.EnhancementConfig, error) {
	if a == nil {
		return nil, fmt.Errorf("personalize: analysis result is required")
	}
	if profile == nil {
		return nil, fmt.Errorf("personalize: profile is required (use ProfileFor)")
	}

	var cfg *core.EnhancementConfig
	if base == nil {
		generated, err := e.gen.Generate(a, nil)
		if err != nil {
			return nil, err
		}
		cfg = generated
	} else {
		cfg = base.Clone()
	}

	cfg.Strength = core.Clamp01(
		cfg.Strength*e.tuning.BaseStrengthWeight + profile.AverageStrength*e.tuning.ProfileStrengthWeight,
	)

	if style, ok := profile.TopStyle(e.tuning.StyleScoreFloor); ok {
		cfg.Style = style
	}

	// 已有操作命中偏好算法：调权敏感参数
	for _, oc := range cfg.Operations {
		if profile.HasPreferredAlgorithm(oc.Name) {
			e.scaleSalient(oc, e.tuning.PreferredBoost, "preferred_algorithm")
		}
	}

	// 缺失且适用的偏好算法：追加
	for _, name := range profile.PreferredAlgorithms {
		if cfg.FindOperation(name) != nil {
			continue
		}
		if !e.registry.IsApplicable(name, a) {
			continue
		}
		params, err := e.registry.DefaultParams(name)
		if err != nil {
			// 画像里的历史操作名可能已不在注册表，跳过即可
			continue
		}
		oc := &core.OperationConfig{
			Name:    name,
			Enabled: true,
			Params:  params,
			Order:   cfg.NextOrder(),
		}
		oc.PutLabel("selected_by", utils.Label{Value: "preferred_algorithm", Source: "personalize"})
		cfg.Operations = append(cfg.Operations, oc)
	}

	cfg.SortOperations()
	return cfg, nil
}

// AdaptFromFeedback 按显式反馈调整配置，返回新配置。
// 纯函数：不读写存储、不碰缓存（副作用只在 RecordFeedback）。
//
// 调整规则：
//   - TooStrong: 强度 x TooStrongScale，下限 StrengthFloor，绝不上调
//   - TooWeak:   强度 x TooWeakScale，上限 1.0
//   - IssueAspects 命中的操作被禁用
//   - ImprovedAspects 命中的操作敏感参数 x ImprovedBoost（受每操作上限）
func (e *Engine) AdaptFromFeedback(cfg *core.EnhancementConfig, fb *core.FeedbackRecord) *core.EnhancementConfig {
	out := cfg.Clone()
	if fb == nil || fb.Notes == nil {
		return out
	}
	notes := fb.Notes

	if notes.TooStrong {
		scaled := out.Strength * e.tuning.TooStrongScale
		if scaled < e.tuning.StrengthFloor {
			scaled = e.tuning.StrengthFloor
		}
		if scaled < out.Strength {
			out.Strength = scaled
		}
	}
	if notes.TooWeak {
		out.Strength = core.Clamp01(out.Strength * e.tuning.TooWeakScale)
	}

	for _, oc := range out.Operations {
		switch {
		case matchesAspect(oc.Name, notes.IssueAspects):
			oc.Enabled = false
			oc.PutLabel("disabled_by", utils.Label{Value: "issue_aspect", Source: "feedback"})
		case matchesAspect(oc.Name, notes.ImprovedAspects):
			e.scaleSalient(oc, e.tuning.ImprovedBoost, "improved_aspect")
		}
	}
	return out
}

// scaleSalient 将操作的敏感参数乘以 factor，受该操作声明的上限约束。
// 操作未注册或未声明敏感参数时不做任何事。
func (e *Engine) scaleSalient(oc *core.OperationConfig, factor float64, reason string) {
	spec, err := e.registry.Get(oc.Name)
	if err != nil || spec.Salient == "" {
		return
	}
	cur := conv.ParamFloat(oc.Params, spec.Salient,
		conv.ParamFloat(spec.DefaultParams, spec.Salient, 0))
	scaled := cur * factor
	if spec.SalientCeiling > 0 && scaled > spec.SalientCeiling {
		scaled = spec.SalientCeiling
	}
	if oc.Params == nil {
		oc.Params = make(map[string]any)
	}
	oc.Params[spec.Salient] = scaled
	oc.PutLabel("tuned_by", utils.Label{Value: reason, Source: "personalize"})
}

// matchesAspect 判断操作名是否命中某个反馈方面的 token。
// 双向包含匹配：token 出现在操作名里，或操作名出现在 token 里。
func matchesAspect(name string, tokens []string) bool {
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if strings.Contains(name, tok) || strings.Contains(tok, name) {
			return true
		}
	}
	return false
}
