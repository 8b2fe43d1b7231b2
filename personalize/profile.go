package personalize

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rushteam/tonekit/core"
)

// buildProfile 从最近历史构建画像（sessions/feedback 均为最新优先）。
//
// 加权规则：
//   - 会话权重 = 评分/5；未评分会话按 NeutralRating 计
//   - 反馈带评分时覆盖被引用会话的评分（最新反馈优先）
//   - 只统计启用的操作
//   - 评分 >= FavoriteRatingMin 的会话贡献 Look 签名（去重、上限、最新优先）
func (e *Engine) buildProfile(userID string, sessions []*core.SessionRecord, feedback []*core.FeedbackRecord) *core.UserEditingProfile {
	// 反馈评分覆盖：最新优先，首个生效
	ratingOverride := make(map[string]int)
	for _, fb := range feedback {
		if fb == nil || fb.SessionID == "" || fb.Rating < 1 || fb.Rating > 5 {
			continue
		}
		if _, ok := ratingOverride[fb.SessionID]; !ok {
			ratingOverride[fb.SessionID] = fb.Rating
		}
	}

	opUsage := make(map[string]float64)
	styleUsage := make(map[core.Style]float64)
	typeUsage := make(map[core.ImageType]float64)
	var strengthSum, weightSum float64
	var looks []string
	seenLooks := make(map[string]bool)

	for _, s := range sessions {
		if s == nil || s.Config == nil {
			continue
		}
		rating := s.Rating
		if r, ok := ratingOverride[s.ID]; ok {
			rating = r
		}
		if rating < 1 {
			rating = e.tuning.NeutralRating
		}
		if rating > 5 {
			rating = 5
		}
		weight := float64(rating) / 5

		for _, oc := range s.Config.Operations {
			if oc.Enabled {
				opUsage[oc.Name] += weight
			}
		}
		styleUsage[s.Config.Style] += weight
		typeUsage[s.ImageType] += weight
		strengthSum += s.Config.Strength * weight
		weightSum += weight

		if rating >= e.tuning.FavoriteRatingMin && len(looks) < core.MaxFavoriteLooks {
			sig := LookSignature(s.Config)
			if !seenLooks[sig] {
				seenLooks[sig] = true
				looks = append(looks, sig)
			}
		}
	}

	if weightSum == 0 {
		return e.defaultProfile(context.Background(), userID)
	}

	return &core.UserEditingProfile{
		UserID:               userID,
		PreferredAlgorithms:  topAlgorithms(opUsage, core.MaxPreferredAlgorithms),
		StylePreferences:     styleUsage,
		AverageStrength:      core.Clamp01(strengthSum / weightSum),
		FavoriteLooks:        looks,
		ImageTypePreferences: typeUsage,
		SessionCount:         len(sessions),
		UpdateTime:           time.Now(),
	}
}

// topAlgorithms 按加权使用量取 Top-N，按用量降序、同量按名称升序（确定性）。
func topAlgorithms(usage map[string]float64, n int) []string {
	names := make([]string, 0, len(usage))
	for name := range usage {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if usage[names[i]] != usage[names[j]] {
			return usage[names[i]] > usage[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}

// LookSignature 是一次配置的紧凑签名：风格_排序后的启用操作名_强度档。
// 例如 "vibrant_clahe-sharpen-vibrance_6"。
func LookSignature(cfg *core.EnhancementConfig) string {
	names := cfg.EnabledOperationNames()
	sort.Strings(names)
	bucket := int(math.Round(cfg.Strength * 10))
	return string(cfg.Style) + "_" + strings.Join(names, "-") + "_" + strconv.Itoa(bucket)
}

// defaultProfile 返回零历史用户的默认画像。
// 配置了先验来源时，用外部风格先验覆盖默认值（失败时静默回退）。
func (e *Engine) defaultProfile(ctx context.Context, userID string) *core.UserEditingProfile {
	styles := make(map[core.Style]float64, len(e.tuning.DefaultStyleWeights))
	for s, w := range e.tuning.DefaultStyleWeights {
		styles[s] = w
	}
	algorithms := make([]string, len(e.tuning.DefaultAlgorithms))
	copy(algorithms, e.tuning.DefaultAlgorithms)
	strength := e.tuning.DefaultStrength

	if e.priors != nil && userID != "" {
		if priorStyles, priorStrength, err := e.priors.StylePriors(ctx, userID); err == nil {
			if len(priorStyles) > 0 {
				styles = priorStyles
			}
			if priorStrength > 0 {
				strength = core.Clamp01(priorStrength)
			}
		}
	}

	return &core.UserEditingProfile{
		UserID:               userID,
		PreferredAlgorithms:  algorithms,
		StylePreferences:     styles,
		AverageStrength:      strength,
		FavoriteLooks:        []string{},
		ImageTypePreferences: map[core.ImageType]float64{},
		SessionCount:         0,
		UpdateTime:           time.Now(),
	}
}
