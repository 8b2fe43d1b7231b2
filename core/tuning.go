package core

import "fmt"

// Tuning 是生成与个性化共用的数值调参表。
//
// 设计要点：
//   - 所有业务阈值/权重/上限集中在此，生成与个性化两侧只引用命名字段
//   - 测试可以针对命名常量断言，而不是散落的魔法数字
//   - 60/40 混合权重、0.8/1.2/1.15 反馈乘数等是调参选择而非正确性不变量，
//     因此做成可配置默认值（可用 config 包从 YAML/JSON 覆盖）
type Tuning struct {
	// ---- 生成（generate）----

	// LowExposureCut 追加曝光修正操作的阈值：exposure < LowExposureCut
	LowExposureCut float64 `yaml:"low_exposure_cut" json:"low_exposure_cut"`
	// LowSharpnessCut 追加锐化操作的阈值：sharpness < LowSharpnessCut
	LowSharpnessCut float64 `yaml:"low_sharpness_cut" json:"low_sharpness_cut"`

	// 整体质量 -> 强度的阶梯函数：
	//   overall < LowQualityCut  => StrengthLowQuality
	//   overall < MidQualityCut  => StrengthMidQuality
	//   否则                     => StrengthHighQuality
	LowQualityCut       float64 `yaml:"low_quality_cut" json:"low_quality_cut"`
	MidQualityCut       float64 `yaml:"mid_quality_cut" json:"mid_quality_cut"`
	StrengthLowQuality  float64 `yaml:"strength_low_quality" json:"strength_low_quality"`
	StrengthMidQuality  float64 `yaml:"strength_mid_quality" json:"strength_mid_quality"`
	StrengthHighQuality float64 `yaml:"strength_high_quality" json:"strength_high_quality"`

	// ---- 个性化（personalize）----

	// BaseStrengthWeight / ProfileStrengthWeight 强度混合权重：
	//   strength' = base*BaseStrengthWeight + profile.avg*ProfileStrengthWeight
	BaseStrengthWeight    float64 `yaml:"base_strength_weight" json:"base_strength_weight"`
	ProfileStrengthWeight float64 `yaml:"profile_strength_weight" json:"profile_strength_weight"`

	// StyleScoreFloor 画像风格得分超过此值才覆盖基础风格
	StyleScoreFloor float64 `yaml:"style_score_floor" json:"style_score_floor"`

	// PreferredBoost 偏好操作的敏感参数放大倍数（受每操作上限约束）
	PreferredBoost float64 `yaml:"preferred_boost" json:"preferred_boost"`
	// ImprovedBoost 被认可操作的敏感参数放大倍数
	ImprovedBoost float64 `yaml:"improved_boost" json:"improved_boost"`
	// TooStrongScale 反馈"过重"时的强度乘数
	TooStrongScale float64 `yaml:"too_strong_scale" json:"too_strong_scale"`
	// TooWeakScale 反馈"过轻"时的强度乘数
	TooWeakScale float64 `yaml:"too_weak_scale" json:"too_weak_scale"`
	// StrengthFloor 反馈调整后的强度下限
	StrengthFloor float64 `yaml:"strength_floor" json:"strength_floor"`

	// HistoryLimit 画像重建读取的最近记录条数上限
	HistoryLimit int `yaml:"history_limit" json:"history_limit"`
	// FavoriteRatingMin 会话评分达到此值才贡献 Look 签名
	FavoriteRatingMin int `yaml:"favorite_rating_min" json:"favorite_rating_min"`
	// NeutralRating 未评分会话在加权时视为的评分
	NeutralRating int `yaml:"neutral_rating" json:"neutral_rating"`
	// ProfileCacheSize 画像 LRU 缓存容量
	ProfileCacheSize int `yaml:"profile_cache_size" json:"profile_cache_size"`

	// 默认画像（零历史用户）
	DefaultStrength     float64            `yaml:"default_strength" json:"default_strength"`
	DefaultAlgorithms   []string           `yaml:"default_algorithms" json:"default_algorithms"`
	DefaultStyleWeights map[Style]float64  `yaml:"default_style_weights" json:"default_style_weights"`

	// ---- 编排（orchestrate）----

	// MaxConcurrentRuns 同时在途运行的准入上限
	MaxConcurrentRuns int64 `yaml:"max_concurrent_runs" json:"max_concurrent_runs"`
	// FallbackBrightness / FallbackContrast 执行器失败后兜底配置的轻量参数
	FallbackBrightness float64 `yaml:"fallback_brightness" json:"fallback_brightness"`
	FallbackContrast   float64 `yaml:"fallback_contrast" json:"fallback_contrast"`
	// FallbackStrength 兜底配置的全局强度
	FallbackStrength float64 `yaml:"fallback_strength" json:"fallback_strength"`
}

// DefaultTuning 返回全部默认调参。
func DefaultTuning() *Tuning {
	return &Tuning{
		LowExposureCut:      0.6,
		LowSharpnessCut:     0.6,
		LowQualityCut:       0.5,
		MidQualityCut:       0.7,
		StrengthLowQuality:  0.8,
		StrengthMidQuality:  0.6,
		StrengthHighQuality: 0.4,

		BaseStrengthWeight:    0.4,
		ProfileStrengthWeight: 0.6,
		StyleScoreFloor:       0.1,
		PreferredBoost:        1.1,
		ImprovedBoost:         1.15,
		TooStrongScale:        0.8,
		TooWeakScale:          1.2,
		StrengthFloor:         0.1,

		HistoryLimit:      50,
		FavoriteRatingMin: 4,
		NeutralRating:     3,
		ProfileCacheSize:  256,

		DefaultStrength:   0.5,
		DefaultAlgorithms: []string{"clahe", "color_balance", "sharpen"},
		DefaultStyleWeights: map[Style]float64{
			StyleNatural: 0.4,
			StyleVibrant: 0.3,
			StyleWarm:    0.2,
			StyleCool:    0.1,
			StyleMuted:   0.0,
		},

		MaxConcurrentRuns:  2,
		FallbackBrightness: 5,
		FallbackContrast:   5,
		FallbackStrength:   0.3,
	}
}

// Validate 校验调参表的基本合法性。
func (t *Tuning) Validate() error {
	inUnit := func(name string, v float64) error {
		if v < 0 || v > 1 {
			return fmt.Errorf("tuning: %s must be in [0,1], got %v", name, v)
		}
		return nil
	}
	checks := []struct {
		name string
		v    float64
	}{
		{"low_exposure_cut", t.LowExposureCut},
		{"low_sharpness_cut", t.LowSharpnessCut},
		{"low_quality_cut", t.LowQualityCut},
		{"mid_quality_cut", t.MidQualityCut},
		{"strength_low_quality", t.StrengthLowQuality},
		{"strength_mid_quality", t.StrengthMidQuality},
		{"strength_high_quality", t.StrengthHighQuality},
		{"base_strength_weight", t.BaseStrengthWeight},
		{"profile_strength_weight", t.ProfileStrengthWeight},
		{"strength_floor", t.StrengthFloor},
		{"default_strength", t.DefaultStrength},
		{"fallback_strength", t.FallbackStrength},
	}
	for _, c := range checks {
		if err := inUnit(c.name, c.v); err != nil {
			return err
		}
	}
	if t.LowQualityCut > t.MidQualityCut {
		return fmt.Errorf("tuning: low_quality_cut %v must not exceed mid_quality_cut %v", t.LowQualityCut, t.MidQualityCut)
	}
	if t.TooStrongScale <= 0 || t.TooStrongScale >= 1 {
		return fmt.Errorf("tuning: too_strong_scale must be in (0,1), got %v", t.TooStrongScale)
	}
	if t.TooWeakScale <= 1 {
		return fmt.Errorf("tuning: too_weak_scale must be > 1, got %v", t.TooWeakScale)
	}
	if t.HistoryLimit <= 0 {
		return fmt.Errorf("tuning: history_limit must be positive, got %d", t.HistoryLimit)
	}
	if t.ProfileCacheSize <= 0 {
		return fmt.Errorf("tuning: profile_cache_size must be positive, got %d", t.ProfileCacheSize)
	}
	if t.MaxConcurrentRuns <= 0 {
		return fmt.Errorf("tuning: max_concurrent_runs must be positive, got %d", t.MaxConcurrentRuns)
	}
	if t.NeutralRating < 1 || t.NeutralRating > 5 {
		return fmt.Errorf("tuning: neutral_rating must be in {1..5}, got %d", t.NeutralRating)
	}
	return nil
}
