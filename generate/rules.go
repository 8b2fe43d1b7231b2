package generate

import "github.com/rushteam/tonekit/core"

// 按图像类型的基础操作集。顺序即初始执行顺序（Order 从 0 递增）。
// 未知类型回退到 landscape 集。
var baseOperationSets = map[core.ImageType][]string{
	core.ImageTypePortrait:  {"skin_soften", "color_balance", "warmth"},
	core.ImageTypeLandscape: {"clahe", "vibrance", "sharpen"},
	core.ImageTypeFood:      {"warmth", "vibrance", "clahe"},
	core.ImageTypeNature:    {"clahe", "color_balance", "vibrance"},
}

// 质量规则追加的操作组。"不在配置中才追加"，使用注册表默认参数。
var (
	// exposureFixOps 在 exposure < LowExposureCut 时追加
	exposureFixOps = []string{"auto_exposure", "clahe"}
	// sharpnessFixOps 在 sharpness < LowSharpnessCut 时追加
	sharpnessFixOps = []string{"sharpen"}
)

// baseSetFor 返回图像类型对应的基础操作集（未知类型回退 landscape）。
func baseSetFor(imageType core.ImageType) []string {
	if set, ok := baseOperationSets[imageType]; ok {
		return set
	}
	return baseOperationSets[core.ImageTypeLandscape]
}

// 氛围标签到风格/优先级的规则表。
var (
	warmMoods     = map[string]bool{"warm": true, "cozy": true}
	coolMoods     = map[string]bool{"cool": true, "serene": true}
	artisticMoods = map[string]bool{"artistic": true, "creative": true}
)
