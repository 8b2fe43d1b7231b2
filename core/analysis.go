package core

// ImageType 是上游图像理解服务给出的图像类型。
type ImageType string

const (
	ImageTypePortrait  ImageType = "portrait"  // 人像
	ImageTypeLandscape ImageType = "landscape" // 风景
	ImageTypeFood      ImageType = "food"      // 食物
	ImageTypeNature    ImageType = "nature"    // 自然
	ImageTypeOther     ImageType = "other"     // 其他
)

// TechnicalQuality 是技术质量评分，各字段取值范围 [0,1]。
type TechnicalQuality struct {
	Overall   float64 `json:"overall"`   // 整体质量
	Exposure  float64 `json:"exposure"`  // 曝光质量
	Sharpness float64 `json:"sharpness"` // 清晰度
}

// AnalysisResult 是上游图像理解服务对单张照片的分析结果。
//
// 本核心将其视为只读的可信输入：
//   - 每次增强运行消费一份
//   - 不做二次校验，质量字段约定在 [0,1]
//   - 生成（generate）与个性化（personalize）均以它为决策依据
type AnalysisResult struct {
	// ImageType 图像类型，未知类型在生成时回退到 landscape 规则
	ImageType ImageType `json:"image_type"`

	// Mood 自由形式的氛围标签，例如 "warm" / "serene" / "artistic"
	Mood string `json:"mood"`

	// Technical 技术质量评分
	Technical TechnicalQuality `json:"technical_quality"`
}
