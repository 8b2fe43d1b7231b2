package core

import "time"

// SessionRecord 是一次历史增强运行的记录。
// 由编排器在运行结束后写入外部存储，个性化引擎重建画像时读取。
type SessionRecord struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	// ImageType 本次运行的图像类型（来自分析结果）
	ImageType ImageType `json:"image_type"`

	// Config 本次实际使用的增强配置
	Config *EnhancementConfig `json:"config"`

	// Rating 用户评分，取值 {1..5}；0 表示尚未评分
	Rating int `json:"rating"`

	// QualityImprovement 质量提升评分（外部评估，范围 [0,1]）
	QualityImprovement float64 `json:"quality_improvement"`

	// ProcessingTime 本次运行耗时
	ProcessingTime time.Duration `json:"processing_time"`

	CreatedAt time.Time `json:"created_at"`
}

// FeedbackType 是用户对一次会话的反馈类型。
type FeedbackType string

const (
	FeedbackTypeLike              FeedbackType = "like"               // 喜欢
	FeedbackTypeDislike           FeedbackType = "dislike"            // 不喜欢
	FeedbackTypeAdjustmentRequest FeedbackType = "adjustment_request" // 要求调整
)

// FeedbackNotes 是结构化的反馈说明（全部可选）。
type FeedbackNotes struct {
	// TooStrong 效果过重 => 强度 x TooStrongScale（下限 StrengthFloor）
	TooStrong bool `json:"too_strong,omitempty"`

	// TooWeak 效果过轻 => 强度 x TooWeakScale（上限 1.0）
	TooWeak bool `json:"too_weak,omitempty"`

	// WrongStyle 风格不符
	WrongStyle bool `json:"wrong_style,omitempty"`

	// ImprovedAspects 被认可的方面，匹配的操作敏感参数上调
	ImprovedAspects []string `json:"improved_aspects,omitempty"`

	// IssueAspects 有问题的方面，匹配的操作被禁用
	IssueAspects []string `json:"issue_aspects,omitempty"`
}

// FeedbackRecord 是用户对一次会话的显式反馈。
// 写入后触发该用户画像缓存失效。
type FeedbackRecord struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"` // 引用已存在的 SessionRecord
	UserID    string `json:"user_id"`

	Type FeedbackType `json:"type"`

	// Rating 可选评分，取值 {1..5}；0 表示未给出。
	// 给出时在画像重建阶段覆盖被引用会话的评分。
	Rating int `json:"rating,omitempty"`

	Notes *FeedbackNotes `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
