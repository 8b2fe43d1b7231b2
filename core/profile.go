package core

import "time"

// 画像容量上限。
const (
	// MaxPreferredAlgorithms 偏好算法上限（按加权使用量取 Top-N）
	MaxPreferredAlgorithms = 5
	// MaxFavoriteLooks 收藏 Look 签名上限（最新优先，去重）
	MaxFavoriteLooks = 10
)

// UserEditingProfile 是从历史会话与反馈学到的单用户偏好摘要。
//
// 一句话定义：画像 = 个性化引擎的"长期记忆 + 调权信号"
//
// 设计要点：
//  维度                  作用
//  PreferredAlgorithms   调权已有操作 / 追加缺失操作
//  StylePreferences      决定个性化后的全局风格
//  AverageStrength       与基础强度按权重混合
//  FavoriteLooks         高分会话的 Look 签名（风格_操作集_强度档）
//  ImageTypePreferences  按图像类型累积的加权使用量
//
// 生命周期：
//   - 首次访问时从最近历史重建，按用户 ID 缓存（personalize 包持有）
//   - 该用户产生新反馈时失效
//   - 调用方拿到的是只读视图，不要修改
type UserEditingProfile struct {
	UserID string

	// PreferredAlgorithms 按加权使用量排序的偏好操作名，长度 <= MaxPreferredAlgorithms
	PreferredAlgorithms []string

	// StylePreferences 风格 -> 加权得分（不要求归一化）
	StylePreferences map[Style]float64

	// AverageStrength 加权平均增强强度，范围 [0,1]
	AverageStrength float64

	// FavoriteLooks 高分会话的 Look 签名，长度 <= MaxFavoriteLooks，最新优先
	FavoriteLooks []string

	// ImageTypePreferences 图像类型 -> 加权使用量
	ImageTypePreferences map[ImageType]float64

	// SessionCount 参与构建画像的会话数（0 表示默认画像）
	SessionCount int

	// UpdateTime 画像重建时间
	UpdateTime time.Time
}

// HasPreferredAlgorithm 检查操作名是否在偏好算法列表中。
func (p *UserEditingProfile) HasPreferredAlgorithm(name string) bool {
	for _, n := range p.PreferredAlgorithms {
		if n == name {
			return true
		}
	}
	return false
}

// TopStyle 返回得分最高且超过 floor 的风格；不存在时返回 ("", false)。
// 同分时按 Styles() 的固定顺序取先出现者，保证确定性。
func (p *UserEditingProfile) TopStyle(floor float64) (Style, bool) {
	var best Style
	bestScore := floor
	found := false
	for _, s := range Styles() {
		if score, ok := p.StylePreferences[s]; ok && score > bestScore {
			best = s
			bestScore = score
			found = true
		}
	}
	return best, found
}
