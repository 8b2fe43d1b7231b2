package feast

import (
	"context"
	"fmt"

	"github.com/rushteam/tonekit/core"
	"github.com/rushteam/tonekit/personalize"
)

// 冷启动先验的特征命名约定。
// 特征视图 user_style_prefs 按风格各存一个得分；
// user_profile:avg_strength 是强度先验（缺省或 <= 0 时不覆盖默认值）。
const (
	styleFeatureView   = "user_style_prefs"
	strengthFeatureRef = "user_profile:avg_strength"
	entityUserID       = "user_id"
)

// PriorSource 把 Feast 在线特征适配为个性化引擎的冷启动先验来源。
//
// 使用场景：
//   - 零历史用户的默认画像用离线算好的风格先验覆盖，
//     而不是全站统一的静态默认值
type PriorSource struct {
	client Client
}

// NewPriorSource 创建先验来源适配器。
func NewPriorSource(client Client) *PriorSource {
	return &PriorSource{client: client}
}

// StylePriors 拉取用户的风格先验得分与强度先验。
// 缺失的风格特征不出现在返回 map 中；strength <= 0 表示缺省。
func (p *PriorSource) StylePriors(ctx context.Context, userID string) (map[core.Style]float64, float64, error) {
	features := make([]string, 0, len(core.Styles())+1)
	for _, s := range core.Styles() {
		features = append(features, styleFeatureView+":"+string(s))
	}
	features = append(features, strengthFeatureRef)

	resp, err := p.client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   features,
		EntityRows: []map[string]interface{}{{entityUserID: userID}},
	})
	if err != nil {
		return nil, 0, err
	}
	if len(resp.FeatureVectors) != 1 {
		return nil, 0, fmt.Errorf("feast: expected 1 feature vector, got %d", len(resp.FeatureVectors))
	}

	values := resp.FeatureVectors[0].Values
	styles := make(map[core.Style]float64)
	for _, s := range core.Styles() {
		if v, ok := values[styleFeatureView+":"+string(s)]; ok {
			if f, ok := v.(float64); ok {
				styles[s] = f
			}
		}
	}
	var strength float64
	if v, ok := values[strengthFeatureRef]; ok {
		if f, ok := v.(float64); ok {
			strength = f
		}
	}
	return styles, strength, nil
}

var _ personalize.PriorSource = (*PriorSource)(nil)
