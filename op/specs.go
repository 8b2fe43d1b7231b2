package op

import (
	"github.com/rushteam/tonekit/pkg/conv"
	"github.com/rushteam/tonekit/transform"
)

// 内置操作。每个操作把自己的语义参数推导为一个线性颜色变换；
// 非线性算法（CLAHE、双边滤波、降噪）在矩阵流水线中用其一阶颜色近似表达，
// 与 gamma 的线性近似同一口径。

func init() {
	// clahe 局部对比度增强的矩阵近似：clip_limit 越大整体对比度越强
	mustRegister(&Spec{
		Name:           "clahe",
		Kind:           transform.KindContrast,
		DefaultParams:  map[string]any{"clip_limit": 2.0, "grid_size": 8},
		Salient:        "clip_limit",
		SalientCeiling: 4.0,
		Applicability:  "analysis.technical.exposure < 0.8",
		Derive: func(params map[string]any) (transform.ColorTransform, error) {
			clip := conv.ParamFloat(params, "clip_limit", 2.0)
			return transform.Contrast(clip * 10), nil
		},
	})

	// auto_exposure 曝光修正：整体提亮
	mustRegister(&Spec{
		Name:           "auto_exposure",
		Kind:           transform.KindBrightness,
		DefaultParams:  map[string]any{"amount": 20.0},
		Salient:        "amount",
		SalientCeiling: 40.0,
		Applicability:  "analysis.technical.exposure < 0.8",
		Derive: func(params map[string]any) (transform.ColorTransform, error) {
			return transform.Brightness(conv.ParamFloat(params, "amount", 20)), nil
		},
	})

	// color_balance 三通道增益
	mustRegister(&Spec{
		Name:          "color_balance",
		Kind:          transform.KindRedGain,
		DefaultParams: map[string]any{"red": 0.0, "green": 0.0, "blue": 0.0},
		Derive: func(params map[string]any) (transform.ColorTransform, error) {
			r := transform.ChannelGain(0, conv.ParamFloat(params, "red", 0))
			g := transform.ChannelGain(1, conv.ParamFloat(params, "green", 0))
			b := transform.ChannelGain(2, conv.ParamFloat(params, "blue", 0))
			return transform.Compose(transform.Compose(r, g), b), nil
		},
	})

	// sharpen 锐化的颜色近似：小幅对比度抬升
	mustRegister(&Spec{
		Name:           "sharpen",
		Kind:           transform.KindContrast,
		DefaultParams:  map[string]any{"amount": 0.5, "radius": 1.0},
		Salient:        "amount",
		SalientCeiling: 1.0,
		Derive: func(params map[string]any) (transform.ColorTransform, error) {
			return transform.Contrast(conv.ParamFloat(params, "amount", 0.5) * 20), nil
		},
	})

	// skin_soften 双边平滑类：轻微降饱和 + 提亮
	mustRegister(&Spec{
		Name:           "skin_soften",
		Kind:           transform.KindSaturation,
		DefaultParams:  map[string]any{"strength": 0.3},
		Salient:        "strength",
		SalientCeiling: 0.6,
		Applicability:  "analysis.technical.sharpness < 0.7",
		Derive: func(params map[string]any) (transform.ColorTransform, error) {
			s := conv.ParamFloat(params, "strength", 0.3)
			soften := transform.Saturation(-s * 20)
			lift := transform.Brightness(s * 5)
			return transform.Compose(soften, lift), nil
		},
	})

	// denoise 降噪类：轻微降饱和压噪点色彩
	mustRegister(&Spec{
		Name:           "denoise",
		Kind:           transform.KindSaturation,
		DefaultParams:  map[string]any{"strength": 0.5},
		Salient:        "strength",
		SalientCeiling: 1.0,
		Applicability:  "analysis.technical.overall < 0.6",
		Derive: func(params map[string]any) (transform.ColorTransform, error) {
			return transform.Saturation(-conv.ParamFloat(params, "strength", 0.5) * 10), nil
		},
	})

	// vibrance 鲜艳度：amount 1.0 为中性
	mustRegister(&Spec{
		Name:           "vibrance",
		Kind:           transform.KindSaturation,
		DefaultParams:  map[string]any{"amount": 1.2},
		Salient:        "amount",
		SalientCeiling: 1.5,
		Derive: func(params map[string]any) (transform.ColorTransform, error) {
			return transform.Saturation((conv.ParamFloat(params, "amount", 1.2) - 1) * 100), nil
		},
	})

	// gamma_correct gamma 线性近似
	mustRegister(&Spec{
		Name:           "gamma_correct",
		Kind:           transform.KindGamma,
		DefaultParams:  map[string]any{"gamma": 1.0},
		Salient:        "gamma",
		SalientCeiling: 2.2,
		Derive: func(params map[string]any) (transform.ColorTransform, error) {
			return transform.Gamma(conv.ParamFloat(params, "gamma", 1))
		},
	})

	// 固定矩阵预设
	presets := []struct {
		name string
		kind transform.Kind
	}{
		{"warmth", transform.KindWarmth},
		{"cool_tone", transform.KindCool},
		{"grayscale", transform.KindGrayscale},
		{"sepia", transform.KindSepia},
		{"invert", transform.KindInvert},
		{"high_contrast", transform.KindHighContrast},
	}
	for _, p := range presets {
		kind := p.kind
		mustRegister(&Spec{
			Name:          p.name,
			Kind:          kind,
			DefaultParams: map[string]any{},
			Derive: func(params map[string]any) (transform.ColorTransform, error) {
				return transform.From(kind, params)
			},
		})
	}
}
