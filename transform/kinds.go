package transform

import (
	"fmt"

	"github.com/rushteam/tonekit/core"
	"github.com/rushteam/tonekit/pkg/conv"
)

// Kind 标记一种语义变换。封闭集合：新增 Kind 需要同时给出矩阵推导。
type Kind string

const (
	KindBrightness Kind = "brightness" // 亮度，amount ∈ [-100,100]
	KindContrast   Kind = "contrast"   // 对比度，amount ∈ [-100,100]
	KindSaturation Kind = "saturation" // 饱和度，amount ∈ [-100,100]
	KindGamma      Kind = "gamma"      // gamma 线性近似，gamma > 0
	KindRedGain    Kind = "red_gain"   // 红通道增益，amount ∈ [-100,100]
	KindGreenGain  Kind = "green_gain" // 绿通道增益
	KindBlueGain   Kind = "blue_gain"  // 蓝通道增益

	// 固定矩阵预设，与 amount 无关
	KindGrayscale    Kind = "grayscale"
	KindSepia        Kind = "sepia"
	KindInvert       Kind = "invert"
	KindHighContrast Kind = "high_contrast"
	KindWarmth       Kind = "warmth"
	KindCool         Kind = "cool"
)

// 标准亮度加权系数（ITU-R BT.601）。
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// clampAmount 将语义参数收敛到声明域 [-100,100]。越界收敛、不报错。
func clampAmount(amount float64) float64 {
	if amount < -100 {
		return -100
	}
	if amount > 100 {
		return 100
	}
	return amount
}

// From 按 Kind 与参数推导变换。
//
// 错误语义：
//   - 未知 Kind => UNKNOWN_OPERATION
//   - gamma <= 0 => INVALID_PARAMETER（唯一的构造期硬拒绝）
//   - 其余越界数值一律收敛
func From(kind Kind, params map[string]any) (ColorTransform, error) {
	amount := conv.ParamFloat(params, "amount", 0)
	switch kind {
	case KindBrightness:
		return Brightness(amount), nil
	case KindContrast:
		return Contrast(amount), nil
	case KindSaturation:
		return Saturation(amount), nil
	case KindGamma:
		return Gamma(conv.ParamFloat(params, "gamma", 1))
	case KindRedGain:
		return ChannelGain(0, amount), nil
	case KindGreenGain:
		return ChannelGain(1, amount), nil
	case KindBlueGain:
		return ChannelGain(2, amount), nil
	case KindGrayscale:
		return Grayscale(), nil
	case KindSepia:
		return Sepia(), nil
	case KindInvert:
		return Invert(), nil
	case KindHighContrast:
		return HighContrast(), nil
	case KindWarmth:
		return Warmth(), nil
	case KindCool:
		return Cool(), nil
	default:
		return Identity(), core.NewDomainError(
			core.ModuleTransform,
			core.ErrorCodeUnknownOperation,
			fmt.Sprintf("transform: unknown kind %q", kind),
		)
	}
}

// Brightness 给 R,G,B 通道加偏移 amount/100 * 255，线性块不变。
func Brightness(amount float64) ColorTransform {
	amount = clampAmount(amount)
	offset := amount / 100 * 255
	t := Identity()
	t.m[idx(0, 4)] = offset
	t.m[idx(1, 4)] = offset
	t.m[idx(2, 4)] = offset
	return t
}

// Contrast 以 128 为中心缩放 R,G,B：factor = (amount+100)/100，
// 偏移 128*(1-factor) 保持中灰不动。
func Contrast(amount float64) ColorTransform {
	amount = clampAmount(amount)
	factor := (amount + 100) / 100
	offset := 128 * (1 - factor)
	t := Identity()
	t.m[idx(0, 0)] = factor
	t.m[idx(1, 1)] = factor
	t.m[idx(2, 2)] = factor
	t.m[idx(0, 4)] = offset
	t.m[idx(1, 4)] = offset
	t.m[idx(2, 4)] = offset
	return t
}

// Saturation 标准饱和度矩阵：factor = (amount+100)/100，
// 每个输出通道 = 亮度权重*(1-factor) 混合三个输入通道，再加自身通道的 factor。
// factor=0 退化为灰度，factor=1 恒等。偏移为零。
func Saturation(amount float64) ColorTransform {
	amount = clampAmount(amount)
	factor := (amount + 100) / 100
	inv := 1 - factor

	t := Identity()
	weights := [3]float64{lumaR, lumaG, lumaB}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			v := weights[col] * inv
			if row == col {
				v += factor
			}
			t.m[idx(row, col)] = v
		}
	}
	return t
}

// ChannelGain 只缩放单个通道的对角元：factor = (amount+100)/100。
// channel: 0=R, 1=G, 2=B。
func ChannelGain(channel int, amount float64) ColorTransform {
	amount = clampAmount(amount)
	factor := (amount + 100) / 100
	t := Identity()
	if channel >= 0 && channel < 3 {
		t.m[idx(channel, channel)] = factor
	}
	return t
}

// Gamma 返回 gamma 的一阶线性近似。
//
//	gamma < 1: factor = 1+(1-gamma)*0.5，偏移 (1-gamma)*50
//	gamma > 1: factor = 1/(1+(gamma-1)*0.3)，偏移 -(gamma-1)*30
//	gamma = 1: 恒等
//
// 这不是真实幂律曲线；矩阵复合无法表达非线性，调用方不应期待非线性保真。
// gamma <= 0 是唯一的构造期硬拒绝。
func Gamma(gamma float64) (ColorTransform, error) {
	if gamma <= 0 {
		return Identity(), core.NewDomainError(
			core.ModuleTransform,
			core.ErrorCodeInvalidParameter,
			fmt.Sprintf("transform: gamma must be positive, got %v", gamma),
		)
	}
	if gamma == 1 {
		return Identity(), nil
	}

	var factor, offset float64
	if gamma < 1 {
		factor = 1 + (1-gamma)*0.5
		offset = (1 - gamma) * 50
	} else {
		factor = 1 / (1 + (gamma-1)*0.3)
		offset = -(gamma - 1) * 30
	}

	t := Identity()
	t.m[idx(0, 0)] = factor
	t.m[idx(1, 1)] = factor
	t.m[idx(2, 2)] = factor
	t.m[idx(0, 4)] = offset
	t.m[idx(1, 4)] = offset
	t.m[idx(2, 4)] = offset
	return t, nil
}
