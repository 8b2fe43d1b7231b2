package core

import "context"

// ColorMatrix 是像素执行器契约中的颜色变换线值：4x5 仿射矩阵，行优先。
// 每行对应输出通道 (R,G,B,A)，前 4 列是线性块，第 5 列是偏移。
// 富类型的构造与复合在 transform 包，交付执行器前降为本类型。
type ColorMatrix [20]float64

// IdentityMatrix 返回恒等变换矩阵（对角线为 1，其余为 0）。
func IdentityMatrix() ColorMatrix {
	var m ColorMatrix
	m[0], m[6], m[12], m[18] = 1, 1, 1, 1
	return m
}

// ImageHandle 是外部像素执行器持有的不可变图像句柄。
// 本核心不解码像素，只透传句柄。
type ImageHandle interface {
	// Ref 返回句柄的稳定标识（用于日志/会话记录）
	Ref() string
}

// Executor 是外部像素变换执行器的领域接口。
//
// 契约：
//   - 对固定的 (输入句柄, 矩阵) 必须是确定性的
//   - 不得修改输入句柄，返回新句柄
//   - 超时由执行器一侧负责，核心只透传 ctx
type Executor interface {
	// Name 返回执行器名称（用于日志/监控）
	Name() string

	// Apply 对图像应用一个复合颜色变换，返回新句柄
	Apply(ctx context.Context, img ImageHandle, m ColorMatrix) (ImageHandle, error)
}
