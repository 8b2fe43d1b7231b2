// Package transform 实现可复合的线性颜色变换：RGBA 上的 4x5 仿射矩阵。
//
// 设计要点：
//   - 纯函数、无状态：ColorTransform 是值类型，无共享所有权
//   - 语义参数（亮度/对比度/饱和度/gamma/单通道增益）到矩阵的推导是封闭集合，
//     新增一种变换 = 新增一个 Kind 及其推导，而不是新增类型层级
//   - 复合即矩阵乘法：先应用的变换在最内层
//   - gamma 是线性近似而非真实幂律曲线，这是矩阵复合的已知保真度限制，
//     调用方不应期待非线性保真
package transform

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/tonekit/core"
)

// ColorTransform 是 RGBA 上的 4x5 仿射变换，行优先存储。
// 每行对应输出通道 (R,G,B,A)：前 4 列是线性块，第 5 列是偏移。
type ColorTransform struct {
	m [20]float64
}

func idx(row, col int) int { return row*5 + col }

// Identity 返回恒等变换（对角线为 1，其余为 0）。
func Identity() ColorTransform {
	var t ColorTransform
	t.m[idx(0, 0)] = 1
	t.m[idx(1, 1)] = 1
	t.m[idx(2, 2)] = 1
	t.m[idx(3, 3)] = 1
	return t
}

// FromMatrix 从线值矩阵构造变换。
func FromMatrix(m core.ColorMatrix) ColorTransform {
	var t ColorTransform
	copy(t.m[:], m[:])
	return t
}

// Matrix 返回交付给像素执行器的线值矩阵。
func (t ColorTransform) Matrix() core.ColorMatrix {
	var m core.ColorMatrix
	copy(m[:], t.m[:])
	return m
}

// At 返回 (row, col) 处的系数，row in [0,4)，col in [0,5)。
func (t ColorTransform) At(row, col int) float64 { return t.m[idx(row, col)] }

// linearData 返回 4x4 线性块（行优先拷贝）。
func (t ColorTransform) linearData() []float64 {
	out := make([]float64, 16)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[r*4+c] = t.m[idx(r, c)]
		}
	}
	return out
}

// offsetData 返回 4x1 偏移列（拷贝）。
func (t ColorTransform) offsetData() []float64 {
	return []float64{t.m[idx(0, 4)], t.m[idx(1, 4)], t.m[idx(2, 4)], t.m[idx(3, 4)]}
}

// Compose 复合两个变换：先应用 a，再应用 b（结果 = b ∘ a）。
//
// 矩阵语义：
//   - 线性块：L = Lb * La
//   - 偏移：  o = Lb * oa + ob
func Compose(a, b ColorTransform) ColorTransform {
	la := mat.NewDense(4, 4, a.linearData())
	lb := mat.NewDense(4, 4, b.linearData())

	var lin mat.Dense
	lin.Mul(lb, la)

	oa := mat.NewVecDense(4, a.offsetData())
	ob := mat.NewVecDense(4, b.offsetData())
	var off mat.VecDense
	off.MulVec(lb, oa)
	off.AddVec(&off, ob)

	var out ColorTransform
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out.m[idx(r, c)] = lin.At(r, c)
		}
		out.m[idx(r, 4)] = off.AtVec(r)
	}
	return out
}

// Lerp 按 t ∈ [0,1] 在 a、b 之间做系数级线性插值。
// 典型用法：Lerp(Identity(), full, strength) 把全局强度折算进最终矩阵。
func Lerp(a, b ColorTransform, t float64) ColorTransform {
	t = core.Clamp01(t)
	var out ColorTransform
	for i := range out.m {
		out.m[i] = a.m[i]*(1-t) + b.m[i]*t
	}
	return out
}

// ApproxEqual 按浮点容差逐系数比较两个变换。
func ApproxEqual(a, b ColorTransform, tol float64) bool {
	return floats.EqualApprox(a.m[:], b.m[:], tol)
}
