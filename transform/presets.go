package transform

// 固定矩阵预设。系数与 amount 无关，采用标准亮度/怀旧/反相取值。

// Grayscale 灰度：三个输出通道都取 BT.601 亮度加权和。
func Grayscale() ColorTransform {
	t := Identity()
	for row := 0; row < 3; row++ {
		t.m[idx(row, 0)] = lumaR
		t.m[idx(row, 1)] = lumaG
		t.m[idx(row, 2)] = lumaB
	}
	return t
}

// Sepia 怀旧（标准 sepia 系数）。
func Sepia() ColorTransform {
	t := Identity()
	rows := [3][3]float64{
		{0.393, 0.769, 0.189},
		{0.349, 0.686, 0.168},
		{0.272, 0.534, 0.131},
	}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			t.m[idx(row, col)] = rows[row][col]
		}
	}
	return t
}

// Invert 反相：R,G,B 取负并加 255 偏移。自身复合回到恒等。
func Invert() ColorTransform {
	t := Identity()
	for row := 0; row < 3; row++ {
		t.m[idx(row, row)] = -1
		t.m[idx(row, 4)] = 255
	}
	return t
}

// HighContrast 高对比度：等价于 Contrast(+50)。
func HighContrast() ColorTransform {
	return Contrast(50)
}

// Warmth 暖调：抬红压蓝，带小幅偏移。
func Warmth() ColorTransform {
	t := Identity()
	t.m[idx(0, 0)] = 1.1
	t.m[idx(0, 4)] = 10
	t.m[idx(2, 2)] = 0.9
	t.m[idx(2, 4)] = -10
	return t
}

// Cool 冷调：抬蓝压红，Warmth 的镜像。
func Cool() ColorTransform {
	t := Identity()
	t.m[idx(0, 0)] = 0.9
	t.m[idx(0, 4)] = -10
	t.m[idx(2, 2)] = 1.1
	t.m[idx(2, 4)] = 10
	return t
}
