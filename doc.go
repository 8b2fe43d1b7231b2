// Package tonekit 是一个照片色彩与影调增强工具包（Tone Kit）。
//
// 设计要点：
// - Matrix-first: 所有增强操作推导为 4x5 仿射颜色矩阵，按序折叠后一次交付执行器
// - Labels-first: 配置中每个操作携带来源与调权标签，支持 explain / 观测 / 策略驱动
// - 操作可扩展: 向注册表注册 Spec（默认参数 + CEL 适用性谓词 + 矩阵推导）即可插拔扩展
package tonekit

import (
	"github.com/rushteam/tonekit/core"
	"github.com/rushteam/tonekit/orchestrate"
	"github.com/rushteam/tonekit/personalize"
	"github.com/rushteam/tonekit/transform"
)

// 轻量 facade：便于用户直接 import "tonekit" 使用核心抽象。
type AnalysisResult = core.AnalysisResult
type EnhancementConfig = core.EnhancementConfig
type UserPreferences = core.UserPreferences
type ColorTransform = transform.ColorTransform
type Orchestrator = orchestrate.Orchestrator
type Engine = personalize.Engine

const (
	StyleNatural = core.StyleNatural
	StyleVibrant = core.StyleVibrant
	StyleMuted   = core.StyleMuted
	StyleWarm    = core.StyleWarm
	StyleCool    = core.StyleCool
)
