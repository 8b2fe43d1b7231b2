// Package orchestrate 实现增强编排器：一次图像增强的完整执行路径。
//
// 一次运行的流程：
//  1. 并发准入（加权信号量，超限时在 ctx 上阻塞等待）
//  2. 生成基础配置（generate）
//  3. 带用户 ID 时做个性化（personalize）
//  4. 启用操作按 Order 折叠为单个复合颜色矩阵，全局强度向恒等插值
//  5. 一次 Executor.Apply 调用交付矩阵
//  6. 执行失败时用轻量兜底配置重试一次；再失败即 EXECUTOR_FAILURE
//  7. 写入会话记录（写失败不回滚结果，返回结果 + PERSISTENCE_FAILURE）
//
// 设计要点：
//   - 配置构建阶段未知操作是硬错误（generate 包负责），
//     折叠阶段的未知/推导失败操作则记日志后跳过，保证已付费的运行能交付
//   - 编排器自身无状态，可被多 goroutine 并发调用
package orchestrate

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/rushteam/tonekit/core"
	"github.com/rushteam/tonekit/generate"
	"github.com/rushteam/tonekit/op"
	"github.com/rushteam/tonekit/personalize"
	"github.com/rushteam/tonekit/pkg/utils"
	"github.com/rushteam/tonekit/transform"
)

// Result 是一次增强运行的结果。
type Result struct {
	// Image 增强后的图像句柄
	Image core.ImageHandle

	// Config 实际执行的配置（走了兜底时为兜底配置）
	Config *core.EnhancementConfig

	// SessionID 会话记录 ID（未配置存储或匿名运行时为空）
	SessionID string

	// AppliedOperations 实际折叠进矩阵的操作名（按执行顺序）
	AppliedOperations []string

	// FallbackUsed 首次执行失败、兜底配置生效
	FallbackUsed bool

	// Elapsed 运行耗时
	Elapsed time.Duration
}

// Orchestrator 是增强编排器。
type Orchestrator struct {
	registry *op.Registry
	tuning   *core.Tuning
	gen      *generate.Generator
	engine   *personalize.Engine
	exec     core.Executor
	history  core.HistoryStore
	sem      *semaphore.Weighted
}

// Option 配置 Orchestrator 的可选依赖。
type Option func(*Orchestrator)

// WithRegistry 指定操作注册表（默认 op.Default()）。
func WithRegistry(r *op.Registry) Option {
	return func(o *Orchestrator) { o.registry = r }
}

// WithTuning 指定调参表（默认 core.DefaultTuning()）。
func WithTuning(t *core.Tuning) Option {
	return func(o *Orchestrator) { o.tuning = t }
}

// WithHistory 指定会话/反馈存储。不配置时不落会话、画像恒为默认。
func WithHistory(h core.HistoryStore) Option {
	return func(o *Orchestrator) { o.history = h }
}

// WithEngine 指定个性化引擎（默认在 history 之上内部构建）。
func WithEngine(e *personalize.Engine) Option {
	return func(o *Orchestrator) { o.engine = e }
}

// New 创建编排器。exec 必填。
func New(exec core.Executor, opts ...Option) (*Orchestrator, error) {
	if exec == nil {
		return nil, fmt.Errorf("orchestrate: executor is required")
	}
	o := &Orchestrator{exec: exec}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = op.Default()
	}
	if o.tuning == nil {
		o.tuning = core.DefaultTuning()
	}
	o.gen = generate.New(o.registry, o.tuning)
	if o.engine == nil {
		engine, err := personalize.NewEngine(o.history,
			personalize.WithRegistry(o.registry),
			personalize.WithTuning(o.tuning),
		)
		if err != nil {
			return nil, err
		}
		o.engine = engine
	}
	o.sem = semaphore.NewWeighted(o.tuning.MaxConcurrentRuns)
	return o, nil
}

// Engine 返回编排器使用的个性化引擎（用于反馈录入等）。
func (o *Orchestrator) Engine() *personalize.Engine { return o.engine }

// Run 执行一次完整的增强运行。
//
// userID 为空表示匿名运行：跳过个性化、不落会话记录。
// 会话写入失败时结果仍然返回，错误为 PERSISTENCE_FAILURE 包装。
func (o *Orchestrator) Run(ctx context.Context, img core.ImageHandle, userID string, a *core.AnalysisResult, prefs *core.UserPreferences) (*Result, error) {
	if img == nil {
		return nil, fmt.Errorf("orchestrate: image handle is required")
	}
	if a == nil {
		return nil, fmt.Errorf("orchestrate: analysis result is required")
	}

	if err := o.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("orchestrate: acquire run slot: %w", err)
	}
	defer o.sem.Release(1)

	start := time.Now()

	cfg, err := o.gen.Generate(a, prefs)
	if err != nil {
		return nil, err
	}
	if userID != "" {
		profile, err := o.engine.ProfileFor(ctx, userID)
		if err != nil {
			return nil, err
		}
		cfg, err = o.engine.Personalize(a, profile, cfg)
		if err != nil {
			return nil, err
		}
	}

	result := &Result{Config: cfg}

	matrix, applied := o.fold(cfg)
	result.AppliedOperations = applied

	out, err := o.exec.Apply(ctx, img, matrix)
	if err != nil {
		log.Printf("orchestrate: executor %s failed, retrying with fallback: %v", o.exec.Name(), err)
		fbCfg := o.fallbackConfig()
		fbMatrix, fbApplied := o.fold(fbCfg)
		out, err = o.exec.Apply(ctx, img, fbMatrix)
		if err != nil {
			return nil, core.WrapDomainError(core.ModuleOrchestrate, core.ErrorCodeExecutorFailure,
				fmt.Sprintf("orchestrate: executor %s failed after fallback", o.exec.Name()), err)
		}
		result.Config = fbCfg
		result.AppliedOperations = fbApplied
		result.FallbackUsed = true
	}

	result.Image = out
	result.Elapsed = time.Since(start)

	if o.history != nil && userID != "" {
		rec := &core.SessionRecord{
			UserID:         userID,
			ImageType:      a.ImageType,
			Config:         result.Config,
			ProcessingTime: result.Elapsed,
			CreatedAt:      time.Now(),
		}
		id, err := o.history.SaveSession(ctx, rec)
		if err != nil {
			return result, core.WrapDomainError(core.ModuleOrchestrate, core.ErrorCodePersistenceFailure,
				"orchestrate: save session record", err)
		}
		result.SessionID = id
	}
	return result, nil
}

// fold 将配置中启用的操作按 Order 折叠为单个执行矩阵，
// 再按全局强度向恒等矩阵插值。
// 未注册或推导失败的操作记日志后跳过（执行边界的容忍语义）。
func (o *Orchestrator) fold(cfg *core.EnhancementConfig) (core.ColorMatrix, []string) {
	cfg.SortOperations()
	composite := transform.Identity()
	applied := make([]string, 0, len(cfg.Operations))

	for _, oc := range cfg.Operations {
		if !oc.Enabled {
			continue
		}
		spec, err := o.registry.Get(oc.Name)
		if err != nil {
			log.Printf("orchestrate: skip unknown operation %q", oc.Name)
			continue
		}
		t, err := spec.Derive(oc.Params)
		if err != nil {
			log.Printf("orchestrate: skip operation %q: %v", oc.Name, err)
			continue
		}
		composite = transform.Compose(composite, t)
		applied = append(applied, oc.Name)
	}

	final := transform.Lerp(transform.Identity(), composite, cfg.Strength)
	return final.Matrix(), applied
}

// fallbackConfig 构造执行失败后的轻量兜底配置：
// 小幅曝光与对比度修正，全局强度取 FallbackStrength。
func (o *Orchestrator) fallbackConfig() *core.EnhancementConfig {
	cfg := &core.EnhancementConfig{
		Strength: o.tuning.FallbackStrength,
		Priority: core.PrioritySpeed,
		Style:    core.StyleNatural,
	}
	entries := []struct {
		name   string
		params map[string]any
	}{
		{"auto_exposure", map[string]any{"amount": o.tuning.FallbackBrightness}},
		{"clahe", map[string]any{"clip_limit": o.tuning.FallbackContrast / 10}},
	}
	for _, e := range entries {
		oc := &core.OperationConfig{
			Name:    e.name,
			Enabled: true,
			Params:  e.params,
			Order:   cfg.NextOrder(),
		}
		oc.PutLabel("selected_by", utils.Label{Value: "executor_fallback", Source: "orchestrate"})
		cfg.Operations = append(cfg.Operations, oc)
	}
	return cfg
}
