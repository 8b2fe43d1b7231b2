// Package personalize 实现个性化引擎：从历史会话与反馈学习单用户画像，
// 将画像混入生成的配置，并按显式反馈调整配置。
//
// 设计要点：
//   - 画像按用户 ID 缓存在有界 LRU 中（显式失效 + 容量淘汰，内存有界）
//   - 同一用户的画像重建经 singleflight 串行化（单写者），
//     不同用户的读写可并发
//   - AdaptFromFeedback 是纯函数；只有 RecordFeedback 产生副作用
//     （持久化 + 缓存失效）
package personalize

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/rushteam/tonekit/core"
	"github.com/rushteam/tonekit/generate"
	"github.com/rushteam/tonekit/op"
)

// PriorSource 是冷启动先验的来源接口（可选）。
// 零历史用户的默认画像可以用外部特征存储（如 Feast）里的风格先验覆盖。
type PriorSource interface {
	// StylePriors 返回用户的风格先验得分与强度先验（strength <= 0 表示缺省）
	StylePriors(ctx context.Context, userID string) (map[core.Style]float64, float64, error)
}

// Engine 是个性化引擎。
type Engine struct {
	registry *op.Registry
	history  core.HistoryStore
	tuning   *core.Tuning
	gen      *generate.Generator
	priors   PriorSource

	cache *lru.Cache[string, *core.UserEditingProfile]
	group singleflight.Group
}

// Option 配置 Engine 的可选依赖。
type Option func(*Engine)

// WithRegistry 指定操作注册表（默认使用 op.Default()）。
func WithRegistry(r *op.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithTuning 指定调参表（默认使用 core.DefaultTuning()）。
func WithTuning(t *core.Tuning) Option {
	return func(e *Engine) { e.tuning = t }
}

// WithPriorSource 指定冷启动先验来源（默认无）。
func WithPriorSource(p PriorSource) Option {
	return func(e *Engine) { e.priors = p }
}

// NewEngine 创建个性化引擎。history 为 nil 时画像恒为默认画像。
func NewEngine(history core.HistoryStore, opts ...Option) (*Engine, error) {
	e := &Engine{history: history}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = op.Default()
	}
	if e.tuning == nil {
		e.tuning = core.DefaultTuning()
	}
	e.gen = generate.New(e.registry, e.tuning)

	cache, err := lru.New[string, *core.UserEditingProfile](e.tuning.ProfileCacheSize)
	if err != nil {
		return nil, fmt.Errorf("personalize: create profile cache: %w", err)
	}
	e.cache = cache
	return e, nil
}

// ProfileFor 返回用户画像（缓存命中直接返回；未命中时从最近历史重建）。
//
// 错误语义：历史读取失败时回退到默认画像而不是让运行失败
// （且不缓存，下次访问重试读取）。调用方拿到的画像是只读视图。
func (e *Engine) ProfileFor(ctx context.Context, userID string) (*core.UserEditingProfile, error) {
	if userID == "" {
		return e.defaultProfile(ctx, ""), nil
	}
	if p, ok := e.cache.Get(userID); ok {
		return p, nil
	}

	// 同一用户的重建串行化；并发调用共享同一次重建结果。
	v, err, _ := e.group.Do(userID, func() (any, error) {
		if p, ok := e.cache.Get(userID); ok {
			return p, nil
		}
		p, cacheable := e.rebuild(ctx, userID)
		if cacheable {
			e.cache.Add(userID, p)
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.UserEditingProfile), nil
}

// rebuild 读取最近历史并构建画像。第二个返回值表示是否可缓存
// （历史读取失败时的默认画像不缓存）。
func (e *Engine) rebuild(ctx context.Context, userID string) (*core.UserEditingProfile, bool) {
	if e.history == nil {
		return e.defaultProfile(ctx, userID), true
	}
	sessions, err := e.history.LoadRecentSessions(ctx, userID, e.tuning.HistoryLimit)
	if err != nil {
		return e.defaultProfile(ctx, userID), false
	}
	feedback, err := e.history.LoadRecentFeedback(ctx, userID, e.tuning.HistoryLimit)
	if err != nil {
		return e.defaultProfile(ctx, userID), false
	}
	if len(sessions) == 0 {
		return e.defaultProfile(ctx, userID), true
	}
	return e.buildProfile(userID, sessions, feedback), true
}

// RecordFeedback 持久化一条反馈并使该用户的画像缓存失效。
// 这是引擎上唯一有副作用的方法。
func (e *Engine) RecordFeedback(ctx context.Context, fb *core.FeedbackRecord) error {
	if fb == nil || fb.UserID == "" {
		return fmt.Errorf("personalize: feedback with user id is required")
	}
	if e.history == nil {
		return core.NewDomainError(core.ModulePersonalize, core.ErrorCodePersistenceFailure,
			"personalize: no history store configured")
	}
	id, err := e.history.SaveFeedback(ctx, fb)
	if err != nil {
		return core.WrapDomainError(core.ModulePersonalize, core.ErrorCodePersistenceFailure,
			"personalize: save feedback", err)
	}
	fb.ID = id
	e.cache.Remove(fb.UserID)
	return nil
}

// ClearCache 使某个用户的画像缓存失效。
func (e *Engine) ClearCache(userID string) {
	e.cache.Remove(userID)
}
