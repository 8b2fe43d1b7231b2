// Package op 实现操作注册表：操作名 -> 元数据（默认参数、敏感参数上限、
// 适用性谓词、矩阵推导）。
//
// 设计要点：
//   - 注册表在进程启动时填充（内置操作经 init 注册），之后只读，
//     并发读无需额外加锁约定
//   - 操作是封闭的带标签变体：新增一种操作 = 注册一个 Spec 及其推导，
//     而不是新增类型层级
//   - 适用性谓词用 CEL 表达式描述（见 predicate.go），业务规则可读可配
package op

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/tonekit/core"
	"github.com/rushteam/tonekit/pkg/conv"
	"github.com/rushteam/tonekit/transform"
)

// Spec 是一种操作的声明式描述。注册后不可变。
type Spec struct {
	// Name 操作名，注册表内唯一
	Name string

	// Kind 对应的变换种类（用于观测/说明；实际推导走 Derive）
	Kind transform.Kind

	// DefaultParams 默认参数
	DefaultParams map[string]any

	// Salient 最敏感参数名；个性化调权只动这个参数。空串表示不可调权。
	Salient string

	// SalientCeiling 敏感参数的调权上限（例如 clahe clip_limit <= 4.0）
	SalientCeiling float64

	// Applicability CEL 谓词，输入变量为 analysis；空串表示恒适用。
	// 例如 "analysis.technical.sharpness < 0.7"
	Applicability string

	// Derive 将操作参数推导为一个颜色变换
	Derive func(params map[string]any) (transform.ColorTransform, error)

	// prg 注册时编译好的谓词程序
	prg celProgram
}

// Registry 是操作注册表。启动时填充，之后只读。
type Registry struct {
	mu    sync.RWMutex
	specs map[string]*Spec
}

// NewRegistry 创建空注册表。
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]*Spec)}
}

// Register 注册一个操作。名称冲突、缺失推导或谓词编译失败返回错误。
func (r *Registry) Register(spec *Spec) error {
	if spec == nil || spec.Name == "" {
		return fmt.Errorf("op: spec name is required")
	}
	if spec.Derive == nil {
		return fmt.Errorf("op: spec %q requires a derivation", spec.Name)
	}
	prg, err := compilePredicate(spec.Applicability)
	if err != nil {
		return fmt.Errorf("op: compile applicability for %q: %w", spec.Name, err)
	}
	spec.prg = prg

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.specs[spec.Name]; exists {
		return fmt.Errorf("op: spec %q already registered", spec.Name)
	}
	r.specs[spec.Name] = spec
	return nil
}

// Get 按名称查找操作，未注册返回 UNKNOWN_OPERATION。
func (r *Registry) Get(name string) (*Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[name]
	if !ok {
		return nil, core.NewDomainError(
			core.ModuleRegistry,
			core.ErrorCodeUnknownOperation,
			fmt.Sprintf("op: unknown operation %q", name),
		)
	}
	return spec, nil
}

// DefaultParams 返回操作默认参数的拷贝（调用方可安全修改）。
func (r *Registry) DefaultParams(name string) (map[string]any, error) {
	spec, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return conv.CloneParams(spec.DefaultParams), nil
}

// IsApplicable 按谓词判断操作是否适用于给定分析结果。
// 未注册的操作或谓词求值失败一律视为不适用。
func (r *Registry) IsApplicable(name string, a *core.AnalysisResult) bool {
	spec, err := r.Get(name)
	if err != nil {
		return false
	}
	return spec.applicable(a)
}

// Names 返回已注册操作名列表（排序，用于错误提示与确定性遍历）。
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.specs))
	for n := range r.specs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// Default 返回内置操作所在的默认注册表。
func Default() *Registry { return defaultRegistry }

// Register 向默认注册表注册操作。
func Register(spec *Spec) error { return defaultRegistry.Register(spec) }

// mustRegister 供内置操作的 init 使用。
func mustRegister(spec *Spec) {
	if err := defaultRegistry.Register(spec); err != nil {
		panic(err)
	}
}
