package op

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/tonekit/core"
)

// 适用性谓词用 CEL (Common Expression Language) 实现。
// CEL 类型安全、高性能、线程安全，编译一次可并发求值。
//
// 表达式语法（CEL 标准语法），输入变量为 analysis：
//   - 数值：analysis.technical.sharpness < 0.7
//   - 字符串：analysis.image_type == "portrait"
//   - 逻辑：analysis.technical.overall < 0.6 && analysis.mood == "moody"
//
// 内置规则示例：
//   - 双边平滑类：analysis.technical.sharpness < 0.7
//   - 影调/曝光修正类：analysis.technical.exposure < 0.8
//   - 降噪类：analysis.technical.overall < 0.6

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// celProgram 是编译好的谓词；nil 表示恒适用。
type celProgram cel.Program

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("analysis", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// compilePredicate 编译谓词表达式。空串返回 nil（恒适用）。
func compilePredicate(expr string) (celProgram, error) {
	if expr == "" {
		return nil, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return celProgram(prg), nil
}

// applicable 对分析结果求值谓词。求值失败或非布尔结果视为不适用。
func (s *Spec) applicable(a *core.AnalysisResult) bool {
	if s.prg == nil {
		return true
	}
	if a == nil {
		return false
	}
	out, _, err := s.prg.Eval(analysisInput(a))
	if err != nil {
		return false
	}
	result, ok := out.Value().(bool)
	return ok && result
}

// analysisInput 构建 CEL 表达式的输入数据。
func analysisInput(a *core.AnalysisResult) map[string]any {
	return map[string]any{
		"analysis": map[string]any{
			"image_type": string(a.ImageType),
			"mood":       a.Mood,
			"technical": map[string]any{
				"overall":   a.Technical.Overall,
				"exposure":  a.Technical.Exposure,
				"sharpness": a.Technical.Sharpness,
			},
		},
	}
}
