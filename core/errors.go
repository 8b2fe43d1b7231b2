package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX），可穿透 fmt.Errorf("%w") 包装
//
// 使用场景：
//   - Transform 错误：INVALID_PARAMETER（gamma <= 0 等构造期硬拒绝）
//   - Registry 错误：UNKNOWN_OPERATION
//   - Orchestrate 错误：EXECUTOR_FAILURE
//   - Store 错误：PERSISTENCE_FAILURE, NOT_FOUND
type DomainError struct {
	Code    string // 错误代码（如 "UNKNOWN_OPERATION"）
	Message string // 错误消息
	Module  string // 模块名称（如 "transform", "op", "store"）
	Err     error  // 底层错误（可选，用于 %w 链）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError 创建包装底层错误的领域错误
func WrapDomainError(module, code, message string, err error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// GetDomainError 获取错误链上的 DomainError，如果不存在则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeNotFound           = "NOT_FOUND"           // 记录不存在
	ErrorCodeInvalidParameter   = "INVALID_PARAMETER"   // 数值参数非法（构造期硬拒绝）
	ErrorCodeUnknownOperation   = "UNKNOWN_OPERATION"   // 操作名未在注册表注册
	ErrorCodeExecutorFailure    = "EXECUTOR_FAILURE"    // 外部像素执行器失败
	ErrorCodePersistenceFailure = "PERSISTENCE_FAILURE" // 外部存储读写失败
	ErrorCodeInternalError      = "INTERNAL_ERROR"      // 内部错误
)

// 模块名称常量
const (
	ModuleTransform   = "transform"   // 颜色变换模块
	ModuleRegistry    = "op"          // 操作注册表模块
	ModuleGenerate    = "generate"    // 配置生成模块
	ModulePersonalize = "personalize" // 个性化模块
	ModuleOrchestrate = "orchestrate" // 编排模块
	ModuleStore       = "store"       // 存储模块
)

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsInvalidParameter 检查错误是否为 INVALID_PARAMETER
func IsInvalidParameter(err error) bool { return hasCode(err, ErrorCodeInvalidParameter) }

// IsUnknownOperation 检查错误是否为 UNKNOWN_OPERATION
func IsUnknownOperation(err error) bool { return hasCode(err, ErrorCodeUnknownOperation) }

// IsExecutorFailure 检查错误是否为 EXECUTOR_FAILURE
func IsExecutorFailure(err error) bool { return hasCode(err, ErrorCodeExecutorFailure) }

// IsPersistenceFailure 检查错误是否为 PERSISTENCE_FAILURE
func IsPersistenceFailure(err error) bool { return hasCode(err, ErrorCodePersistenceFailure) }
