package core

import "context"

// HistoryStore 是会话/反馈持久化的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//   - 除本文件字段外不要求任何存储 schema
//
// 使用场景：
//   - 编排器在每次运行后写入 SessionRecord
//   - 个性化引擎重建画像时读取最近历史（最新优先）
//   - 用户反馈经 SaveFeedback 写入并触发画像缓存失效
//
// 实现：
//   - store.MemoryHistory 实现此接口（测试/开发/原型）
//   - store.RedisHistory 实现此接口（生产）
type HistoryStore interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// SaveSession 写入一条会话记录，返回分配的记录 ID
	SaveSession(ctx context.Context, rec *SessionRecord) (string, error)

	// LoadRecentSessions 读取某用户最近的会话记录，最新优先
	LoadRecentSessions(ctx context.Context, userID string, limit int) ([]*SessionRecord, error)

	// SaveFeedback 写入一条反馈记录，返回分配的记录 ID
	SaveFeedback(ctx context.Context, rec *FeedbackRecord) (string, error)

	// LoadRecentFeedback 读取某用户最近的反馈记录，最新优先
	LoadRecentFeedback(ctx context.Context, userID string, limit int) ([]*FeedbackRecord, error)

	// Close 关闭连接/释放资源
	Close() error
}

// Store 错误定义（使用统一的 DomainError）
var (
	// ErrHistoryNotFound 表示记录不存在
	ErrHistoryNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: record not found")
)
