package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rushteam/tonekit/core"
)

// MemoryHistory 是内存实现的 HistoryStore，用于测试/开发/原型。
// 进程重启后数据丢失。
type MemoryHistory struct {
	mu       sync.RWMutex
	sessions map[string][]*core.SessionRecord  // userID -> 最新优先
	feedback map[string][]*core.FeedbackRecord // userID -> 最新优先
	seq      int64
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{
		sessions: make(map[string][]*core.SessionRecord),
		feedback: make(map[string][]*core.FeedbackRecord),
	}
}

func (m *MemoryHistory) Name() string { return "memory" }

func (m *MemoryHistory) SaveSession(ctx context.Context, rec *core.SessionRecord) (string, error) {
	if rec == nil || rec.UserID == "" {
		return "", core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidParameter,
			"store: session record with user id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	stored := *rec
	if stored.ID == "" {
		stored.ID = fmt.Sprintf("session-%d", m.seq)
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	// 头插保持最新优先
	m.sessions[stored.UserID] = append([]*core.SessionRecord{&stored}, m.sessions[stored.UserID]...)
	return stored.ID, nil
}

func (m *MemoryHistory) LoadRecentSessions(ctx context.Context, userID string, limit int) ([]*core.SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := m.sessions[userID]
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	out := make([]*core.SessionRecord, len(recs))
	copy(out, recs)
	return out, nil
}

func (m *MemoryHistory) SaveFeedback(ctx context.Context, rec *core.FeedbackRecord) (string, error) {
	if rec == nil || rec.UserID == "" {
		return "", core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidParameter,
			"store: feedback record with user id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	stored := *rec
	if stored.ID == "" {
		stored.ID = fmt.Sprintf("feedback-%d", m.seq)
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	m.feedback[stored.UserID] = append([]*core.FeedbackRecord{&stored}, m.feedback[stored.UserID]...)
	return stored.ID, nil
}

func (m *MemoryHistory) LoadRecentFeedback(ctx context.Context, userID string, limit int) ([]*core.FeedbackRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := m.feedback[userID]
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	out := make([]*core.FeedbackRecord, len(recs))
	copy(out, recs)
	return out, nil
}

func (m *MemoryHistory) Close() error { return nil }

var _ core.HistoryStore = (*MemoryHistory)(nil)
