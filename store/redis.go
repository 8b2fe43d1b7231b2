package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/tonekit/core"
)

// RedisHistory 是 Redis 实现的 HistoryStore。
// 生产环境常用，支持持久化、集群、哨兵等。
//
// 数据布局：
//   - tonekit:sessions:<userID> / tonekit:feedback:<userID>
//     每用户一个 LIST，LPUSH 保持最新优先，LTRIM 截断到容量上限
//   - tonekit:seq 全局自增序号，用于生成记录 ID
type RedisHistory struct {
	client *redis.Client
	cap    int64
}

// NewRedisHistory 连接 Redis 并返回历史存储。
// cap 是每个用户保留的记录条数上限，<= 0 时取 HistoryLimit 的默认值。
func NewRedisHistory(addr string, db int, cap int64) (*RedisHistory, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodePersistenceFailure,
			"store: connect redis", err)
	}
	if cap <= 0 {
		cap = int64(core.DefaultTuning().HistoryLimit)
	}
	return &RedisHistory{client: client, cap: cap}, nil
}

func (r *RedisHistory) Name() string { return "redis" }

func sessionKey(userID string) string  { return "tonekit:sessions:" + userID }
func feedbackKey(userID string) string { return "tonekit:feedback:" + userID }

func (r *RedisHistory) nextID(ctx context.Context, prefix string) (string, error) {
	seq, err := r.client.Incr(ctx, "tonekit:seq").Result()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d", prefix, seq), nil
}

// push 序列化记录并头插到 key 对应的 LIST，截断到容量上限。
func (r *RedisHistory) push(ctx context.Context, key string, rec any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	pipe := r.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, r.cap-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisHistory) SaveSession(ctx context.Context, rec *core.SessionRecord) (string, error) {
	if rec == nil || rec.UserID == "" {
		return "", core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidParameter,
			"store: session record with user id is required")
	}
	stored := *rec
	if stored.ID == "" {
		id, err := r.nextID(ctx, "session")
		if err != nil {
			return "", core.WrapDomainError(core.ModuleStore, core.ErrorCodePersistenceFailure,
				"store: allocate session id", err)
		}
		stored.ID = id
	}
	if err := r.push(ctx, sessionKey(stored.UserID), &stored); err != nil {
		return "", core.WrapDomainError(core.ModuleStore, core.ErrorCodePersistenceFailure,
			"store: save session", err)
	}
	return stored.ID, nil
}

func (r *RedisHistory) LoadRecentSessions(ctx context.Context, userID string, limit int) ([]*core.SessionRecord, error) {
	if limit <= 0 {
		limit = int(r.cap)
	}
	vals, err := r.client.LRange(ctx, sessionKey(userID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodePersistenceFailure,
			"store: load sessions", err)
	}
	out := make([]*core.SessionRecord, 0, len(vals))
	for _, v := range vals {
		var rec core.SessionRecord
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			// 坏记录跳过，不让整个画像重建失败
			continue
		}
		out = append(out, &rec)
	}
	return out, nil
}

func (r *RedisHistory) SaveFeedback(ctx context.Context, rec *core.FeedbackRecord) (string, error) {
	if rec == nil || rec.UserID == "" {
		return "", core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidParameter,
			"store: feedback record with user id is required")
	}
	stored := *rec
	if stored.ID == "" {
		id, err := r.nextID(ctx, "feedback")
		if err != nil {
			return "", core.WrapDomainError(core.ModuleStore, core.ErrorCodePersistenceFailure,
				"store: allocate feedback id", err)
		}
		stored.ID = id
	}
	if err := r.push(ctx, feedbackKey(stored.UserID), &stored); err != nil {
		return "", core.WrapDomainError(core.ModuleStore, core.ErrorCodePersistenceFailure,
			"store: save feedback", err)
	}
	return stored.ID, nil
}

func (r *RedisHistory) LoadRecentFeedback(ctx context.Context, userID string, limit int) ([]*core.FeedbackRecord, error) {
	if limit <= 0 {
		limit = int(r.cap)
	}
	vals, err := r.client.LRange(ctx, feedbackKey(userID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodePersistenceFailure,
			"store: load feedback", err)
	}
	out := make([]*core.FeedbackRecord, 0, len(vals))
	for _, v := range vals {
		var rec core.FeedbackRecord
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			continue
		}
		out = append(out, &rec)
	}
	return out, nil
}

func (r *RedisHistory) Close() error {
	return r.client.Close()
}

var _ core.HistoryStore = (*RedisHistory)(nil)
