package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("ロックを取得できませんでした")
	ErrLockNotOwned    = errors.New("ロックの所有者ではありません")
)

// RegistrationLock は登録処理を直列化するためのRedis分散ロック
// (インスタンス, 電話番号) 単位で取得する。これは競合時のエラーメッセージを
// 親切にするための最適化であり、実際の安全機構はDBの一意制約
type RegistrationLock struct {
	client *redis.Client
	key    string
	token  string
}

// LockManager は分散ロックを管理する
type LockManager struct {
	client *redis.Client
}

// NewLockManager はLockManagerを作成する
func NewLockManager(client *redis.Client) *LockManager {
	return &LockManager{client: client}
}

// RegistrationLockKey は (インスタンス, 電話番号) のロックキーを生成する
func RegistrationLockKey(instanceID, phone string) string {
	return fmt.Sprintf("registration:%s:%s", instanceID, phone)
}

// Acquire はロックを取得する（SetNX：キーが存在しない場合のみ設定）
func (m *LockManager) Acquire(ctx context.Context, key string, ttl time.Duration) (*RegistrationLock, error) {
	lockKey := "lock:" + key
	token := uuid.New().String()

	ok, err := m.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("ロック取得に失敗しました: %w", err)
	}
	if !ok {
		return nil, ErrLockNotAcquired
	}
	return &RegistrationLock{client: m.client, key: lockKey, token: token}, nil
}

// AcquireWithRetry はリトライ付きでロックを取得する
func (m *LockManager) AcquireWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (*RegistrationLock, error) {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		lock, err := m.Acquire(ctx, key, ttl)
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, ErrLockNotAcquired) {
			return nil, err
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, lastErr
}

// releaseScript は所有者確認と削除をアトミックに実行するLuaスクリプト
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// Release はロックを解放する
func (l *RegistrationLock) Release(ctx context.Context) error {
	result, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int()
	if err != nil {
		return fmt.Errorf("ロック解放に失敗しました: %w", err)
	}
	if result == 0 {
		return ErrLockNotOwned
	}
	return nil
}
