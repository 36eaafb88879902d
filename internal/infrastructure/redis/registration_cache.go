package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("キャッシュが見つかりません")

// RegistrationCountCache はインスタンスごとの有効登録数キャッシュを管理する
type RegistrationCountCache struct {
	client *redis.Client
}

// NewRegistrationCountCache はRegistrationCountCacheを作成する
func NewRegistrationCountCache(client *redis.Client) *RegistrationCountCache {
	return &RegistrationCountCache{client: client}
}

func (c *RegistrationCountCache) key(instanceID string) string {
	return fmt.Sprintf("instance:%s:registration_count", instanceID)
}

// GetCount はインスタンスの登録数をキャッシュから取得する
func (c *RegistrationCountCache) GetCount(ctx context.Context, instanceID string) (int, error) {
	val, err := c.client.Get(ctx, c.key(instanceID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗しました: %w", err)
	}
	return val, nil
}

// SetCount はインスタンスの登録数をキャッシュに保存する
func (c *RegistrationCountCache) SetCount(ctx context.Context, instanceID string, count int, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(instanceID), count, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗しました: %w", err)
	}
	return nil
}

// Invalidate はインスタンスのキャッシュを無効化する
// 登録・キャンセルの後に呼び出す
func (c *RegistrationCountCache) Invalidate(ctx context.Context, instanceID string) error {
	if err := c.client.Del(ctx, c.key(instanceID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗しました: %w", err)
	}
	return nil
}
