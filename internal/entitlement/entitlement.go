// Package entitlement はユーザーのProプラン判定機能を提供します。
package entitlement

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Checker はユーザーがProプランかどうかを判定します。
// 外部のサブスクリプション基盤への問い合わせを抽象化したもので、
// テストでは StaticChecker に差し替えられます。
type Checker interface {
	IsPro(ctx context.Context, userID string) (bool, error)
}

// RedisChecker は Redis のセットメンバーシップでProユーザーを判定します。
// 課金基盤側がセットにユーザーIDを同期している前提です。
type RedisChecker struct {
	rdb *redis.Client
	key string
}

// NewRedisChecker は RedisChecker を作成します。
func NewRedisChecker(rdb *redis.Client, key string) *RedisChecker {
	if key == "" {
		key = "entitlements:pro"
	}
	return &RedisChecker{
		rdb: rdb,
		key: key,
	}
}

// IsPro はユーザーIDがProセットに含まれるかを返します。
func (c *RedisChecker) IsPro(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	ok, err := c.rdb.SIsMember(ctx, c.key, userID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check entitlement for %s: %w", userID, err)
	}
	return ok, nil
}

// StaticChecker は固定の判定結果を返します。ローカル開発とテスト用です。
type StaticChecker struct {
	Result bool
	Err    error
}

// IsPro は設定された結果をそのまま返します。
func (c *StaticChecker) IsPro(ctx context.Context, userID string) (bool, error) {
	return c.Result, c.Err
}
