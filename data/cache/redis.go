package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/btc_moonshot_bot/utils"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type RedisCache struct {
	redis           *redis.Client
	priceExpiration time.Duration
}

func NewRedisCache(redisClient *redis.Client, priceExpiration time.Duration) *RedisCache {
	return &RedisCache{redis: redisClient, priceExpiration: priceExpiration}
}

func priceKey(asset, fiat string) string {
	return fmt.Sprintf("price:%s:%s", asset, fiat)
}

func (r *RedisCache) SetPrice(ctx context.Context, asset, fiat string, price decimal.Decimal) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisCache.SetPrice"

	slog.Debug("SetPrice start", slog.String("rqID", rqID), slog.String("op", op), slog.String("price", price.String()))

	err := r.redis.Set(ctx, priceKey(asset, fiat), price.String(), r.priceExpiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetPrice completed", slog.String("rqID", rqID), slog.String("op", op))

	return nil
}

// GetPrice returns redis.Nil when the price is absent or expired.
func (r *RedisCache) GetPrice(ctx context.Context, asset, fiat string) (decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisCache.GetPrice"

	res, err := r.redis.Get(ctx, priceKey(asset, fiat)).Result()
	if err != nil {
		return decimal.Decimal{}, err
	}

	price, err := decimal.NewFromString(res)
	if err != nil {
		slog.Error("can't parse cached price", slog.String("rqID", rqID), slog.String("op", op), slog.String("resultFromRedis", res))
		return decimal.Decimal{}, fmt.Errorf("parse cached price: %w", err)
	}

	return price, nil
}
