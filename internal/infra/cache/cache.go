package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const generationKey = "spa:reports:gen"

// Connect открывает клиента Redis и проверяет связь. Пустой addr — кэш
// выключен, клиент nil.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Reports кэширует ответы отчётов. Ключи живут под номером поколения;
// любая запись в назначения/сессии увеличивает поколение, и старые ключи
// больше не читаются (истекают по TTL).
type Reports struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

// NewReports — rdb == nil даёт выключенный кэш: Get всегда промах.
func NewReports(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *Reports {
	return &Reports{rdb: rdb, ttl: ttl, log: log}
}

func (c *Reports) enabled() bool { return c != nil && c.rdb != nil }

func (c *Reports) key(ctx context.Context, key string) (string, error) {
	gen, err := c.rdb.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		gen = 0
	} else if err != nil {
		return "", err
	}
	return fmt.Sprintf("spa:reports:%d:%s", gen, key), nil
}

// Get читает значение под текущим поколением и возвращает ключ с этим
// поколением. Промах нужно дописывать через SetAt с тем же ключом: если
// между чтением и записью прошла инвалидация, результат ляжет под старое
// поколение и читателям уже не достанется.
func (c *Reports) Get(ctx context.Context, key string, dst any) (bool, string, error) {
	if !c.enabled() {
		return false, "", nil
	}
	k, err := c.key(ctx, key)
	if err != nil {
		return false, "", err
	}
	data, err := c.rdb.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, k, nil
	}
	if err != nil {
		return false, k, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, k, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, k, nil
}

// SetAt пишет под ключом, который вернул Get. Пустой ключ — ничего не пишем.
func (c *Reports) SetAt(ctx context.Context, genKey string, v any) error {
	if !c.enabled() || genKey == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, genKey, data, c.ttl).Err()
}

// Invalidate сдвигает поколение. Ошибка только логируется: запись в БД уже
// прошла, а устаревший кэш проживёт не дольше TTL.
func (c *Reports) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.rdb.Incr(ctx, generationKey).Err(); err != nil {
		c.log.Warn("reports cache invalidate failed", "err", err)
	}
}
