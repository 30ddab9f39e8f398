// Package cache кэширует витрину доступных вещей.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ReWear/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	// CatalogKey — ключ Redis со списком доступных вещей.
	CatalogKey = "rewear:catalog:acquirable"
	// GenerationKey — счётчик инвалидаций витрины.
	GenerationKey = "rewear:catalog:generation"
)

// ErrStaleCatalog — между чтением поколения и записью витрина была сброшена;
// список из БД мог устареть, поэтому он не записывается.
var ErrStaleCatalog = errors.New("catalog invalidated during refresh")

// CatalogCache хранит результат ListAcquirable между изменениями каталога.
//
// Порядок заполнения при промахе: Generation, затем чтение БД, затем SetCatalog с этим
// поколением. Invalidate, случившийся посередине, меняет поколение, и запись отклоняется.
type CatalogCache interface {
	// GetCatalog возвращает (items, true, nil) при попадании и (nil, false, nil) при промахе.
	GetCatalog(ctx context.Context) ([]model.Item, bool, error)
	Generation(ctx context.Context) (int64, error)
	// SetCatalog пишет витрину, только если поколение всё ещё gen; иначе ErrStaleCatalog.
	SetCatalog(ctx context.Context, items []model.Item, gen int64) error
	// Invalidate сбрасывает витрину после любой записи, меняющей доступность.
	Invalidate(ctx context.Context) error
}

// Connect создаёт клиента Redis по URL (redis://…) или адресу host:port и проверяет соединение.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// RedisCatalog — CatalogCache поверх Redis, JSON со сроком жизни ttl.
type RedisCatalog struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCatalog(client *redis.Client, ttl time.Duration) *RedisCatalog {
	return &RedisCatalog{client: client, ttl: ttl}
}

func (c *RedisCatalog) GetCatalog(ctx context.Context) ([]model.Item, bool, error) {
	s, err := c.client.Get(ctx, CatalogKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var items []model.Item
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (c *RedisCatalog) Generation(ctx context.Context) (int64, error) {
	return generation(ctx, c.client)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func generation(ctx context.Context, cmd getter) (int64, error) {
	n, err := cmd.Get(ctx, GenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// SetCatalog — WATCH на счётчике поколений: параллельный Invalidate срывает транзакцию.
func (c *RedisCatalog) SetCatalog(ctx context.Context, items []model.Item, gen int64) error {
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := generation(ctx, tx)
		if err != nil {
			return err
		}
		if cur != gen {
			return ErrStaleCatalog
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, CatalogKey, b, c.ttl)
			return nil
		})
		return err
	}, GenerationKey)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStaleCatalog
	}
	return err
}

func (c *RedisCatalog) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, GenerationKey)
		p.Del(ctx, CatalogKey)
		return nil
	})
	return err
}

// Nop — кэш-заглушка, когда Redis не настроен: всегда промах.
type Nop struct{}

func (Nop) GetCatalog(context.Context) ([]model.Item, bool, error) { return nil, false, nil }
func (Nop) Generation(context.Context) (int64, error)              { return 0, nil }
func (Nop) SetCatalog(context.Context, []model.Item, int64) error  { return nil }
func (Nop) Invalidate(context.Context) error                       { return nil }
