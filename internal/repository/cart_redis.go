package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go-pos-billing/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

const lineSeqKey = "cart:line_seq"

// redisCartRepo keeps each session's cart in a hash (field = line id),
// refreshed to ttl on every write.
type redisCartRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

type redisCartLine struct {
	ProductID uint            `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewRedisCartRepo(rdb *redis.Client, ttl time.Duration) CartRepository {
	return &redisCartRepo{rdb: rdb, ttl: ttl}
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

func (r *redisCartRepo) Add(ctx context.Context, line *model.CartLine) error {
	id, err := r.rdb.Incr(ctx, lineSeqKey).Result()
	if err != nil {
		return fmt.Errorf("allocate cart line id: %w", err)
	}
	line.ID = uint(id)
	if line.CreatedAt.IsZero() {
		line.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(redisCartLine{ProductID: line.ProductID, Quantity: line.Quantity, CreatedAt: line.CreatedAt})
	if err != nil {
		return err
	}

	key := cartKey(line.SessionID)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, strconv.FormatUint(uint64(line.ID), 10), payload)
	pipe.Expire(ctx, key, r.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisCartRepo) FindBySession(ctx context.Context, sessionID string) ([]model.CartLine, error) {
	entries, err := r.rdb.HGetAll(ctx, cartKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}

	lines := make([]model.CartLine, 0, len(entries))
	for field, raw := range entries {
		id, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			continue
		}
		var stored redisCartLine
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			return nil, fmt.Errorf("decode cart line %s: %w", field, err)
		}
		lines = append(lines, model.CartLine{
			ID:        uint(id),
			SessionID: sessionID,
			ProductID: stored.ProductID,
			Quantity:  stored.Quantity,
			CreatedAt: stored.CreatedAt,
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines, nil
}

func (r *redisCartRepo) Remove(ctx context.Context, sessionID string, lineID uint) error {
	return r.rdb.HDel(ctx, cartKey(sessionID), strconv.FormatUint(uint64(lineID), 10)).Err()
}

func (r *redisCartRepo) Clear(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, cartKey(sessionID)).Err()
}
