package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/jgivc/assignfetch/internal/entity"
	"github.com/redis/go-redis/v9"
)

const (
	KeyCounters = "lc" // HASH. roll: download counter. HINCRBY lc {roll} 1
	KeyFiles    = "lf" // HASH. roll: file name fixed at the first download. HSETNX lf {roll} {file}

	KeySeparator = ":"
)

type redisRepository struct {
	prefix string
	cl     *redis.Client
	log    *slog.Logger
}

func NewRedisRepository(cl *redis.Client, prefix string, log *slog.Logger) *redisRepository {
	return &redisRepository{
		prefix: prefix,
		cl:     cl,
		log:    log.With(slog.String("item", "RedisLedger")),
	}
}

func (r *redisRepository) Increment(ctx context.Context, roll entity.RollNumber, file string) (int64, error) {
	field := strconv.Itoa(int(roll))

	var incr *redis.IntCmd
	_, err := r.cl.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, r.key(KeyFiles), field, file)
		incr = pipe.HIncrBy(ctx, r.key(KeyCounters), field, 1)

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("cannot increment roll %s counter: %w", roll, err)
	}

	return incr.Val(), nil
}

func (r *redisRepository) List(ctx context.Context) ([]*entity.LedgerEntry, error) {
	var (
		countersCmd *redis.MapStringStringCmd
		filesCmd    *redis.MapStringStringCmd
	)

	_, err := r.cl.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		countersCmd = pipe.HGetAll(ctx, r.key(KeyCounters))
		filesCmd = pipe.HGetAll(ctx, r.key(KeyFiles))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot get ledger: %w", err)
	}

	files := filesCmd.Val()
	entries := make([]*entity.LedgerEntry, 0, len(countersCmd.Val()))
	for field, val := range countersCmd.Val() {
		n, err := strconv.Atoi(field)
		if err != nil {
			r.log.Error("Cannot convert roll number", slog.String("field", field), slog.Any("error", err))

			continue
		}

		count, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			r.log.Error("Cannot convert counter value", slog.String("field", field), slog.Any("error", err))

			continue
		}

		if count < 1 {
			continue
		}

		entries = append(entries, &entity.LedgerEntry{
			RollNumber: entity.RollNumber(n),
			Count:      count,
			File:       files[field],
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RollNumber < entries[j].RollNumber
	})

	return entries, nil
}

func (r *redisRepository) key(name string) string {
	if r.prefix == "" {
		return name
	}

	return strings.Join([]string{r.prefix, name}, KeySeparator)
}
