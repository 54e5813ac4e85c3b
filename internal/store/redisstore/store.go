// Package redisstore keeps the loan record and its schedule in Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"loanschedule/internal/core"
	applog "loanschedule/internal/log"
	"loanschedule/internal/store"
)

type Options struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type Store struct {
	client *redis.Client
	prefix string
	logger *applog.Logger
}

// New connects to Redis and verifies the connection with a PING.
func New(ctx context.Context, opts Options, logger *applog.Logger) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return NewWithClient(client, opts.KeyPrefix, logger), nil
}

// NewWithClient wraps an existing client. The store owns it from then on.
func NewWithClient(client *redis.Client, prefix string, logger *applog.Logger) *Store {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Store{
		client: client,
		prefix: prefix,
		logger: logger.WithComponent(applog.ComponentStorage),
	}
}

func (s *Store) recordKey() string {
	return s.prefix + store.RecordKey
}

func (s *Store) scheduleKey() string {
	return s.recordKey() + ":schedule"
}

// Save writes the record and replaces the schedule list atomically.
func (s *Store) Save(ctx context.Context, r store.Record, sched core.Schedule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode loan record: %w", err)
	}

	rows := make([]any, 0, len(sched.Rows))
	for _, row := range sched.Rows {
		b, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encode schedule row %d: %w", row.Period, err)
		}
		rows = append(rows, b)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.recordKey(), body, 0)
		pipe.Del(ctx, s.scheduleKey())
		if len(rows) > 0 {
			pipe.RPush(ctx, s.scheduleKey(), rows...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save loan record: %w", err)
	}

	applog.FromContext(ctx, s.logger).WithComponent(applog.ComponentStorage).
		InfoContext(ctx, "Loan record saved to Redis",
			applog.FieldOperation, applog.OpSave,
			applog.FieldKey, s.recordKey(),
			applog.FieldRows, len(rows))
	return nil
}

func (s *Store) Load(ctx context.Context) (store.Record, error) {
	body, err := s.client.Get(ctx, s.recordKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return store.Record{}, store.ErrNotFound
	}
	if err != nil {
		return store.Record{}, fmt.Errorf("get loan record: %w", err)
	}

	var r store.Record
	if err := json.Unmarshal(body, &r); err != nil {
		return store.Record{}, fmt.Errorf("decode loan record: %w", err)
	}
	if err := r.Validate(); err != nil {
		return store.Record{}, err
	}
	applog.FromContext(ctx, s.logger).WithComponent(applog.ComponentStorage).
		DebugContext(ctx, "Loan record loaded from Redis", applog.FieldOperation, applog.OpLoad, applog.FieldKey, s.recordKey())
	return r, nil
}

// LoadRows returns the schedule saved with the record.
func (s *Store) LoadRows(ctx context.Context) ([]core.ScheduleRow, error) {
	items, err := s.client.LRange(ctx, s.scheduleKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read schedule rows: %w", err)
	}
	rows := make([]core.ScheduleRow, len(items))
	for i, item := range items {
		if err := json.Unmarshal([]byte(item), &rows[i]); err != nil {
			return nil, fmt.Errorf("decode schedule row %d: %w", i+1, err)
		}
	}
	return rows, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
