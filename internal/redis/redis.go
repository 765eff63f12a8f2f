package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"persons-admin/internal/model"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	gridPrefix = "grid:"
	formPrefix = "form:"
)

// RedisClient keeps per-chat grid requests and form drafts.
type RedisClient struct {
	client   *redis.Client
	stateTTL time.Duration
}

func NewRedisClient(addr string, password string, db int, stateTTL time.Duration) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, err
	}

	return &RedisClient{client: client, stateTTL: stateTTL}, nil
}

func GridKey(chatID int64) string {
	return gridPrefix + strconv.FormatInt(chatID, 10)
}

func FormKey(chatID int64) string {
	return formPrefix + strconv.FormatInt(chatID, 10)
}

func (r *RedisClient) SaveGrid(ctx context.Context, chatID int64, state model.GridState) error {
	return r.save(ctx, GridKey(chatID), state)
}

// GetGrid returns nil without error when the chat has no saved grid.
func (r *RedisClient) GetGrid(ctx context.Context, chatID int64) (*model.GridState, error) {
	var state model.GridState
	found, err := r.load(ctx, GridKey(chatID), &state)
	if err != nil || !found {
		return nil, err
	}
	return &state, nil
}

func (r *RedisClient) SaveForm(ctx context.Context, chatID int64, state model.FormState) error {
	return r.save(ctx, FormKey(chatID), state)
}

func (r *RedisClient) GetForm(ctx context.Context, chatID int64) (*model.FormState, error) {
	var state model.FormState
	found, err := r.load(ctx, FormKey(chatID), &state)
	if err != nil || !found {
		return nil, err
	}
	return &state, nil
}

func (r *RedisClient) DeleteForm(ctx context.Context, chatID int64) error {
	return r.client.Del(ctx, FormKey(chatID)).Err()
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) save(ctx context.Context, key string, state any) error {
	data, err := json.Marshal(state)
	if err != nil {
		slog.Error("Error marshaling state", "key", key, "error", err)
		return err
	}
	return r.client.Set(ctx, key, data, r.stateTTL).Err()
}

func (r *RedisClient) load(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		slog.Error("Error getting state", "key", key, "error", err)
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		slog.Error("Error unmarshaling state", "key", key, "error", err)
		return false, err
	}
	return true, nil
}
