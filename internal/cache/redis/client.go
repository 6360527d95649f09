package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/launchmap/backend/internal/storage/models"
	"github.com/launchmap/backend/pkg/logger"
)

type Client struct {
	client *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// SetAnalysis caches a finished analysis under the normalized URL hash so a
// repeat lookup within the TTL skips the scrape entirely.
func (c *Client) SetAnalysis(ctx context.Context, urlHash string, analysis *models.StoreAnalysis, ttl time.Duration) error {
	data, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	err = c.client.Set(ctx, fmt.Sprintf("analysis:%s", urlHash), data, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set analysis cache: %w", err)
	}

	logger.Debug("Analysis cached", zap.String("url_hash", urlHash), zap.Duration("ttl", ttl))
	return nil
}

func (c *Client) GetAnalysis(ctx context.Context, urlHash string) (*models.StoreAnalysis, bool, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf("analysis:%s", urlHash)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get analysis cache: %w", err)
	}

	var analysis models.StoreAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}

	logger.Debug("Analysis cache hit", zap.String("url_hash", urlHash))
	return &analysis, true, nil
}

func (c *Client) InvalidateAnalysis(ctx context.Context, urlHash string) error {
	return c.client.Del(ctx, fmt.Sprintf("analysis:%s", urlHash)).Err()
}

// IncrPlanUsage counts one analysis against the user's monthly quota and
// returns the new total. The counter expires with the calendar month.
func (c *Client) IncrPlanUsage(ctx context.Context, userID string, month string) (int64, error) {
	key := fmt.Sprintf("plan:%s:%s", userID, month)

	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment plan usage: %w", err)
	}

	if count == 1 {
		c.client.Expire(ctx, key, 32*24*time.Hour)
	}

	return count, nil
}

func (c *Client) GetPlanUsage(ctx context.Context, userID string, month string) (int64, error) {
	key := fmt.Sprintf("plan:%s:%s", userID, month)

	count, err := c.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get plan usage: %w", err)
	}

	return count, nil
}
