package rdx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis connection used for caching (usernames, access
// tokens, seller counters) and the marketplace pub/sub channel.
type Client struct {
	Conn *redis.Client
}

// Connect dials Redis and verifies the connection.
func Connect(ctx context.Context, addr string) (*Client, error) {
	conn := redis.NewClient(&redis.Options{Addr: addr})
	if err := conn.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Client{Conn: conn}, nil
}

func (c *Client) Close() error {
	return c.Conn.Close()
}

func (c *Client) Set(ctx context.Context, key, value string) error {
	return c.Conn.Set(ctx, key, value, 0).Err()
}

func (c *Client) SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.Conn.Set(ctx, key, value, ttl).Err()
}

func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.Conn.Get(ctx, key).Result()
}

func (c *Client) HSet(ctx context.Context, hash, field, value string) error {
	return c.Conn.HSet(ctx, hash, field, value).Err()
}

func (c *Client) HDel(ctx context.Context, hash, field string) error {
	return c.Conn.HDel(ctx, hash, field).Err()
}

func (c *Client) IncrBy(ctx context.Context, key string, n int64) (int64, error) {
	return c.Conn.IncrBy(ctx, key, n).Result()
}

// GetInt64 returns 0 for a missing key.
func (c *Client) GetInt64(ctx context.Context, key string) (int64, error) {
	n, err := c.Conn.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

func (c *Client) Publish(ctx context.Context, channel string, payload []byte) error {
	return c.Conn.Publish(ctx, channel, payload).Err()
}

func (c *Client) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	return c.Conn.Subscribe(ctx, channel)
}
