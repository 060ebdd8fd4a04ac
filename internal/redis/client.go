// Package redis mirrors the station registry and the resolved signal into
// Redis for external map and diagnostic tooling. The mirror is optional and
// strictly write-through: the sync cycle never reads it back.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saviobatista/tacan-sync/internal/types"
)

// RedisClientInterface defines the Redis operations used by our client
type RedisClientInterface interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// Client manages Redis connections and operations
type Client struct {
	client RedisClientInterface
}

// New creates a new Redis client
func New(addr string) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

// NewWithClient creates a new Redis client with a custom RedisClientInterface (useful for testing)
func NewWithClient(client RedisClientInterface) *Client {
	return &Client{client: client}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

func stationMirrorKey(key types.StationKey) string {
	return fmt.Sprintf("station:%s:%d:%s", key.OwnerID, key.Channel, key.Band)
}

// StoreStation mirrors one station under station:<owner>:<channel>:<band>.
// The TTL matches the registry's staleness timeout so entries age out of the
// mirror on their own when the daemon stops refreshing them.
func (c *Client) StoreStation(ctx context.Context, st types.Station, ttl time.Duration) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal station: %w", err)
	}
	return c.client.Set(ctx, stationMirrorKey(st.Key()), data, ttl).Err()
}

// DeleteStation removes a mirrored station.
func (c *Client) DeleteStation(ctx context.Context, key types.StationKey) error {
	return c.client.Del(ctx, stationMirrorKey(key)).Err()
}

// GetStation retrieves a mirrored station; nil when absent.
func (c *Client) GetStation(ctx context.Context, key types.StationKey) (*types.Station, error) {
	data, err := c.client.Get(ctx, stationMirrorKey(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get station data: %w", err)
	}
	var st types.Station
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal station data: %w", err)
	}
	return &st, nil
}

// StoreResolvedSignal mirrors the local receiver's current reading under
// signal:<owner>.
func (c *Client) StoreResolvedSignal(ctx context.Context, owner string, sig types.ResolvedSignal, ttl time.Duration) error {
	data, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("failed to marshal resolved signal: %w", err)
	}
	key := fmt.Sprintf("signal:%s", owner)
	return c.client.Set(ctx, key, data, ttl).Err()
}
