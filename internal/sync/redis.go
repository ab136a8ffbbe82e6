package sync

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DatasetChannel carries the change signal published after every successful
// upload, so every API instance refreshes its streams.
const DatasetChannel = "custeio:dataset"

type RedisClient struct {
	redisdb *redis.Client
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(cfg RedisConfig) *RedisClient {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  -1, // pub/sub blocks on receive
		WriteTimeout: 2 * time.Second,
	})

	return &RedisClient{redisdb: redisdb}
}

// this ping function checks redis connectivity

func (c *RedisClient) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *RedisClient) Close() error {
	return c.redisdb.Close()
}

// PublishDatasetChanged signals that the shared dataset document was
// replaced. The payload is irrelevant; subscribers re-read the snapshot.
func (c *RedisClient) PublishDatasetChanged(ctx context.Context) error {
	return c.redisdb.Publish(ctx, DatasetChannel, "updated").Err()
}

// SubscribeDataset returns the raw pub/sub handle for the hub to drain.
func (c *RedisClient) SubscribeDataset(ctx context.Context) *redis.PubSub {
	return c.redisdb.Subscribe(ctx, DatasetChannel)
}
