// Package redis owns the process-wide client for the session area.
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	client *redislib.Client
	once   sync.Once
)

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (cfg Config) Addr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// Init connects once and pings with exponential backoff. Later calls
// return the same client.
func Init(cfg Config, logger logrus.FieldLogger) (*redislib.Client, error) {
	var initErr error

	once.Do(func() {
		client = redislib.NewClient(&redislib.Options{
			Addr:     cfg.Addr(),
			Password: cfg.Password,
			DB:       cfg.DB,
		})

		initErr = ping(client, 5, 200*time.Millisecond, logger)
		if initErr != nil {
			_ = client.Close()
			client = nil
		}
	})

	if client == nil && initErr == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}

	return client, initErr
}

func ping(c *redislib.Client, attempts int, backoff time.Duration, logger logrus.FieldLogger) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err = c.Ping(ctx).Err()
		cancel()

		if err == nil {
			return nil
		}

		if logger != nil {
			logger.WithError(err).WithField("attempt", attempt).Warn("redis ping failed")
		}
		if attempt < attempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return err
}

func Client() *redislib.Client {
	return client
}

func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}
