// AngelaMos | 2026
// redis_test.go

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/permitdesk/internal/config"
)

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "permitdesk:blacklist:jti-1", RedisKey("blacklist", "jti-1"))
	assert.Equal(t, "permitdesk:ratelimit:ip:10.0.0.1", RedisKey("ratelimit", "ip", "10.0.0.1"))
}

func TestRedisOptions(t *testing.T) {
	t.Run("applies pool settings", func(t *testing.T) {
		opts, err := redisOptions(config.RedisConfig{
			URL:          "redis://localhost:6379/2",
			PoolSize:     20,
			MinIdleConns: 4,
		})
		require.NoError(t, err)
		assert.Equal(t, "localhost:6379", opts.Addr)
		assert.Equal(t, 2, opts.DB)
		assert.Equal(t, 20, opts.PoolSize)
		assert.Equal(t, 4, opts.MinIdleConns)
		assert.Equal(t, "permitdesk", opts.ClientName)
	})

	t.Run("keeps client default pool size when unset", func(t *testing.T) {
		opts, err := redisOptions(config.RedisConfig{URL: "redis://localhost:6379/0"})
		require.NoError(t, err)
		assert.Zero(t, opts.PoolSize)
	})

	t.Run("rejects malformed url", func(t *testing.T) {
		_, err := redisOptions(config.RedisConfig{URL: "http://localhost"})
		assert.ErrorContains(t, err, "parse redis url")
	})
}
