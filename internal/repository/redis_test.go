package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"addrcore/internal/config"
)

func TestNewRedisCache_Disabled(t *testing.T) {
	cache, err := NewRedisCache(context.Background(), config.RedisConfig{})
	assert.NoError(t, err)
	assert.Nil(t, cache)
}

func TestNewRedisCache_BadURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), config.RedisConfig{URL: "not-a-redis-url"})
	assert.Error(t, err)
}
