package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/zapflow/zapflow/pkg/adapters/redis"
	"github.com/zapflow/zapflow/pkg/domain"
	"github.com/zapflow/zapflow/pkg/ports"
)

func TestRedisStore_Contract(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client)
	ports.RunFlowStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	flowID := "flow-ttl"

	err = store.Save(ctx, flowID, domain.NewSpec())
	assert.NoError(t, err)

	flows, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, flows, flowID)

	// Fast forward time in miniredis for key expiration.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, flowID)
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)

	// Lazy index pruning uses time.Now() for the score cutoff, so we must
	// actually wait past the TTL before List drops the entry.
	time.Sleep(1200 * time.Millisecond)

	flows, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, flows)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client, redis.WithPrefix("custom:"))
	ctx := context.Background()

	err = store.Save(ctx, "abc", domain.NewSpec())
	assert.NoError(t, err)

	assert.True(t, mr.Exists("custom:abc"), "expected key with custom prefix")
	assert.True(t, mr.Exists("custom:index"), "expected index with custom prefix")
}
