package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/strata/pkg/adapters/redis"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ports.RunDocumentStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	doc := domain.NewDocument("c", "ttl", "x", domain.Tokenization{})

	require.NoError(t, store.Save(ctx, doc))

	ids, err := store.List(ctx, "c")
	require.NoError(t, err)
	assert.Contains(t, ids, "ttl")

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "c", "ttl")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	err := store.Save(ctx, domain.NewDocument("news", "a1", "x", domain.Tokenization{}))
	require.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:doc:news/a1"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index:news"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx, "news")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, list)
}
