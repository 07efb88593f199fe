package redis

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_Prefixed(t *testing.T) {
	c := NewFromClient(goredis.NewClient(&goredis.Options{Addr: "localhost:0"}), "test:")
	defer c.Close()

	assert.Equal(t, "test:college:rice university", c.Key("college:rice university"))
}

// newLiveCache connects to LOAN_PROJECTION_TEST_REDIS, skipping when unset
// or unreachable.
func newLiveCache(t *testing.T) *Cache {
	addr := os.Getenv("LOAN_PROJECTION_TEST_REDIS")
	if addr == "" {
		t.Skip("LOAN_PROJECTION_TEST_REDIS not set")
	}

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	c := NewFromClient(client, "loanprojection-test:"+t.Name()+":")
	t.Cleanup(func() { c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		t.Skipf("redis unavailable at %s: %v", addr, err)
	}
	return c
}

func TestCache_RoundTrip(t *testing.T) {
	c := newLiveCache(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "salary:cs:tx", `{"major":"Computer Science"}`, time.Minute))
	val, ok, err := c.Get(ctx, "salary:cs:tx")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"major":"Computer Science"}`, val)
}

func TestCache_Expiry(t *testing.T) {
	c := newLiveCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", "v", 50*time.Millisecond))
	require.Eventually(t, func() bool {
		_, ok, err := c.Get(ctx, "short")
		return err == nil && !ok
	}, 2*time.Second, 20*time.Millisecond)
}
