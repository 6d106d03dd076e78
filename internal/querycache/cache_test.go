package querycache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return mr, store
}

func stores(t *testing.T) map[string]Store {
	_, rs := setupTestRedis(t)
	return map[string]Store{
		"memory": NewMemoryStore(time.Minute, time.Minute),
		"redis":  rs,
	}
}

func TestLoadReadThrough(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := New(store, time.Minute, nil)
			calls := 0
			fetch := func(context.Context) ([]item, error) {
				calls++
				return []item{{ID: 1, Title: "a"}}, nil
			}

			first, err := Load(ctx, c, Key("tasks", "list"), fetch)
			require.NoError(t, err)
			second, err := Load(ctx, c, Key("tasks", "list"), fetch)
			require.NoError(t, err)

			assert.Equal(t, first, second)
			assert.Equal(t, 1, calls)
		})
	}
}

func fixedScope(scope string) Option {
	return WithScope(func() string { return scope })
}

func TestInvalidateDropsOnlyNamedResources(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := New(store, time.Minute, nil, fixedScope("s1"))
			for _, k := range []string{
				"s1:" + Key("tasks", "list"),
				"s1:" + Key("tasks", "7"),
				"s1:" + Key("analytics", "summary"),
				"s1:" + Key("risks", "list"),
				"s2:" + Key("tasks", "list"),
			} {
				require.NoError(t, store.Set(ctx, k, []byte(`[]`), time.Minute))
			}

			c.Invalidate(ctx, "tasks", "analytics")

			for _, k := range []string{"s1:" + Key("tasks", "list"), "s1:" + Key("tasks", "7"), "s1:" + Key("analytics", "summary")} {
				_, ok, err := store.Get(ctx, k)
				require.NoError(t, err)
				assert.False(t, ok, k)
			}
			for _, k := range []string{"s1:" + Key("risks", "list"), "s2:" + Key("tasks", "list")} {
				_, ok, err := store.Get(ctx, k)
				require.NoError(t, err)
				assert.True(t, ok, k)
			}
		})
	}
}

func TestScopesDoNotShareEntries(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			scope := "alice"
			c := New(store, time.Minute, nil, WithScope(func() string { return scope }))
			calls := 0
			fetch := func(context.Context) (string, error) {
				calls++
				return scope, nil
			}

			got, err := Load(ctx, c, Key("tasks", "list"), fetch)
			require.NoError(t, err)
			assert.Equal(t, "alice", got)

			scope = "bob"
			got, err = Load(ctx, c, Key("tasks", "list"), fetch)
			require.NoError(t, err)
			assert.Equal(t, "bob", got)

			scope = ""
			_, err = Load(ctx, c, Key("tasks", "list"), fetch)
			require.NoError(t, err)
			_, err = Load(ctx, c, Key("tasks", "list"), fetch)
			require.NoError(t, err)
			assert.Equal(t, 4, calls, "anonymous reads are never cached")
		})
	}
}

func TestPurgeDropsEveryScope(t *testing.T) {
	ctx := context.Background()
	mr, rs := setupTestRedis(t)
	mem := NewMemoryStore(time.Minute, time.Minute)
	mr.Set("unrelated", "keep")

	for _, store := range []Store{mem, rs} {
		require.NoError(t, store.Set(ctx, "a:tasks:list", []byte(`[]`), time.Minute))
		require.NoError(t, store.Set(ctx, "b:risks:list", []byte(`[]`), time.Minute))
		New(store, time.Minute, nil).Purge(ctx)

		for _, k := range []string{"a:tasks:list", "b:risks:list"} {
			_, ok, err := store.Get(ctx, k)
			require.NoError(t, err)
			assert.False(t, ok, k)
		}
	}
	assert.Zero(t, mem.Len())
	assert.True(t, mr.Exists("unrelated"))

	var nilCache *Cache
	nilCache.Purge(ctx)
}

func TestLoadDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(time.Minute, time.Minute), time.Minute, nil)
	boom := errors.New("boom")

	_, err := Load(ctx, c, "k:1", func(context.Context) (item, error) { return item{}, boom })
	assert.ErrorIs(t, err, boom)

	got, err := Load(ctx, c, "k:1", func(context.Context) (item, error) { return item{ID: 2}, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, got.ID)
}

func TestNilCacheFetchesEveryTime(t *testing.T) {
	var c *Cache
	calls := 0
	for i := 0; i < 2; i++ {
		_, err := Load(context.Background(), c, "k:1", func(context.Context) (int, error) {
			calls++
			return calls, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
	c.Invalidate(context.Background(), "k")
}

func TestRedisEntriesExpire(t *testing.T) {
	mr, store := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "tasks:list", []byte(`[]`), time.Second))

	mr.FastForward(2 * time.Second)

	_, ok, err := store.Get(ctx, "tasks:list")
	require.NoError(t, err)
	assert.False(t, ok)
}
