package mask

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/verzoeken/pkg/redis"
)

func newRedisMask(t *testing.T) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	client, err := redis.NewClient(context.Background(), redis.Config{Host: mr.Host(), Port: port}, ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewRedis(client, "verzoeken:test")
}

func backends(t *testing.T) map[string]Mask {
	return map[string]Mask{
		"memory": NewMemory(),
		"redis":  newRedisMask(t),
	}
}

func TestHold_MarksWhileRunning(t *testing.T) {
	for name, m := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			ids := []uuid.UUID{uuid.New(), uuid.New()}

			err := Hold(ctx, m, ids, func(ctx context.Context) error {
				marked, err := m.Marked(ctx)
				require.NoError(t, err)
				assert.ElementsMatch(t, ids, marked)
				return nil
			})
			require.NoError(t, err)

			marked, err := m.Marked(ctx)
			require.NoError(t, err)
			assert.Empty(t, marked)
		})
	}
}

func TestHold_RemovesOnError(t *testing.T) {
	for name, m := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			failure := errors.New("remote delete failed")

			err := Hold(ctx, m, []uuid.UUID{uuid.New()}, func(ctx context.Context) error {
				return failure
			})
			assert.ErrorIs(t, err, failure)

			marked, err := m.Marked(ctx)
			require.NoError(t, err)
			assert.Empty(t, marked)
		})
	}
}

func TestHold_RemovesOnPanic(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id := uuid.New()

	assert.Panics(t, func() {
		_ = Hold(ctx, m, []uuid.UUID{id}, func(ctx context.Context) error {
			panic("boom")
		})
	})

	found, err := Contains(ctx, m, id)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHold_KeepsOtherEntries(t *testing.T) {
	for name, m := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			other := uuid.New()
			require.NoError(t, m.Add(ctx, other))

			require.NoError(t, Hold(ctx, m, []uuid.UUID{uuid.New()}, func(ctx context.Context) error {
				return nil
			}))

			found, err := Contains(ctx, m, other)
			require.NoError(t, err)
			assert.True(t, found)
		})
	}
}

func TestNestedMarks(t *testing.T) {
	for name, m := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id := uuid.New()

			require.NoError(t, m.Add(ctx, id))
			require.NoError(t, m.Add(ctx, id))
			require.NoError(t, m.Remove(ctx, id))

			found, err := Contains(ctx, m, id)
			require.NoError(t, err)
			assert.True(t, found)

			require.NoError(t, m.Remove(ctx, id))
			found, err = Contains(ctx, m, id)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestHold_OverlappingHolds(t *testing.T) {
	for name, m := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id := uuid.New()

			err := Hold(ctx, m, []uuid.UUID{id}, func(ctx context.Context) error {
				require.NoError(t, Hold(ctx, m, []uuid.UUID{id}, func(ctx context.Context) error {
					return nil
				}))

				found, err := Contains(ctx, m, id)
				require.NoError(t, err)
				assert.True(t, found)
				return nil
			})
			require.NoError(t, err)

			found, err := Contains(ctx, m, id)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}
