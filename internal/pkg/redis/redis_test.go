package redis

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cmdRecorder answers commands in-process and records their arguments, so
// no server is needed.
type cmdRecorder struct {
	mu       sync.Mutex
	args     [][]any
	counters map[string]int64
}

func (r *cmdRecorder) DialHook(next redis.DialHook) redis.DialHook { return next }

func (r *cmdRecorder) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (r *cmdRecorder) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.args = append(r.args, cmd.Args())
		switch c := cmd.(type) {
		case *redis.IntCmd:
			key := fmt.Sprint(c.Args()[1])
			r.counters[key]++
			c.SetVal(r.counters[key])
		case *redis.BoolCmd:
			c.SetVal(true)
		case *redis.StringCmd:
			c.SetErr(redis.Nil)
		}
		return cmd.Err()
	}
}

func newRecordedClient(prefix string) (*Client, *cmdRecorder) {
	rec := &cmdRecorder{counters: map[string]int64{}}
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	rdb.AddHook(rec)
	return New(rdb, prefix), rec
}

func TestIncr_NamespacesKeyAndExpiresOnFirstHit(t *testing.T) {
	c, rec := newRecordedClient("folio:")
	ctx := context.Background()

	n, err := c.Incr(ctx, "rate_limit:ai:10.0.0.1:42", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = c.Incr(ctx, "rate_limit:ai:10.0.0.1:42", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.Len(t, rec.args, 3)
	assert.Equal(t, []any{"incr", "folio:rate_limit:ai:10.0.0.1:42"}, rec.args[0])
	assert.Equal(t, "pexpire", rec.args[1][0])
	assert.Equal(t, "folio:rate_limit:ai:10.0.0.1:42", rec.args[1][1])
	assert.Equal(t, []any{"incr", "folio:rate_limit:ai:10.0.0.1:42"}, rec.args[2])
}

func TestGet_MissingKeyIsNotAnError(t *testing.T) {
	c, rec := newRecordedClient("folio:")

	_, found, err := c.Get(context.Background(), "notes:list")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, []any{"get", "folio:notes:list"}, rec.args[0])
}
