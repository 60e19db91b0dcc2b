package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunOnStartAndInterval(t *testing.T) {
	var runs atomic.Int32
	s := New(nil)
	s.Register(Job{
		Name:       "warm",
		Interval:   20 * time.Millisecond,
		RunOnStart: true,
		Fn: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	items := s.List()
	require.Len(t, items, 1)
	assert.Equal(t, "warm", items[0].Name)
	assert.NotNil(t, items[0].LastRunAt)
}

func TestScheduler_RunRecordsFailure(t *testing.T) {
	s := New(nil)
	s.Register(Job{Name: "b", Interval: time.Hour, Fn: func(context.Context) error { return errors.New("notion down") }})
	s.Register(Job{Name: "a", Interval: time.Hour, Fn: func(context.Context) error { return nil }})

	require.NoError(t, s.Run(context.Background(), "b"))
	assert.Error(t, s.Run(context.Background(), "missing"))

	require.Eventually(t, func() bool {
		return s.List()[1].Status == StatusFailed
	}, time.Second, 5*time.Millisecond)
	items := s.List()
	assert.Equal(t, "a", items[0].Name)
	assert.Equal(t, StatusIdle, items[0].Status)
	assert.Equal(t, "notion down", items[1].Message)
}
