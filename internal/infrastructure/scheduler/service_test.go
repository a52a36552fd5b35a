package scheduler_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/ticker"
	"github.com/stretchr/testify/require"
	blockscheduler "github.com/syscoin/sysasset/internal/infrastructure/scheduler/block"
)

type mockTip struct {
	height atomic.Int64
	err    error
}

func (m *mockTip) GetBlockCount(_ context.Context) (int64, error) {
	return m.height.Load(), m.err
}

func TestScheduleTask(t *testing.T) {
	tip := &mockTip{}
	tip.height.Store(100)

	force := ticker.NewForce(time.Hour)
	svc, err := blockscheduler.NewScheduler(tip, blockscheduler.WithTicker(force))
	require.NoError(t, err)
	svc.Start()
	t.Cleanup(svc.Stop)

	at, err := svc.AddNow(2)
	require.NoError(t, err)
	require.Equal(t, int64(102), at)
	require.True(t, svc.AfterNow(at))

	var called atomic.Bool
	require.NoError(t, svc.ScheduleTaskOnce(at, func() { called.Store(true) }))
	require.Error(t, svc.ScheduleTaskOnce(at, nil))

	force.Force <- time.Now()
	time.Sleep(100 * time.Millisecond)
	require.False(t, called.Load())

	tip.height.Store(102)
	require.False(t, svc.AfterNow(at))

	force.Force <- time.Now()
	require.Eventually(t, called.Load, time.Second, 10*time.Millisecond)
}

func TestAddNowWithoutTip(t *testing.T) {
	tip := &mockTip{err: fmt.Errorf("connection refused")}
	svc, err := blockscheduler.NewScheduler(tip)
	require.NoError(t, err)

	at, err := svc.AddNow(2)
	require.ErrorContains(t, err, "connection refused")
	require.Zero(t, at)
	require.False(t, svc.AfterNow(2))
}

func TestNewScheduler(t *testing.T) {
	svc, err := blockscheduler.NewScheduler(nil)
	require.Error(t, err)
	require.Nil(t, svc)
}
