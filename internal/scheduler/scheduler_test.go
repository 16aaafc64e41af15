package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRegisterValidation(t *testing.T) {
	s := New(zaptest.NewLogger(t))

	noop := func(context.Context) {}

	assert.Error(t, s.Register(Task{Interval: time.Second, Run: noop}), "empty name")
	assert.Error(t, s.Register(Task{Name: "x", Run: noop}), "zero interval")
	assert.Error(t, s.Register(Task{Name: "x", Interval: -time.Second, Run: noop}), "negative interval")
	assert.Error(t, s.Register(Task{Name: "x", Interval: time.Second}), "nil run func")
	assert.NoError(t, s.Register(Task{Name: "x", Interval: time.Second, Run: noop}))
}

func TestStartRequiresTasks(t *testing.T) {
	s := New(zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.Error(t, s.Start(ctx))
}

func TestImmediateTaskFiresAtStartup(t *testing.T) {
	s := New(zaptest.NewLogger(t))

	fired := make(chan struct{})
	var once atomic.Bool
	require.NoError(t, s.Register(Task{
		Name:      "greeter",
		Interval:  time.Hour,
		Immediate: true,
		Run: func(context.Context) {
			if once.CompareAndSwap(false, true) {
				close(fired)
			}
		},
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("immediate task never fired")
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestTickerTaskFiresRepeatedly(t *testing.T) {
	s := New(zaptest.NewLogger(t))

	var count atomic.Int64
	require.NoError(t, s.Register(Task{
		Name:     "ticker",
		Interval: 10 * time.Millisecond,
		Run:      func(context.Context) { count.Add(1) },
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	assert.Eventually(t, func() bool { return count.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestStartWaitsForInFlightInvocation(t *testing.T) {
	s := New(zaptest.NewLogger(t))

	entered := make(chan struct{})
	release := make(chan struct{})
	var once atomic.Bool
	require.NoError(t, s.Register(Task{
		Name:      "slow",
		Interval:  time.Hour,
		Immediate: true,
		Run: func(context.Context) {
			if once.CompareAndSwap(false, true) {
				close(entered)
				<-release
			}
		},
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	<-entered
	cancel()

	select {
	case <-done:
		t.Fatal("Start returned while an invocation was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestPanickingTaskDoesNotStopTicker(t *testing.T) {
	s := New(zaptest.NewLogger(t))

	var count atomic.Int64
	require.NoError(t, s.Register(Task{
		Name:     "flaky",
		Interval: 10 * time.Millisecond,
		Run: func(context.Context) {
			if count.Add(1) == 1 {
				panic("first trigger blows up")
			}
		},
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	assert.Eventually(t, func() bool { return count.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestDoubleStartRejected(t *testing.T) {
	s := New(zaptest.NewLogger(t))
	require.NoError(t, s.Register(Task{Name: "x", Interval: time.Hour, Run: func(context.Context) {}}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.started
	}, time.Second, time.Millisecond)

	require.Error(t, s.Start(ctx))

	cancel()
	<-done
}
