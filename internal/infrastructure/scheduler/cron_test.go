package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronSchedulerRunsOnStart(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("0 0 1 1 *", time.UTC, true)
	fired := make(chan time.Time, 1)

	require.NoError(t, s.Start(context.Background(), func(at time.Time) { fired <- at }))
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	select {
	case at := <-fired:
		assert.Equal(t, time.UTC, at.Location())
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
}

func TestCronSchedulerEveryDescriptor(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("@every 1s", nil, false)
	fired := make(chan struct{}, 4)

	require.NoError(t, s.Start(context.Background(), func(time.Time) { fired <- struct{}{} }))
	defer func() { _ = s.Stop(context.Background()) }()

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not fire")
	}
}

func TestCronSchedulerRejectsBadSpec(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("every tuesday", time.UTC, false)
	err := s.Start(context.Background(), func(time.Time) {})
	assert.Error(t, err)
	assert.NoError(t, s.Stop(context.Background()))
}

func TestCronSchedulerStopsWithContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	s := NewCronScheduler("* * * * *", time.UTC, false)
	require.NoError(t, s.Start(ctx, func(time.Time) {}))

	cancel()
	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.cron == nil
	}, time.Second, 10*time.Millisecond)
}

func TestCronSchedulerNilJob(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("* * * * *", time.UTC, true)
	require.NoError(t, s.Start(context.Background(), nil))
	assert.Nil(t, s.cron)
}

func TestNext(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("0 6 * * *", time.UTC, false)
	next, err := s.Next(time.Date(2025, 5, 1, 7, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 2, 6, 0, 0, 0, time.UTC), next)
}
