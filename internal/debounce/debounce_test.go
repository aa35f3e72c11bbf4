package debounce

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
)

func TestSequencer(t *testing.T) {
	s := NewSequencer()
	assert.False(t, s.IsLatest("name", 0))

	first := s.Next("name")
	assert.True(t, s.IsLatest("name", first))

	second := s.Next("name")
	assert.Greater(t, second, first)
	assert.False(t, s.IsLatest("name", first))
	assert.True(t, s.IsLatest("name", second))

	other := s.Next("conflicts")
	assert.Greater(t, other, second)
	assert.Equal(t, second, s.Current("name"))

	s.Forget("name", first)
	assert.Equal(t, 2, s.Len())
	s.Forget("name", second)
	assert.Equal(t, 1, s.Len())
	assert.Zero(t, s.Current("name"))

	again := s.Next("name")
	assert.Greater(t, again, second)
	assert.False(t, s.IsLatest("name", first))
}

func TestGroupForgetsSettledKeys(t *testing.T) {
	g := NewGroup(time.Millisecond)
	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("name-%d", i)
		_, err := Do(context.Background(), g, key, func(context.Context) (int, error) { return i, nil })
		require.NoError(t, err)
	}
	assert.Zero(t, g.Sequencer().Len())
}

func TestStaleCallStaysSupersededAfterKeyIsForgotten(t *testing.T) {
	g := NewGroup(time.Millisecond)
	started := make(chan struct{})
	resume := make(chan struct{})

	var wg sync.WaitGroup
	var staleErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, staleErr = Do(context.Background(), g, "k", func(context.Context) (string, error) {
			close(started)
			<-resume
			return "stale", nil
		})
	}()
	<-started

	got, err := Do(context.Background(), g, "k", func(context.Context) (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
	assert.Zero(t, g.Sequencer().Current("k"))

	_, err = Do(context.Background(), g, "k", func(context.Context) (string, error) { return "later", nil })
	require.NoError(t, err)

	close(resume)
	wg.Wait()
	assert.ErrorIs(t, staleErr, appErrors.ErrSuperseded)
	assert.Zero(t, g.Sequencer().Len())
}

func TestNewGroupDefaultsWindow(t *testing.T) {
	assert.Equal(t, DefaultWindow, NewGroup(0).Window())
}

func TestDoRunsAfterWindow(t *testing.T) {
	g := NewGroup(10 * time.Millisecond)
	start := time.Now()
	got, err := Do(context.Background(), g, "k", func(context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestDoSupersedesPendingCall(t *testing.T) {
	g := NewGroup(50 * time.Millisecond)
	var calls int32

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = Do(context.Background(), g, "k", func(context.Context) (int, error) {
			atomic.AddInt32(&calls, 1)
			return 1, nil
		})
	}()
	require.Eventually(t, func() bool { return g.Sequencer().Current("k") == 1 }, time.Second, time.Millisecond)

	got, err := Do(context.Background(), g, "k", func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 2, nil
	})
	wg.Wait()

	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.ErrorIs(t, firstErr, appErrors.ErrSuperseded)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoCancelsInFlightCall(t *testing.T) {
	g := NewGroup(time.Millisecond)
	started := make(chan struct{})
	observed := make(chan error, 1)

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = Do(context.Background(), g, "k", func(ctx context.Context) (string, error) {
			close(started)
			<-ctx.Done()
			observed <- ctx.Err()
			return "stale", nil
		})
	}()
	<-started

	got, err := Do(context.Background(), g, "k", func(context.Context) (string, error) {
		return "fresh", nil
	})
	wg.Wait()

	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
	assert.ErrorIs(t, firstErr, appErrors.ErrSuperseded)
	assert.ErrorIs(t, <-observed, context.Canceled)
}

func TestDoKeysAreIndependent(t *testing.T) {
	g := NewGroup(5 * time.Millisecond)
	var wg sync.WaitGroup
	results := make([]string, 2)
	for i, key := range []string{"a", "b"} {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			v, err := Do(context.Background(), g, key, func(context.Context) (string, error) { return key, nil })
			assert.NoError(t, err)
			results[i] = v
		}(i, key)
	}
	wg.Wait()
	assert.Equal(t, []string{"a", "b"}, results)
}

func TestDoHonoursParentCancellation(t *testing.T) {
	g := NewGroup(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Do(ctx, g, "k", func(context.Context) (int, error) {
		t.Fatal("fn must not run")
		return 0, nil
	})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDoPropagatesFnError(t *testing.T) {
	g := NewGroup(time.Millisecond)
	boom := errors.New("boom")
	_, err := Do(context.Background(), g, "k", func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}
