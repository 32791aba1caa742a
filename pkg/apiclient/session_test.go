package apiclient

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func (s *session) waiting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight == nil {
		return 0
	}
	return len(s.inflight.waiters)
}

func TestSessionReplaysWithNewerTokenWithoutRenewing(t *testing.T) {
	var calls atomic.Int32
	s := newSession(func(context.Context) (string, error) {
		calls.Add(1)
		return "T3", nil
	}, time.Second, zap.NewNop())
	s.reset("T2")

	token, err := s.tokenAfter(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, "T2", token)
	assert.Zero(t, calls.Load())

	token, err = s.tokenAfter(context.Background(), "T2")
	require.NoError(t, err)
	assert.Equal(t, "T3", token)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "T3", s.current())
}

func TestSessionCoalescesWaiters(t *testing.T) {
	const n = 8
	var calls atomic.Int32
	release := make(chan struct{})

	s := newSession(func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "fresh", nil
	}, time.Second, zap.NewNop())
	s.reset("stale")

	var wg sync.WaitGroup
	tokens := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := s.tokenAfter(context.Background(), "stale")
			assert.NoError(t, err)
			tokens[i] = tok
		}(i)
	}

	require.Eventually(t, func() bool { return s.waiting() == n }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, tok := range tokens {
		assert.Equal(t, "fresh", tok)
	}
}

func TestSessionExpiryClearsToken(t *testing.T) {
	s := newSession(func(context.Context) (string, error) {
		return "", ErrSessionExpired
	}, time.Second, zap.NewNop())
	s.reset("T1")

	_, err := s.tokenAfter(context.Background(), "T1")
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Empty(t, s.current())
}

func TestSessionResetDuringRenewalDropsResult(t *testing.T) {
	for _, tc := range []struct {
		name  string
		reset string
	}{
		{name: "logout", reset: ""},
		{name: "login", reset: "L1"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			release := make(chan struct{})
			var calls atomic.Int32
			s := newSession(func(context.Context) (string, error) {
				calls.Add(1)
				<-release
				return "T2", nil
			}, time.Second, zap.NewNop())
			s.reset("T1")

			done := make(chan error, 1)
			go func() {
				_, err := s.tokenAfter(context.Background(), "T1")
				done <- err
			}()
			require.Eventually(t, func() bool { return s.waiting() == 1 }, time.Second, time.Millisecond)

			s.reset(tc.reset)
			close(release)

			assert.ErrorIs(t, <-done, ErrSessionExpired)
			assert.Equal(t, tc.reset, s.current())
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestSessionRenewsAgainAfterReset(t *testing.T) {
	first := make(chan struct{})
	var calls atomic.Int32
	s := newSession(func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			<-first
			return "old", nil
		}
		return "new", nil
	}, time.Second, zap.NewNop())
	s.reset("T1")

	done := make(chan error, 1)
	go func() {
		_, err := s.tokenAfter(context.Background(), "T1")
		done <- err
	}()
	require.Eventually(t, func() bool { return s.waiting() == 1 }, time.Second, time.Millisecond)
	s.reset("")

	token, err := s.tokenAfter(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "new", token)

	close(first)
	assert.ErrorIs(t, <-done, ErrSessionExpired)
	assert.Equal(t, "new", s.current())
	assert.Equal(t, int32(2), calls.Load())
}

func TestSessionTransientFailureKeepsToken(t *testing.T) {
	s := newSession(func(context.Context) (string, error) {
		return "", errors.New("connection reset")
	}, time.Second, zap.NewNop())
	s.reset("T1")

	_, err := s.tokenAfter(context.Background(), "T1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, "T1", s.current())
}

func TestSessionWaiterHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	s := newSession(func(context.Context) (string, error) {
		<-release
		return "late", nil
	}, time.Second, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.tokenAfter(ctx, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
