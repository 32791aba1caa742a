package apiclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

type renewResult struct {
	token string
	err   error
}

// renewal is one in-flight renewal call and the callers waiting on it. It belongs to the
// session generation that started it.
type renewal struct {
	generation uint64
	waiters    []chan renewResult
}

// session holds the current access token and serializes renewals. While a renewal is in
// flight every caller that needs a fresh token waits on the same outcome. Login and logout
// start a new generation; a renewal started in an older generation never installs its token.
type session struct {
	mu         sync.Mutex
	token      string
	generation uint64
	inflight   *renewal

	renew   func(ctx context.Context) (string, error)
	timeout time.Duration
	logger  *zap.Logger
}

func newSession(renew func(ctx context.Context) (string, error), timeout time.Duration, logger *zap.Logger) *session {
	return &session{renew: renew, timeout: timeout, logger: logger}
}

func (s *session) current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// reset installs token as the start of a new generation. An in-flight renewal is detached
// and its waiters fail with ErrSessionExpired when it completes.
func (s *session) reset(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.generation++
	s.inflight = nil
}

// tokenAfter returns a token to replay a request that was rejected while carrying used. If the
// token has already been replaced since then, the replacement is returned without renewing.
func (s *session) tokenAfter(ctx context.Context, used string) (string, error) {
	s.mu.Lock()
	if s.inflight == nil && s.token != "" && s.token != used {
		token := s.token
		s.mu.Unlock()
		return token, nil
	}

	ch := make(chan renewResult, 1)
	if s.inflight == nil {
		s.inflight = &renewal{generation: s.generation}
		go s.run(s.inflight)
	}
	s.inflight.waiters = append(s.inflight.waiters, ch)
	s.mu.Unlock()

	select {
	case res := <-ch:
		return res.token, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *session) run(r *renewal) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	token, err := s.renew(ctx)
	cancel()

	s.mu.Lock()
	if r.generation != s.generation {
		token = ""
		err = fmt.Errorf("%w: session reset during renewal", ErrSessionExpired)
	} else {
		switch {
		case err == nil:
			s.token = token
		case isSessionExpired(err):
			s.token = ""
		}
		s.inflight = nil
	}
	waiters := r.waiters
	r.waiters = nil
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("session renewal failed", zap.Int("waiters", len(waiters)), zap.Error(err))
	} else {
		s.logger.Debug("session renewed", zap.Int("waiters", len(waiters)))
	}
	for _, ch := range waiters {
		ch <- renewResult{token: token, err: err}
	}
}
