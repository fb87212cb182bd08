package inmemorylivestore

import (
	"context"
	"sync"

	"github.com/Bedrock-Technology/uniBTC/internal/core/ports"
)

type liveStore struct {
	claimGuards ports.ClaimGuardStore
	quotaCache  ports.QuotaCacheStore
}

func NewLiveStore() ports.LiveStore {
	return &liveStore{
		claimGuards: newClaimGuardStore(),
		quotaCache:  newQuotaCacheStore(),
	}
}

func (s *liveStore) ClaimGuards() ports.ClaimGuardStore {
	return s.claimGuards
}

func (s *liveStore) QuotaCache() ports.QuotaCacheStore {
	return s.quotaCache
}

type claimGuardStore struct {
	lock   *sync.Mutex
	guards map[string]chan struct{}
}

func newClaimGuardStore() ports.ClaimGuardStore {
	return &claimGuardStore{
		lock:   &sync.Mutex{},
		guards: make(map[string]chan struct{}),
	}
}

func (s *claimGuardStore) Acquire(
	ctx context.Context, recipient string,
) (func(), error) {
	for {
		s.lock.Lock()
		waitCh, held := s.guards[recipient]
		if !held {
			s.guards[recipient] = make(chan struct{})
			s.lock.Unlock()
			return func() { s.release(recipient) }, nil
		}
		s.lock.Unlock()

		// the channel closes when the current holder releases
		select {
		case <-waitCh:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (s *claimGuardStore) release(recipient string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if waitCh, ok := s.guards[recipient]; ok {
		delete(s.guards, recipient)
		close(waitCh)
	}
}

type quotaCacheStore struct {
	lock   *sync.RWMutex
	quotas map[string]uint64
}

func newQuotaCacheStore() ports.QuotaCacheStore {
	return &quotaCacheStore{
		lock:   &sync.RWMutex{},
		quotas: make(map[string]uint64),
	}
}

func (s *quotaCacheStore) Get(_ context.Context, token string) (uint64, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	available, ok := s.quotas[token]
	return available, ok
}

func (s *quotaCacheStore) Set(_ context.Context, token string, available uint64) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.quotas[token] = available
	return nil
}

func (s *quotaCacheStore) Delete(_ context.Context, token string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.quotas, token)
	return nil
}
