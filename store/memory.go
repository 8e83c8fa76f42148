package store

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	object  any
	expires time.Time // zero means no expiry
}

func (e *entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && e.expires.Before(now)
}

type memoryStore struct {
	ctx       context.Context
	cancel    context.CancelFunc
	entries   map[string]*entry
	tagged    map[string]map[string]struct{} // tag -> keys written under it
	mutex     sync.Mutex
	waitGroup sync.WaitGroup
	once      sync.Once
	cfg       config
}

var _ Store = (*memoryStore)(nil)
var _ TagStore = (*memoryStore)(nil)

// NewMemory returns an in-process Store backed by a map. It implements
// [TagStore]: entries written through a Tags view carry a native tag index,
// so tag flushes need no application-level key tracking. Expired entries are
// cleaned up by a background goroutine at the configured interval.
func NewMemory(parent context.Context, opts ...Option) Store {
	cfg := applyOptions(opts)
	ctx, cancel := context.WithCancel(parent)
	s := &memoryStore{
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]*entry),
		tagged:  make(map[string]map[string]struct{}),
		cfg:     cfg,
	}
	s.waitGroup.Add(1)
	go s.run()
	return s
}

func (s *memoryStore) Get(_ context.Context, key string) (bool, any, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return false, nil, nil
	}
	if e.expired(time.Now()) {
		delete(s.entries, key)
		return false, nil, nil
	}
	return true, e.object, nil
}

func (s *memoryStore) Set(_ context.Context, key string, val any, ttl time.Duration) error {
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	s.mutex.Lock()
	s.entries[key] = &entry{object: val, expires: expires}
	s.mutex.Unlock()
	return nil
}

func (s *memoryStore) Has(_ context.Context, key string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	if e.expired(time.Now()) {
		delete(s.entries, key)
		return false, nil
	}
	return true, nil
}

func (s *memoryStore) Forget(_ context.Context, key string) (bool, error) {
	s.mutex.Lock()
	_, ok := s.entries[key]
	if ok {
		delete(s.entries, key)
	}
	s.mutex.Unlock()
	return ok, nil
}

func (s *memoryStore) DeleteMany(_ context.Context, keys []string) error {
	s.mutex.Lock()
	for _, key := range keys {
		delete(s.entries, key)
	}
	s.mutex.Unlock()
	return nil
}

func (s *memoryStore) Remember(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) (any, error) {
	found, val, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if found {
		return val, nil
	}
	result, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Set(ctx, key, result, ttl); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *memoryStore) Close() error {
	s.once.Do(func() {
		s.cancel()
		s.waitGroup.Wait()
	})
	return nil
}

// Tags returns a view of the store scoped to the given tag. Entries
// remembered through the view are indexed under the tag and removed
// together by Flush.
func (s *memoryStore) Tags(tag string) Scoped {
	return &memoryScope{store: s, tag: tag}
}

func (s *memoryStore) run() {
	defer s.waitGroup.Done()
	ticker := time.NewTicker(s.cfg.expiryCheck)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			s.mutex.Lock()
			for key, e := range s.entries {
				if e.expired(now) {
					delete(s.entries, key)
				}
			}
			s.mutex.Unlock()
		}
	}
}

type memoryScope struct {
	store *memoryStore
	tag   string
}

var _ Scoped = (*memoryScope)(nil)

func (m *memoryScope) Remember(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) (any, error) {
	val, err := m.store.Remember(ctx, key, ttl, compute)
	if err != nil {
		return nil, err
	}
	m.store.mutex.Lock()
	keys, ok := m.store.tagged[m.tag]
	if !ok {
		keys = make(map[string]struct{})
		m.store.tagged[m.tag] = keys
	}
	keys[key] = struct{}{}
	m.store.mutex.Unlock()
	return val, nil
}

func (m *memoryScope) Flush(_ context.Context) (bool, error) {
	m.store.mutex.Lock()
	for key := range m.store.tagged[m.tag] {
		delete(m.store.entries, key)
	}
	delete(m.store.tagged, m.tag)
	m.store.mutex.Unlock()
	return true, nil
}
