package service

import (
	"context"
	"sync"
	"time"
)

// ValueCacheStore is a namespaced string cache shared by the role resolver
// ("role" namespace) and the dispatcher's branding lookup ("branding"). A
// miss and an absent backend look the same to callers: (,"", false, nil).
type ValueCacheStore interface {
	Get(ctx context.Context, namespace, key string) (string, bool, error)
	Set(ctx context.Context, namespace, key, value string, ttl time.Duration) error
	InvalidateNamespace(ctx context.Context, namespace string) error
}

type NoopValueCacheStore struct{}

func NewNoopValueCacheStore() *NoopValueCacheStore {
	return &NoopValueCacheStore{}
}

func (s *NoopValueCacheStore) Get(context.Context, string, string) (string, bool, error) {
	return "", false, nil
}

func (s *NoopValueCacheStore) Set(context.Context, string, string, string, time.Duration) error {
	return nil
}

func (s *NoopValueCacheStore) InvalidateNamespace(context.Context, string) error {
	return nil
}

type cachedValue struct {
	value     string
	expiresAt time.Time
}

type InMemoryValueCacheStore struct {
	mu    sync.RWMutex
	store map[string]map[string]cachedValue
}

func NewInMemoryValueCacheStore() *InMemoryValueCacheStore {
	return &InMemoryValueCacheStore{
		store: make(map[string]map[string]cachedValue),
	}
}

func (s *InMemoryValueCacheStore) Get(_ context.Context, namespace, key string) (string, bool, error) {
	now := time.Now().UTC()
	s.mu.RLock()
	ns, ok := s.store[namespace]
	if !ok {
		s.mu.RUnlock()
		return "", false, nil
	}
	entry, ok := ns[key]
	s.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if now.After(entry.expiresAt) {
		s.mu.Lock()
		if ns2, ok2 := s.store[namespace]; ok2 {
			delete(ns2, key)
			if len(ns2) == 0 {
				delete(s.store, namespace)
			}
		}
		s.mu.Unlock()
		return "", false, nil
	}
	return entry.value, true, nil
}

func (s *InMemoryValueCacheStore) Set(_ context.Context, namespace, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.store[namespace]
	if !ok {
		ns = make(map[string]cachedValue)
		s.store[namespace] = ns
	}
	ns[key] = cachedValue{value: value, expiresAt: time.Now().UTC().Add(ttl)}
	return nil
}

func (s *InMemoryValueCacheStore) InvalidateNamespace(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, namespace)
	return nil
}
