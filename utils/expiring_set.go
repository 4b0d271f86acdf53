package utils

import (
	"sync"
	"time"
)

// expiringSet is the single-instance fallback used when Redis is not configured.
type expiringSet struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func newExpiringSet() *expiringSet {
	return &expiringSet{entries: map[string]time.Time{}}
}

func (s *expiringSet) add(key string, expiresAt time.Time) {
	s.mu.Lock()
	s.entries[key] = expiresAt
	s.mu.Unlock()
}

// has reports a live entry and drops an expired one.
func (s *expiringSet) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.entries[key]
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		delete(s.entries, key)
		return false
	}
	return true
}

// take removes key and reports whether it was live.
func (s *expiringSet) take(key string) bool {
	s.mu.Lock()
	exp, ok := s.entries[key]
	delete(s.entries, key)
	s.mu.Unlock()
	return ok && time.Now().Before(exp)
}

// sweep removes expired entries and returns how many were dropped.
func (s *expiringSet) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, exp := range s.entries {
		if now.After(exp) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}
