package config

import (
	"context"
	"fmt"
	"sync"
)

// ContextStorage keeps key/value pairs in the current context's storage
// section of the config file. Every change is written through. Keys are
// case-insensitive.
type ContextStorage struct {
	mu  sync.Mutex
	m   *Manager
	ctx *Context
}

// SessionStorage returns storage bound to the current context.
func (m *Manager) SessionStorage() (*ContextStorage, error) {
	c, err := m.CurrentContext()
	if err != nil {
		return nil, err
	}
	if c.Storage == nil {
		c.Storage = make(map[string]string)
	}
	return &ContextStorage{m: m, ctx: c}, nil
}

// Get returns the value under key.
func (s *ContextStorage) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.ctx.Storage[normalize(key)]
	if !ok || v == "" {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

// Set stores value under key and saves the config file. On a failed save the
// previous value is restored.
func (s *ContextStorage) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key = normalize(key)
	prev, had := s.ctx.Storage[key]
	s.ctx.Storage[key] = string(value)
	if err := s.m.Save(); err != nil {
		if had {
			s.ctx.Storage[key] = prev
		} else {
			delete(s.ctx.Storage, key)
		}
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

// Delete removes key and saves the config file.
func (s *ContextStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key = normalize(key)
	if _, ok := s.ctx.Storage[key]; !ok {
		return nil
	}
	delete(s.ctx.Storage, key)
	if err := s.m.Save(); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}
