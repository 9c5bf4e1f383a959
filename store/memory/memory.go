// Package memory implements an in-process content store backend: a
// mutex-guarded map, with no persistence across restarts. It is the
// zero-configuration default, playing the same "no external service
// required" role the teacher's in-memory tracker backends play.
package memory

import (
	"context"
	"sync"

	"github.com/brindle-bt/brindle/errors"
	"github.com/brindle-bt/brindle/store"
)

func init() {
	store.Register("memory", driver{})
}

type driver struct{}

func (driver) New(cfg *store.DriverConfig) (store.Store, error) {
	return &Store{blobs: make(map[string][]byte)}, nil
}

// Store is a mutex-guarded, content-addressed byte-blob store held entirely
// in process memory.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func (s *Store) Put(ctx context.Context, b []byte) (string, error) {
	digest := store.Address(b)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[digest]; !ok {
		cp := make([]byte, len(b))
		copy(cp, b)
		s.blobs[digest] = cp
	}
	return digest, nil
}

func (s *Store) Get(ctx context.Context, digest string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[digest]
	if !ok {
		return nil, errors.NewNotFound("store: no blob at digest " + digest)
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp, nil
}

func (s *Store) Has(ctx context.Context, digest string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[digest]
	return ok, nil
}

func (s *Store) Delete(ctx context.Context, digest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, digest)
	return nil
}

func (s *Store) Close() error {
	return nil
}
