package kvfake

import (
	"sync"

	"github.com/jrsteele09/go-admin-client/kv"
)

var _ kv.Store = (*Store)(nil)

// Store is an in-memory kv.Store with the same commit semantics as kv.FileStore.
type Store struct {
	values  kv.Values
	lock    sync.RWMutex
	failErr error
}

func NewStore() *Store {
	return &Store{values: make(kv.Values)}
}

// FailWrites makes every subsequent Update fail with err. nil restores normal behaviour.
func (s *Store) FailWrites(err error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.failErr = err
}

func (s *Store) View(fn func(v kv.Values)) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	fn(s.values)
}

func (s *Store) Update(fn func(v kv.Values) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	next := s.values.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if s.failErr != nil {
		return s.failErr
	}
	s.values = next
	return nil
}
