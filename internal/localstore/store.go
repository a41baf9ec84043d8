// Package localstore is the client-side persisted state: a keyed JSON store
// backed by a single local file, playing the role browser localStorage plays
// for the web frontend. Well-known keys hold the cart and shipping info.
package localstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Well-known keys.
const (
	KeyCart         = "cart"
	KeyShippingInfo = "shippingInfo"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("localstore: key not found")

// Store is a file-backed keyed JSON store. Safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
	data map[string]json.RawMessage
}

// Open loads the store at path, creating parent directories as needed. A
// missing file starts an empty store.
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		data: make(map[string]json.RawMessage),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Get unmarshals the value stored under key into out. Returns ErrNotFound
// on a miss.
func (s *Store) Get(key string, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.data[key]
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(raw, out)
}

// Set marshals value under key and persists the store.
func (s *Store) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = raw
	return s.flush()
}

// Delete removes key and persists the store. Deleting a missing key is not
// an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flush()
}

// flush writes the store to disk. Caller holds the lock.
func (s *Store) flush() error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, raw, 0o644)
}
