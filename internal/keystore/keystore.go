// Package keystore persists API keys and connector tokens in a JSON
// file with values encrypted at rest (AES-GCM). It replaces the secure
// storage layer a mobile platform would provide.
package keystore

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Well-known credential names.
const (
	KeyOpenAIAPIKey = "openai_api_key"
	KeyGitHubToken  = "github_token"
)

// Store is an encrypted name/value credential store with an in-memory
// cache. It is safe for concurrent use.
type Store struct {
	path   string
	cipher *aesgcm

	mu     sync.RWMutex
	values map[string]string
}

// Open loads (or initializes) the store at path using the given 32-byte
// key. A missing file yields an empty store; a present file must
// decrypt cleanly.
func Open(path string, key []byte) (*Store, error) {
	c, err := newAESGCM(key)
	if err != nil {
		return nil, err
	}

	s := &Store{
		path:   path,
		cipher: c,
		values: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	var sealed map[string]string
	if err := json.Unmarshal(data, &sealed); err != nil {
		return nil, fmt.Errorf("keystore file is corrupt: %w", err)
	}

	for name, encoded := range sealed {
		blob, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("keystore entry %q is corrupt: %w", name, err)
		}
		plain, err := s.cipher.open(blob)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt keystore entry %q: %w", name, err)
		}
		s.values[name] = string(plain)
	}

	return s, nil
}

// MachineKey reads the 32-byte store key from path, generating and
// persisting one (0600) on first use.
func MachineKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		key, err := base64.StdEncoding.DecodeString(string(data))
		if err != nil {
			return nil, fmt.Errorf("key file is corrupt: %w", err)
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(base64.StdEncoding.EncodeToString(key)), 0o600); err != nil {
		return nil, err
	}
	return key, nil
}

// Get returns a stored value.
func (s *Store) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

// APIKey returns the stored OpenAI API key, or "" when unset.
func (s *Store) APIKey() string {
	v, _ := s.Get(KeyOpenAIAPIKey)
	return v
}

// Set stores a value and persists the file.
func (s *Store) Set(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
	return s.persist()
}

// Delete removes a value and persists the file.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, name)
	return s.persist()
}

// persist writes all entries, sealed, to disk. Caller holds the lock.
func (s *Store) persist() error {
	sealed := make(map[string]string, len(s.values))
	for name, value := range s.values {
		blob, err := s.cipher.seal([]byte(value))
		if err != nil {
			return err
		}
		sealed[name] = base64.StdEncoding.EncodeToString(blob)
	}

	data, err := json.MarshalIndent(sealed, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
