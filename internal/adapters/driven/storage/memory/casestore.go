package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
)

// Ensure CaseStore implements the interface.
var _ driven.CaseStore = (*CaseStore)(nil)

// CaseStore is an in-memory implementation of driven.CaseStore.
// Values are stored encoded so callers never share state with the store.
type CaseStore struct {
	mu          sync.RWMutex
	checkpoints map[string][]byte
	artifacts   map[string]map[driven.Artifact][]byte
}

// NewCaseStore creates a new in-memory case store.
func NewCaseStore() *CaseStore {
	return &CaseStore{
		checkpoints: make(map[string][]byte),
		artifacts:   make(map[string]map[driven.Artifact][]byte),
	}
}

// LoadCheckpoint decodes the stored checkpoint field by field.
func (s *CaseStore) LoadCheckpoint(_ context.Context, clientID string) (*domain.Checkpoint, []error, error) {
	s.mu.RLock()
	data, ok := s.checkpoints[clientID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, domain.ErrNoCheckpoint
	}
	return domain.DecodeCheckpoint(data)
}

// SaveCheckpoint replaces the checkpoint for a client.
func (s *CaseStore) SaveCheckpoint(_ context.Context, clientID string, cp *domain.Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[clientID] = data
	return nil
}

// PutRawCheckpoint stores raw checkpoint bytes, bypassing encoding.
func (s *CaseStore) PutRawCheckpoint(clientID string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[clientID] = append([]byte(nil), data...)
}

// SaveArtifact stores a JSON artifact.
func (s *CaseStore) SaveArtifact(_ context.Context, clientID string, name driven.Artifact, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	s.put(clientID, name, data)
	return nil
}

// LoadArtifact decodes a stored artifact into v.
func (s *CaseStore) LoadArtifact(_ context.Context, clientID string, name driven.Artifact, v any) error {
	s.mu.RLock()
	data, ok := s.artifacts[clientID][name]
	s.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}
	return json.Unmarshal(data, v)
}

// SaveText stores a plain text artifact.
func (s *CaseStore) SaveText(_ context.Context, clientID string, name driven.Artifact, content string) error {
	s.put(clientID, name, []byte(content))
	return nil
}

// Text returns a stored text artifact.
func (s *CaseStore) Text(clientID string, name driven.Artifact) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.artifacts[clientID][name]
	return string(data), ok
}

// HasArtifact reports whether an artifact was written.
func (s *CaseStore) HasArtifact(clientID string, name driven.Artifact) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.artifacts[clientID][name]
	return ok
}

// ListCases returns client ids with a checkpoint, sorted.
func (s *CaseStore) ListCases(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.checkpoints))
	for id := range s.checkpoints {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Location returns a pseudo location for the case.
func (s *CaseStore) Location(clientID string) string {
	return "memory://" + clientID
}

func (s *CaseStore) put(clientID string, name driven.Artifact, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.artifacts[clientID] == nil {
		s.artifacts[clientID] = make(map[driven.Artifact][]byte)
	}
	s.artifacts[clientID][name] = data
}
