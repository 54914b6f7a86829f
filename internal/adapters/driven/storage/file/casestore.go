// Package file persists KYC cases as a directory tree, one directory per client:
//
//	<root>/<client_id>/checkpoint.json
//	<root>/<client_id>/01_intake/client.json
//	...
//	<root>/<client_id>/05_output/summary.md
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
)

// Ensure CaseStore implements the interface.
var _ driven.CaseStore = (*CaseStore)(nil)

const checkpointFile = "checkpoint.json"

// CaseStore writes checkpoints and stage artifacts beneath a root directory.
type CaseStore struct {
	root string
}

// NewCaseStore creates the root directory if needed.
func NewCaseStore(root string) (*CaseStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("%w: case output directory is empty", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &CaseStore{root: root}, nil
}

// Root returns the output directory.
func (s *CaseStore) Root() string {
	return s.root
}

// LoadCheckpoint reads and decodes checkpoint.json field by field.
func (s *CaseStore) LoadCheckpoint(_ context.Context, clientID string) (*domain.Checkpoint, []error, error) {
	dir, err := s.caseDir(clientID)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, checkpointFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, domain.ErrNoCheckpoint
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read checkpoint: %w", err)
	}
	return domain.DecodeCheckpoint(data)
}

// SaveCheckpoint replaces checkpoint.json atomically.
func (s *CaseStore) SaveCheckpoint(_ context.Context, clientID string, cp *domain.Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	dir, err := s.caseDir(clientID)
	if err != nil {
		return err
	}
	return writeAtomic(filepath.Join(dir, checkpointFile), data)
}

// SaveArtifact writes an indented JSON artifact.
func (s *CaseStore) SaveArtifact(_ context.Context, clientID string, name driven.Artifact, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	path, err := s.artifactPath(clientID, name)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// LoadArtifact decodes an artifact into v.
func (s *CaseStore) LoadArtifact(_ context.Context, clientID string, name driven.Artifact, v any) error {
	path, err := s.artifactPath(clientID, name)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// SaveText writes a plain text artifact.
func (s *CaseStore) SaveText(_ context.Context, clientID string, name driven.Artifact, content string) error {
	path, err := s.artifactPath(clientID, name)
	if err != nil {
		return err
	}
	return writeAtomic(path, []byte(content))
}

// ListCases returns client ids whose directory holds a checkpoint, sorted.
func (s *CaseStore) ListCases(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, entry.Name(), checkpointFile)); err == nil {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Location returns the case directory.
func (s *CaseStore) Location(clientID string) string {
	return filepath.Join(s.root, clientID)
}

// caseDir validates the client id and returns its directory.
// Client ids are derived from names, so a separator or ".." is a bug upstream.
func (s *CaseStore) caseDir(clientID string) (string, error) {
	if clientID == "" || clientID == "." || clientID == ".." ||
		strings.ContainsAny(clientID, `/\`) {
		return "", fmt.Errorf("%w: invalid client id %q", domain.ErrInvalidInput, clientID)
	}
	return filepath.Join(s.root, clientID), nil
}

func (s *CaseStore) artifactPath(clientID string, name driven.Artifact) (string, error) {
	dir, err := s.caseDir(clientID)
	if err != nil {
		return "", err
	}
	rel := filepath.FromSlash(string(name))
	if rel == "" || filepath.IsAbs(rel) || strings.HasPrefix(filepath.Clean(rel), "..") {
		return "", fmt.Errorf("%w: invalid artifact %q", domain.ErrInvalidInput, name)
	}
	return filepath.Join(dir, rel), nil
}

// writeAtomic writes to a temp file in the target directory then renames it
// over the target, so readers never observe a partial file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
