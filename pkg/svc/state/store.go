package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	v1alpha1 "github.com/3bit-techs/vvpctl/pkg/apis/deployment/v1alpha1"
	"github.com/3bit-techs/vvpctl/pkg/svc/tree"
)

const (
	// appliedFileName is the file containing the last applied document.
	appliedFileName = "applied.json"
	// dirPermissions is the permission mode for state directories.
	dirPermissions = 0o700
	// filePermissions is the permission mode for state files.
	filePermissions = 0o600
)

// ErrStateNotFound is returned when nothing was applied for a deployment yet.
var ErrStateNotFound = errors.New("deployment state not found")

// ErrInvalidIdentity is returned when a name or namespace contains path traversal characters.
var ErrInvalidIdentity = errors.New(
	"invalid deployment identity: must not contain path separators or '..'",
)

// Store reads and writes applied documents below Dir.
type Store struct {
	Dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// DefaultDir returns ~/.vvpctl/state.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".vvpctl", "state"), nil
}

func (s *Store) appliedPath(id v1alpha1.Identity) (string, error) {
	for _, part := range []string{id.Namespace, id.Name} {
		if part == "" ||
			strings.Contains(part, "/") ||
			strings.Contains(part, "\\") ||
			strings.Contains(part, "..") {
			return "", fmt.Errorf("%w: %q", ErrInvalidIdentity, id.String())
		}
	}

	return filepath.Join(s.Dir, id.Namespace, id.Name, appliedFileName), nil
}

// SaveApplied persists the document applied for id.
func (s *Store) SaveApplied(id v1alpha1.Identity, doc tree.Tree) error {
	statePath, err := s.appliedPath(id)
	if err != nil {
		return err
	}

	dir := filepath.Dir(statePath)

	err = os.MkdirAll(dir, dirPermissions)
	if err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	data, err := doc.JSON()
	if err != nil {
		return fmt.Errorf("failed to marshal applied document: %w", err)
	}

	// write then rename so a crash never leaves a truncated file behind
	tmp := statePath + ".tmp"

	err = os.WriteFile(tmp, data, filePermissions)
	if err != nil {
		return fmt.Errorf("failed to write deployment state: %w", err)
	}

	err = os.Rename(tmp, statePath)
	if err != nil {
		return fmt.Errorf("failed to replace deployment state: %w", err)
	}

	return nil
}

// LoadApplied returns the document last applied for id.
// Returns ErrStateNotFound if nothing was saved.
func (s *Store) LoadApplied(id v1alpha1.Identity) (tree.Tree, error) {
	statePath, err := s.appliedPath(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(statePath) //nolint:gosec // path is built from a validated identity
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrStateNotFound, id)
		}

		return nil, fmt.Errorf("failed to read deployment state: %w", err)
	}

	doc, err := tree.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal deployment state: %w", err)
	}

	return doc, nil
}

// DeleteApplied removes the saved state for id.
// Returns nil if the state does not exist (idempotent).
func (s *Store) DeleteApplied(id v1alpha1.Identity) error {
	statePath, err := s.appliedPath(id)
	if err != nil {
		return err
	}

	err = os.RemoveAll(filepath.Dir(statePath))
	if err != nil {
		return fmt.Errorf("failed to remove deployment state directory: %w", err)
	}

	return nil
}
