// Package file persists layout snapshots as JSON files.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/dashgrid/pkg/domain"
)

// Store implements ports.SnapshotStore using the local filesystem.
// It stores one JSON file per layout in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".dashgrid/layouts".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".dashgrid", "layouts")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(layoutID string) (string, error) {
	if layoutID == "" {
		return "", fmt.Errorf("layoutID cannot be empty")
	}
	if strings.ContainsAny(layoutID, `/\`) || layoutID == "." || layoutID == ".." {
		return "", fmt.Errorf("invalid layoutID %q", layoutID)
	}
	return filepath.Join(s.BasePath, layoutID+".json"), nil
}

// Save persists the snapshot to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, layoutID string, snap domain.LayoutSnapshot) error {
	destPath, err := s.path(layoutID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure layout directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	// Same directory as the destination so the rename stays on one filesystem
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+layoutID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // No-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Close before rename (cannot rename open file on Windows)
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing layout file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to layout file: %w", err)
	}
	return nil
}

// Load retrieves a snapshot from its JSON file.
func (s *Store) Load(ctx context.Context, layoutID string) (domain.LayoutSnapshot, error) {
	filePath, err := s.path(layoutID)
	if err != nil {
		return domain.LayoutSnapshot{}, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.LayoutSnapshot{}, domain.ErrLayoutNotFound
		}
		return domain.LayoutSnapshot{}, fmt.Errorf("failed to read layout file: %w", err)
	}

	var snap domain.LayoutSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.LayoutSnapshot{}, fmt.Errorf("failed to unmarshal layout snapshot: %w", err)
	}
	return snap, nil
}

// Delete removes the layout file.
func (s *Store) Delete(ctx context.Context, layoutID string) error {
	filePath, err := s.path(layoutID)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete layout file: %w", err)
	}
	return nil
}

// List returns all stored layout ids.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list layouts: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
