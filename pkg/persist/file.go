package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend stores one JSON file per record name under Dir.
type FileBackend struct {
	Dir string
}

func (b FileBackend) Get(_ context.Context, name string) ([]byte, bool, error) {
	path, err := b.path(name)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("persist: read %q: %w", name, err)
	}
	return data, true, nil
}

func (b FileBackend) Set(_ context.Context, name string, data []byte) error {
	path, err := b.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("persist: create dir for %q: %w", name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("persist: write %q: %w", name, err)
	}
	return nil
}

func (b FileBackend) Remove(_ context.Context, name string) error {
	path, err := b.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("persist: remove %q: %w", name, err)
	}
	return nil
}

func (b FileBackend) path(name string) (string, error) {
	if b.Dir == "" {
		return "", fmt.Errorf("persist: file backend requires a directory")
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("persist: invalid record name %q", name)
	}
	return filepath.Join(b.Dir, name+".json"), nil
}
