package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielavelez12/goupromo/internal/cart"
)

// FileStore writes one JSON file per cart slot under a data directory.
// Single file per slot, human-readable, portable. An unreadable or
// unparseable payload loads as an empty cart rather than failing the
// session.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Load(ctx context.Context, slot string) ([]cart.LineItem, error) {
	b, err := os.ReadFile(s.path(slot))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var items []cart.LineItem
	if err := json.Unmarshal(b, &items); err != nil {
		// Corrupt or outdated payload: treat as no data. The snapshot
		// carries no version field, so a safe reset is the only option.
		return nil, nil
	}
	return items, nil
}

func (s *FileStore) Save(ctx context.Context, slot string, items []cart.LineItem) error {
	if items == nil {
		items = []cart.LineItem{}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(s.path(slot), b, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(ctx context.Context, slot string) error {
	if err := os.Remove(s.path(slot)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) path(slot string) string {
	return filepath.Join(s.dir, sanitizeSlot(slot)+".json")
}

// sanitizeSlot keeps file names flat: session keys are uuid-like, but a
// hostile path segment must not escape the data dir.
func sanitizeSlot(slot string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, slot)
}
