package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dukex/operion-connections/pkg/persistence"
)

// documents reads and writes JSON documents of one collection directory.
type documents[T any] struct {
	mu  sync.RWMutex
	dir string
}

func newDocuments[T any](root, collection string) *documents[T] {
	return &documents[T]{dir: filepath.Join(root, collection)}
}

func validID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", persistence.ErrInvalidID, id)
	}

	return nil
}

func (d *documents[T]) path(id string) string {
	return filepath.Join(d.dir, id+".json")
}

// read returns fs.ErrNotExist when the document is missing.
func (d *documents[T]) read(id string) (*T, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.readLocked(id)
}

func (d *documents[T]) readLocked(id string) (*T, error) {
	body, err := os.ReadFile(d.path(id))
	if err != nil {
		return nil, err
	}

	var document T

	err = json.Unmarshal(body, &document)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", id, err)
	}

	return &document, nil
}

func (d *documents[T]) all() ([]*T, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	files, err := fs.Glob(os.DirFS(d.dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", d.dir, err)
	}

	sort.Strings(files)

	result := make([]*T, 0, len(files))

	for _, file := range files {
		document, err := d.readLocked(strings.TrimSuffix(file, ".json"))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return nil, err
		}

		result = append(result, document)
	}

	return result, nil
}

func (d *documents[T]) write(id string, document *T) error {
	if err := validID(id); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	err := os.MkdirAll(d.dir, 0750)
	if err != nil {
		return fmt.Errorf("failed to create %s directory: %w", d.dir, err)
	}

	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", id, err)
	}

	return os.WriteFile(d.path(id), data, 0600)
}

// remove returns fs.ErrNotExist when the document is missing.
func (d *documents[T]) remove(id string) error {
	if err := validID(id); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return os.Remove(d.path(id))
}
