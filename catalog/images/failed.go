package images

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// FailedSet is the permanent negative cache: image filenames for which every
// URL variant has failed. Entries are appended to a newline-delimited file
// so they survive across runs; the set only shrinks via Clear.
type FailedSet struct {
	mu    sync.Mutex
	path  string
	names map[string]struct{}
}

// LoadFailedSet reads the failure list at path. A missing file is an empty
// set, not an error.
func LoadFailedSet(path string) (*FailedSet, error) {
	names := make(map[string]struct{})

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names[line] = struct{}{}
		}
	}

	return &FailedSet{path: path, names: names}, nil
}

// Has reports whether name is known unresolvable.
func (f *FailedSet) Has(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.names[name]
	return ok
}

// Add records name as permanently failed, appending it to the durable list.
func (f *FailedSet) Add(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.names[name]; ok {
		return nil
	}
	f.names[name] = struct{}{}

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(name + "\n")
	return err
}

// Clear empties the set and removes the durable list. Only an explicit user
// action calls this; nothing else ever removes entries.
func (f *FailedSet) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.names = make(map[string]struct{})
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Len returns the number of known-failed entries.
func (f *FailedSet) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.names)
}
