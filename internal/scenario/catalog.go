package scenario

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Source records where a definition came from
type Source string

const (
	SourceBuiltin Source = "builtin"
	SourceFile    Source = "file"
	SourceConfig  Source = "config"
)

// Entry is a catalogued definition
type Entry struct {
	Definition
	Source Source
	Path   string // file path for SourceFile
}

// Catalog holds named scenarios; later additions override earlier ones
type Catalog struct {
	entries map[string]Entry
	mu      sync.RWMutex
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]Entry)}
}

// Builtin creates a catalog holding the embedded scenarios
func Builtin() (*Catalog, error) {
	c := NewCatalog()

	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		data, err := fs.ReadFile(builtinFS, "builtin/"+entry.Name())
		if err != nil {
			return nil, err
		}
		def, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("builtin %s: %w", entry.Name(), err)
		}
		c.put(Entry{Definition: *def, Source: SourceBuiltin})
	}
	return c, nil
}

// LoadDir adds every YAML scenario in dir. A missing dir is not an error.
func (c *Catalog) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		def, err := LoadFile(path)
		if err != nil {
			return err
		}
		c.put(Entry{Definition: *def, Source: SourceFile, Path: path})
	}
	return nil
}

// Add adds definitions declared in configuration
func (c *Catalog) Add(defs ...Definition) error {
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return err
		}
		c.put(Entry{Definition: def, Source: SourceConfig})
	}
	return nil
}

// Get returns the scenario with the given name
func (c *Catalog) Get(name string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	return e, ok
}

// List returns every scenario sorted by name
func (c *Catalog) List() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

func (c *Catalog) put(e Entry) {
	c.mu.Lock()
	c.entries[e.Name] = e
	c.mu.Unlock()
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
