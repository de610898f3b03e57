package gencommon

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const (
	cacheFileName = ".itrunner_cache.json"
	cacheVersion  = "1.0"
)

// GenerationCache tracks checksums of generated files so unchanged output is
// not rewritten.
type GenerationCache struct {
	Version string `json:"version"`

	SchemaChecksum string `json:"schema_checksum"`

	// generated file (relative to the output dir) -> hash
	GeneratedFileChecksums map[string]string `json:"generated_file_checksums"`

	LastGeneration time.Time `json:"last_generation"`

	dir string
	mu  sync.RWMutex
}

// NewGenerationCache creates a cache stored in dir, loading any existing one.
func NewGenerationCache(dir string) *GenerationCache {
	cache := &GenerationCache{
		Version:                cacheVersion,
		GeneratedFileChecksums: make(map[string]string),
		dir:                    dir,
	}

	_ = cache.Load()
	return cache
}

// ComputeFileChecksum computes SHA256 hash of a file
func ComputeFileChecksum(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

func ComputeChecksum(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// ComputeSchemaChecksum hashes the schema files together with their names
// and any extra settings that shape the generated output.
func ComputeSchemaChecksum(files []string, extra ...string) (string, error) {
	hash := sha256.New()
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		hash.Write(content)
		hash.Write([]byte(filepath.Base(file)))
	}
	for _, e := range extra {
		hash.Write([]byte{0})
		hash.Write([]byte(e))
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

// Unchanged reports whether name already holds content both according to
// the cache and on disk, so a manual edit still triggers a rewrite.
func (c *GenerationCache) Unchanged(name string, content []byte) bool {
	c.mu.RLock()
	cached, ok := c.GeneratedFileChecksums[name]
	c.mu.RUnlock()

	want := ComputeChecksum(content)
	if !ok || cached != want {
		return false
	}
	onDisk, err := ComputeFileChecksum(filepath.Join(c.dir, name))
	return err == nil && onDisk == want
}

func (c *GenerationCache) UpdateGeneratedFile(name string, content []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GeneratedFileChecksums[name] = ComputeChecksum(content)
}

// Forget drops name from the cache.
func (c *GenerationCache) Forget(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.GeneratedFileChecksums, name)
}

// GeneratedFiles returns the cached file names, sorted.
func (c *GenerationCache) GeneratedFiles() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.GeneratedFileChecksums))
	for name := range c.GeneratedFileChecksums {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UpToDate reports whether at least one file is cached and every cached
// file is still on disk with its recorded content.
func (c *GenerationCache) UpToDate() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.GeneratedFileChecksums) == 0 {
		return false
	}
	for name, want := range c.GeneratedFileChecksums {
		onDisk, err := ComputeFileChecksum(filepath.Join(c.dir, name))
		if err != nil || onDisk != want {
			return false
		}
	}
	return true
}

// SchemaChanged reports whether hash differs from the last recorded one.
func (c *GenerationCache) SchemaChanged(hash string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.SchemaChecksum != hash
}

func (c *GenerationCache) UpdateSchemaChecksum(hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SchemaChecksum = hash
}

// MarkGeneration updates the last generation timestamp
func (c *GenerationCache) MarkGeneration() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.LastGeneration = time.Now()
}

// Save persists the cache to disk
func (c *GenerationCache) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(c.dir, cacheFileName), data, 0644)
}

// Load reads the cache from disk
func (c *GenerationCache) Load() error {
	data, err := os.ReadFile(filepath.Join(c.dir, cacheFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := json.Unmarshal(data, c); err != nil {
		return err
	}

	if c.Version != cacheVersion || c.GeneratedFileChecksums == nil {
		c.GeneratedFileChecksums = make(map[string]string)
		c.SchemaChecksum = ""
		c.Version = cacheVersion
	}

	return nil
}

// Clear removes all cache data
func (c *GenerationCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.SchemaChecksum = ""
	c.GeneratedFileChecksums = make(map[string]string)
	c.LastGeneration = time.Time{}
}
