package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Cache stores one raw CSV file per dataset plus a metadata file that
// records where and when each dataset was fetched. The vintage matters:
// source revisions between fetches move the estimate, so every report
// names the vintage its numbers came from.
type Cache struct {
	dir string
}

// Metadata describes a cached dataset's provenance.
type Metadata struct {
	Source      string    `json:"source"`
	DatasetID   string    `json:"dataset_id,omitempty"`
	Version     string    `json:"version,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

const metadataFile = "metadata.json"

func New(dir string) *Cache {
	return &Cache{dir: dir}
}

func (c *Cache) Path(dataset string) string {
	return filepath.Join(c.dir, dataset+".csv")
}

func (c *Cache) Has(dataset string) bool {
	_, err := os.Stat(c.Path(dataset))
	return err == nil
}

// Put writes the dataset payload and records its provenance.
func (c *Cache) Put(dataset string, data []byte, meta Metadata) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}
	if err := os.WriteFile(c.Path(dataset), data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file for %s: %w", dataset, err)
	}

	meta.LastUpdated = time.Now().UTC()
	return c.setMetadata(dataset, meta)
}

func (c *Cache) Get(dataset string) ([]byte, error) {
	data, err := os.ReadFile(c.Path(dataset))
	if err != nil {
		return nil, fmt.Errorf("failed to read cached %s: %w", dataset, err)
	}
	return data, nil
}

// GetMetadata returns provenance for one dataset, or ok=false when the
// dataset was never recorded.
func (c *Cache) GetMetadata(dataset string) (Metadata, bool) {
	all, err := c.readMetadata()
	if err != nil {
		return Metadata{}, false
	}
	meta, ok := all[dataset]
	return meta, ok
}

// AllMetadata returns provenance for every recorded dataset.
func (c *Cache) AllMetadata() map[string]Metadata {
	all, err := c.readMetadata()
	if err != nil {
		return map[string]Metadata{}
	}
	return all
}

// Invalidate removes one dataset, or the entire cache when dataset is "".
func (c *Cache) Invalidate(dataset string) error {
	if dataset == "" {
		if err := os.RemoveAll(c.dir); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		return nil
	}

	if err := os.Remove(c.Path(dataset)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cached %s: %w", dataset, err)
	}

	all, err := c.readMetadata()
	if err != nil {
		return nil
	}
	delete(all, dataset)
	return c.writeMetadata(all)
}

// List returns the names of all cached datasets.
func (c *Cache) List() []string {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil
	}

	var datasets []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".csv") {
			datasets = append(datasets, strings.TrimSuffix(name, ".csv"))
		}
	}
	sort.Strings(datasets)
	return datasets
}

func (c *Cache) setMetadata(dataset string, meta Metadata) error {
	all, err := c.readMetadata()
	if err != nil {
		all = map[string]Metadata{}
	}
	all[dataset] = meta
	return c.writeMetadata(all)
}

func (c *Cache) readMetadata() (map[string]Metadata, error) {
	data, err := os.ReadFile(filepath.Join(c.dir, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Metadata{}, nil
		}
		return nil, err
	}

	all := map[string]Metadata{}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("corrupt cache metadata: %w", err)
	}
	return all, nil
}

func (c *Cache) writeMetadata(all map[string]Metadata) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(c.dir, metadataFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write cache metadata: %w", err)
	}
	return nil
}
