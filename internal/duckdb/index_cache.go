package duckdb

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/inodb/minigfa/internal/gfa"
)

// IndexCache manages gob-serialized graph indexes on disk. Each graph gets
// a snapshot named after its file:
//
//	~/.minigfa/{graph}.index.gob       (serialized segment and path ranges)
//	~/.minigfa/{graph}.index.gob.meta  (graph file fingerprint, strictness)
type IndexCache struct {
	dir string // cache directory (e.g. ~/.minigfa)
}

// NewIndexCache creates an index cache for the given directory.
func NewIndexCache(dir string) *IndexCache {
	return &IndexCache{dir: dir}
}

func (ic *IndexCache) gobPath(graph FileFingerprint) string {
	return filepath.Join(ic.dir, filepath.Base(graph.Path)+".index.gob")
}

func (ic *IndexCache) metaPath(graph FileFingerprint) string {
	return ic.gobPath(graph) + ".meta"
}

// Valid checks whether the cached index matches the current graph file and
// was built with the same strictness.
func (ic *IndexCache) Valid(graph FileFingerprint, strict bool) bool {
	meta, err := ic.readMeta(graph)
	if err != nil {
		return false
	}

	checks := []struct{ key, val string }{
		{"graph_path", graph.Path},
		{"graph_size", graph.sizeString()},
		{"graph_modtime", graph.modTimeString()},
		{"strict", strconv.FormatBool(strict)},
	}

	for _, c := range checks {
		if meta[c.key] != c.val {
			return false
		}
	}

	// Verify gob file exists
	if _, err := os.Stat(ic.gobPath(graph)); err != nil {
		return false
	}
	return true
}

// Load reads the serialized index of graph from disk.
func (ic *IndexCache) Load(graph FileFingerprint) (*gfa.Index, error) {
	f, err := os.Open(ic.gobPath(graph))
	if err != nil {
		return nil, fmt.Errorf("open index cache: %w", err)
	}
	defer f.Close()

	var snap gfa.Snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode index cache: %w", err)
	}
	return gfa.IndexFromSnapshot(snap), nil
}

// Write serializes idx to disk and records the graph fingerprint along with
// whether idx was built in strict mode.
func (ic *IndexCache) Write(idx *gfa.Index, graph FileFingerprint, strict bool) error {
	if err := os.MkdirAll(ic.dir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	path := ic.gobPath(graph)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index cache: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(idx.Snapshot()); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encode index cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close index cache: %w", err)
	}

	return ic.writeMeta(graph, strict)
}

// Clear removes the cached index files of graph.
func (ic *IndexCache) Clear(graph FileFingerprint) {
	os.Remove(ic.gobPath(graph))
	os.Remove(ic.metaPath(graph))
}

func (ic *IndexCache) writeMeta(graph FileFingerprint, strict bool) error {
	lines := []string{
		"graph_path=" + graph.Path,
		"graph_size=" + graph.sizeString(),
		"graph_modtime=" + graph.modTimeString(),
		"strict=" + strconv.FormatBool(strict),
		"created_at=" + time.Now().UTC().Format(time.RFC3339),
		"",
	}
	return os.WriteFile(ic.metaPath(graph), []byte(strings.Join(lines, "\n")), 0644)
}

func (ic *IndexCache) readMeta(graph FileFingerprint) (map[string]string, error) {
	data, err := os.ReadFile(ic.metaPath(graph))
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			meta[k] = v
		}
	}
	return meta, nil
}
