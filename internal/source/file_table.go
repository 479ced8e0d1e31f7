package source

import (
	"fmt"
	"path/filepath"

	"fortio.org/safecast"
)

type (
	// FileID uniquely identifies a file within a FileTable.
	FileID uint32
)

// NoFileID is the reserved "no file" slot (FileTable keeps entry 0 empty).
const NoFileID FileID = 0

// FileTable maps file ids to the paths the front end compiled from.
// Module snapshots carry it so spans stay resolvable without the
// original sources on disk.
type FileTable struct {
	paths []string
	index map[string]FileID
}

func NewFileTable() *FileTable {
	return &FileTable{
		paths: []string{""}, // слот 0 зарезервирован под NoFileID
		index: map[string]FileID{},
	}
}

// Add registers a path and returns its id. Re-adding an existing path
// returns the id it already has.
func (t *FileTable) Add(path string) FileID {
	normalized := normalizePath(path)
	if id, ok := t.index[normalized]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(t.paths))
	if err != nil {
		panic(fmt.Errorf("file table overflow: %w", err))
	}
	id := FileID(n)
	t.paths = append(t.paths, normalized)
	t.index[normalized] = id
	return id
}

// Path returns the recorded path, or "" for NoFileID and out-of-range ids.
func (t *FileTable) Path(id FileID) string {
	if int(id) >= len(t.paths) {
		return ""
	}
	return t.paths[id]
}

// Lookup returns the id for a path previously added to the table.
func (t *FileTable) Lookup(path string) (FileID, bool) {
	id, ok := t.index[normalizePath(path)]
	return id, ok
}

// Len counts entries including the reserved slot 0.
func (t *FileTable) Len() int {
	return len(t.paths)
}

// Export returns the path list for snapshot encoding (slot 0 included).
func (t *FileTable) Export() []string {
	out := make([]string, len(t.paths))
	copy(out, t.paths)
	return out
}

// Import rebuilds a table from a snapshot path list.
func Import(paths []string) (*FileTable, error) {
	if len(paths) == 0 || paths[0] != "" {
		return nil, fmt.Errorf("file table: slot 0 must be the empty reserved entry")
	}
	t := NewFileTable()
	for _, p := range paths[1:] {
		t.Add(p)
	}
	if t.Len() != len(paths) {
		return nil, fmt.Errorf("file table: %d paths collapsed to %d entries", len(paths), t.Len())
	}
	return t, nil
}

// Resolve formats a span against the table.
func (t *FileTable) Resolve(s Span) string {
	if !s.Valid() {
		return "<synthesized>"
	}
	p := t.Path(s.File)
	if p == "" {
		return s.String()
	}
	return fmt.Sprintf("%s:%d-%d", p, s.Start, s.End)
}

func normalizePath(p string) string {
	// единый вид в кроссплатформенных дифах
	return filepath.ToSlash(filepath.Clean(p))
}
