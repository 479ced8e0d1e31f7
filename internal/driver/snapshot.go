package driver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/text/unicode/norm"

	"coil/internal/mir"
	"coil/internal/source"
	"coil/internal/types"
)

// Current schema version - increment when snapshotPayload format changes.
const SnapshotSchema uint16 = 1

// snapshotPayload is the on-disk image of a MIR module. Front ends write
// it, coil reads it back, lowers, and writes the lowered image with the
// same schema.
type snapshotPayload struct {
	// Schema version for safe invalidation when the format changes.
	Schema uint16

	Files []string
	Types types.Snapshot
	Funcs []*mir.Body
}

// EncodeModule writes a module snapshot to w.
func EncodeModule(w io.Writer, m *mir.Module) error {
	if m == nil {
		return fmt.Errorf("driver: nil module")
	}
	payload := snapshotPayload{
		Schema: SnapshotSchema,
		Files:  m.Files.Export(),
		Types:  m.Types.Export(),
		Funcs:  m.Funcs,
	}
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(&payload); err != nil {
		return fmt.Errorf("driver: encode snapshot: %w", err)
	}
	return nil
}

// DecodeModule reads a module snapshot from r. Function and local names
// are NFC-normalized: they originate from arbitrary front ends and the
// $drop naming convention needs one canonical spelling per function.
func DecodeModule(r io.Reader) (*mir.Module, error) {
	var payload snapshotPayload
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("driver: corrupt snapshot: %w", err)
	}
	if payload.Schema != SnapshotSchema {
		return nil, fmt.Errorf("driver: snapshot schema %d, this build reads %d",
			payload.Schema, SnapshotSchema)
	}

	files, err := source.Import(payload.Files)
	if err != nil {
		return nil, fmt.Errorf("driver: snapshot file table: %w", err)
	}
	interner, err := types.Restore(payload.Types)
	if err != nil {
		return nil, fmt.Errorf("driver: snapshot type table: %w", err)
	}

	m := mir.NewModule()
	m.Files = files
	m.Types = interner
	for _, f := range payload.Funcs {
		if f == nil {
			return nil, fmt.Errorf("driver: snapshot carries a nil body")
		}
		normalizeNames(f)
		if _, err := m.AddFunc(f); err != nil {
			return nil, fmt.Errorf("driver: snapshot: %w", err)
		}
	}
	return m, nil
}

func normalizeNames(f *mir.Body) {
	f.Name = norm.NFC.String(f.Name)
	for i := range f.Locals {
		f.Locals[i].Name = norm.NFC.String(f.Locals[i].Name)
	}
	if f.Coroutine != nil && f.Coroutine.DropShim != nil {
		normalizeNames(f.Coroutine.DropShim)
	}
}

// SaveSnapshot writes a module snapshot to path atomically.
func SaveSnapshot(path string, m *mir.Module) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := EncodeModule(f, m); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), path)
}

// LoadSnapshot reads a module snapshot from path.
func LoadSnapshot(path string) (*mir.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeModule(f)
}
