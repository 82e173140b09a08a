// Package codec implements the on-disk binary format for a serialized
// Index: a 4-byte little-endian version header followed by an opaque,
// deterministic payload. The read path enforces the version and discards
// (deletes) any file whose header does not match the current version.
package codec

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"os"
	"sort"

	"github.com/amanmcp/amanmcp-flat/internal/amanerrors"
	"github.com/amanmcp/amanmcp-flat/internal/fragment"
)

// CurrentVersion is the only version this codec can read or write. Any
// other header value on disk is treated as incompatible; there is no
// in-place migration path.
const CurrentVersion uint32 = 8

const headerSize = 4

// diskIndex is the gob-serialized payload shape. It mirrors fragment.Index
// but replaces the map with a path-sorted slice so the write path is
// deterministic regardless of Go's randomized map iteration order.
type diskIndex struct {
	Kind             fragment.Kind
	Path             string
	Name             string
	LatestCommitHash string
	IsDirty          bool
	Files            []fragment.File
}

// Write serializes idx to path: a 4-byte version header followed by the
// gob-encoded, path-sorted payload. No trailing metadata.
func Write(path string, idx *fragment.Index) error {
	payload, err := Marshal(idx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return amanerrors.IO("failed to write index file", err).WithDetail("path", path)
	}
	return nil
}

// Marshal produces the full on-disk byte representation without touching
// the filesystem, used directly by golden-file tests.
func Marshal(idx *fragment.Index) ([]byte, error) {
	disk := toDisk(idx)

	var buf bytes.Buffer
	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header, CurrentVersion)
	buf.Write(header)

	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(disk); err != nil {
		return nil, amanerrors.CorruptIndex("failed to encode index payload", err)
	}
	return buf.Bytes(), nil
}

// Read loads and validates the index file at path. If the file is shorter
// than 4 bytes, CorruptIndex is returned. If the header does not equal
// CurrentVersion, the file is deleted (best-effort) and IndexVersionMismatch
// is returned. Any other deserialization failure is CorruptIndex.
func Read(path string) (*fragment.Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, amanerrors.IO("failed to read index file", err).WithDetail("path", path)
	}
	return Unmarshal(path, data)
}

// Unmarshal validates and decodes raw on-disk bytes. path is used only for
// error details and for the version-mismatch delete side effect.
func Unmarshal(path string, data []byte) (*fragment.Index, error) {
	if len(data) < headerSize {
		return nil, amanerrors.CorruptIndex("index file shorter than version header", nil).
			WithDetail("path", path)
	}

	version := binary.LittleEndian.Uint32(data[:headerSize])
	if version != CurrentVersion {
		_ = os.Remove(path) // best-effort; the caller treats this like "no index exists"
		return nil, amanerrors.VersionMismatch(path, version, CurrentVersion)
	}

	var disk diskIndex
	dec := gob.NewDecoder(bytes.NewReader(data[headerSize:]))
	if err := dec.Decode(&disk); err != nil {
		return nil, amanerrors.CorruptIndex("failed to decode index payload", err).
			WithDetail("path", path)
	}

	return fromDisk(&disk), nil
}

func toDisk(idx *fragment.Index) *diskIndex {
	disk := &diskIndex{
		Kind:             idx.Kind,
		Path:             idx.Path,
		Name:             idx.Name,
		LatestCommitHash: idx.LatestCommitHash,
		IsDirty:          idx.IsDirty,
		Files:            make([]fragment.File, 0, len(idx.Files)),
	}
	for _, f := range idx.Files {
		disk.Files = append(disk.Files, *f)
	}
	sort.Slice(disk.Files, func(i, j int) bool {
		return disk.Files[i].Path < disk.Files[j].Path
	})
	return disk
}

func fromDisk(disk *diskIndex) *fragment.Index {
	idx := &fragment.Index{
		Kind:             disk.Kind,
		Path:             disk.Path,
		Name:             disk.Name,
		LatestCommitHash: disk.LatestCommitHash,
		IsDirty:          disk.IsDirty,
		Files:            make(map[string]*fragment.File, len(disk.Files)),
	}
	for i := range disk.Files {
		f := disk.Files[i]
		idx.Files[f.Path] = &f
	}
	return idx
}
