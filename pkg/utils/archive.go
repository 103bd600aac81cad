package utils

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"
)

type archiveEntry struct {
	name string
	data []byte
}

// ArchiveBuilder assembles a ZIP archive in memory. Adding a name that is
// already present replaces the earlier bytes but keeps the earlier position,
// so the last write wins.
type ArchiveBuilder struct {
	entries  []archiveEntry
	index    map[string]int
	modified time.Time
	method   uint16
}

func NewArchiveBuilder(modified time.Time) *ArchiveBuilder {
	return &ArchiveBuilder{
		index:    make(map[string]int),
		modified: modified,
		method:   zip.Deflate,
	}
}

// NewStoredArchiveBuilder builds archives without compression. It is used
// for the outer archive whose entries are already compressed ZIPs.
func NewStoredArchiveBuilder(modified time.Time) *ArchiveBuilder {
	b := NewArchiveBuilder(modified)
	b.method = zip.Store
	return b
}

// Add stores data under name and reports whether it replaced an entry.
func (b *ArchiveBuilder) Add(name string, data []byte) bool {
	if i, ok := b.index[name]; ok {
		b.entries[i].data = data
		return true
	}
	b.index[name] = len(b.entries)
	b.entries = append(b.entries, archiveEntry{name: name, data: data})
	return false
}

func (b *ArchiveBuilder) Len() int {
	return len(b.entries)
}

// Bytes writes every entry in insertion order and returns the archive.
func (b *ArchiveBuilder) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)

	for _, entry := range b.entries {
		header := &zip.FileHeader{
			Name:     entry.name,
			Method:   b.method,
			Modified: b.modified,
		}
		writer, err := zipWriter.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s to archive: %w", entry.name, err)
		}
		if _, err := writer.Write(entry.data); err != nil {
			return nil, fmt.Errorf("failed to write %s to archive: %w", entry.name, err)
		}
	}

	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateArchiveName returns the download file name for t, in UTC.
func GenerateArchiveName(t time.Time) string {
	return t.UTC().Format("20060102150405") + ".zip"
}
