package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// UploadTarget is the single object an upload token grants write access to.
type UploadTarget struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// FileRef names one stored object and the entry name it gets in its folder archive.
type FileRef struct {
	Key      string `json:"key"`
	FileName string `json:"fileName"`
}

type Folder struct {
	Name  string
	Files []FileRef
}

type BucketFolders struct {
	Bucket  string
	Folders []Folder
}

// DownloadManifest describes a multi-file download, grouped by bucket then
// folder, in the order the token listed them. On the wire it is
//
//	{"<bucket>": [{"<folder>": [{"key": "...", "fileName": "..."}]}]}
type DownloadManifest struct {
	Buckets []BucketFolders
}

var ErrEmptyManifest = errors.New("manifest lists no files")

// FileCount returns the number of file references across all buckets.
func (m DownloadManifest) FileCount() int {
	n := 0
	for _, b := range m.Buckets {
		for _, f := range b.Folders {
			n += len(f.Files)
		}
	}
	return n
}

func (m DownloadManifest) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range m.Buckets {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(b.Bucket)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteString(":[")
		for j, f := range b.Folders {
			if j > 0 {
				buf.WriteByte(',')
			}
			files := f.Files
			if files == nil {
				files = []FileRef{}
			}
			entry, err := json.Marshal(map[string][]FileRef{f.Name: files})
			if err != nil {
				return nil, err
			}
			buf.Write(entry)
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the claim shape while keeping bucket and folder order.
// A repeated bucket key replaces the earlier entry.
func (m *DownloadManifest) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}

	var buckets []BucketFolders
	index := make(map[string]int)
	for dec.More() {
		bucket, err := readKey(dec)
		if err != nil {
			return fmt.Errorf("manifest: %w", err)
		}
		folders, err := readFolders(dec)
		if err != nil {
			return fmt.Errorf("manifest bucket %q: %w", bucket, err)
		}
		if i, ok := index[bucket]; ok {
			buckets[i].Folders = folders
			continue
		}
		index[bucket] = len(buckets)
		buckets = append(buckets, BucketFolders{Bucket: bucket, Folders: folders})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}

	m.Buckets = buckets
	return nil
}

func readFolders(dec *json.Decoder) ([]Folder, error) {
	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}
	var folders []Folder
	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}
		for dec.More() {
			name, err := readKey(dec)
			if err != nil {
				return nil, err
			}
			var files []FileRef
			if err := dec.Decode(&files); err != nil {
				return nil, fmt.Errorf("folder %q: %w", name, err)
			}
			folders = append(folders, Folder{Name: name, Files: files})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return folders, nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
