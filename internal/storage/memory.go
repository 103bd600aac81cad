package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	data         []byte
	contentType  string
	lastModified time.Time
	etag         string
}

// MemoryStore is an in-process ObjectStore. Buckets must be created before
// use, mirroring S3's NoSuchBucket behavior.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string]memoryObject
	faults  map[string]error
	calls   int
	now     func() time.Time
}

func NewMemoryStore(buckets ...string) *MemoryStore {
	m := &MemoryStore{
		buckets: make(map[string]map[string]memoryObject),
		faults:  make(map[string]error),
		now:     time.Now,
	}
	for _, b := range buckets {
		m.CreateBucket(b)
	}
	return m
}

func (m *MemoryStore) CreateBucket(bucket string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[bucket]; !ok {
		m.buckets[bucket] = make(map[string]memoryObject)
	}
}

// InjectFault makes every call touching bucket/key fail with err.
// An empty key applies the fault to the whole bucket.
func (m *MemoryStore) InjectFault(bucket, key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults[bucket+"/"+key] = err
}

// Calls returns the number of operations served so far.
func (m *MemoryStore) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

func (m *MemoryStore) fault(op, bucket, key string) error {
	if err, ok := m.faults[bucket+"/"+key]; ok {
		return NewError(op, bucket, key, err)
	}
	if err, ok := m.faults[bucket+"/"]; ok {
		return NewError(op, bucket, key, err)
	}
	return nil
}

func (m *MemoryStore) Put(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return NewError("put", bucket, key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.fault("put", bucket, key); err != nil {
		return err
	}
	objects, ok := m.buckets[bucket]
	if !ok {
		return NewError("put", bucket, key, ErrBucketNotFound)
	}
	sum := md5.Sum(data)
	objects[key] = memoryObject{
		data:         data,
		contentType:  contentType,
		lastModified: m.now().UTC(),
		etag:         `"` + hex.EncodeToString(sum[:]) + `"`,
	}
	return nil
}

func (m *MemoryStore) lookup(op, bucket, key string) (memoryObject, error) {
	m.calls++
	if err := m.fault(op, bucket, key); err != nil {
		return memoryObject{}, err
	}
	objects, ok := m.buckets[bucket]
	if !ok {
		return memoryObject{}, NewError(op, bucket, key, ErrBucketNotFound)
	}
	obj, ok := objects[key]
	if !ok {
		return memoryObject{}, NewError(op, bucket, key, ErrObjectNotFound)
	}
	return obj, nil
}

func (m *MemoryStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, err := m.lookup("get", bucket, key)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(obj.data), nil
}

func (m *MemoryStore) GetRange(ctx context.Context, bucket, key string, start, end uint64) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, err := m.lookup("get_range", bucket, key)
	if err != nil {
		return nil, err
	}
	size := uint64(len(obj.data))
	if start > end || start >= size {
		return nil, NewError("get_range", bucket, key, ErrInvalidRange)
	}
	if end >= size {
		end = size - 1
	}
	return io.NopCloser(bytes.NewReader(bytes.Clone(obj.data[start : end+1]))), nil
}

func (m *MemoryStore) Head(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, err := m.lookup("head", bucket, key)
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Key:          key,
		Size:         int64(len(obj.data)),
		ContentType:  obj.contentType,
		LastModified: obj.lastModified,
		ETag:         obj.etag,
	}, nil
}

func (m *MemoryStore) List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.fault("list", bucket, ""); err != nil {
		return nil, err
	}
	objects, ok := m.buckets[bucket]
	if !ok {
		return nil, NewError("list", bucket, "", ErrBucketNotFound)
	}

	var out []ObjectInfo
	for key, obj := range objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		out = append(out, ObjectInfo{
			Key:          key,
			Size:         int64(len(obj.data)),
			ContentType:  obj.contentType,
			LastModified: obj.lastModified,
			ETag:         obj.etag,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
