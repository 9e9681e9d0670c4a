package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"podknight/internal/services"
)

// Object is a stored blob held by Memory.
type Object struct {
	Data     []byte
	Metadata Metadata
}

// Memory is an in-process Store.
type Memory struct {
	mu      sync.Mutex
	objects map[string]Object
	// FailPut, when set, is returned by every Put.
	FailPut error
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]Object)}
}

func (m *Memory) Put(_ context.Context, bucket, key string, r io.Reader, size int64, meta Metadata) (Location, error) {
	if m.FailPut != nil {
		return Location{}, services.Wrap(services.ErrStorage, "upload", "put", "Object could not be stored", m.FailPut)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Location{}, services.Wrap(services.ErrStorage, "upload", "read", "Object body could not be read", err)
	}
	if size >= 0 && int64(len(data)) != size {
		return Location{}, services.Wrap(services.ErrStorage, "upload", "put",
			fmt.Sprintf("short body: got %d bytes, want %d", len(data), size), nil)
	}
	copied := make(Metadata, len(meta))
	for k, v := range meta {
		copied[k] = v
	}
	m.mu.Lock()
	if m.objects == nil {
		m.objects = make(map[string]Object)
	}
	m.objects[bucket+"/"+key] = Object{Data: data, Metadata: copied}
	m.mu.Unlock()
	return Location{Bucket: bucket, Key: key}, nil
}

func (m *Memory) List(_ context.Context, bucket, prefix string, sample int) (Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	full := bucket + "/" + prefix
	for k := range m.objects {
		if strings.HasPrefix(k, full) {
			keys = append(keys, strings.TrimPrefix(k, bucket+"/"))
		}
	}
	sort.Strings(keys)
	listing := Listing{Count: len(keys)}
	if sample > len(keys) {
		sample = len(keys)
	}
	if sample > 0 {
		listing.Sample = keys[:sample]
	}
	return listing, nil
}

func (m *Memory) Exists(_ context.Context, bucket, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[bucket+"/"+key]
	return ok, nil
}

// Get returns a stored object.
func (m *Memory) Get(bucket, key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[bucket+"/"+key]
	return obj, ok
}
