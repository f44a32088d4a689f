package storagefake

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/jrsteele09/rockquest/storage"
)

var _ storage.Uploader = (*MemoryUploader)(nil)

// Object is a stored blob.
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryUploader keeps uploads in memory and serves them from BaseURL.
type MemoryUploader struct {
	BaseURL string

	lock    sync.RWMutex
	objects map[string]Object
	err     error
}

func NewMemoryUploader(baseURL string) *MemoryUploader {
	return &MemoryUploader{
		BaseURL: strings.TrimRight(baseURL, "/"),
		objects: map[string]Object{},
	}
}

// Fail makes every Upload return err until cleared with nil.
func (m *MemoryUploader) Fail(err error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.err = err
}

func (m *MemoryUploader) Upload(ctx context.Context, path string, r io.Reader, _ int64, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.objects[path] = Object{Data: bytes.Clone(data), ContentType: contentType}
	return m.BaseURL + "/" + path, nil
}

// Get returns the object stored under path.
func (m *MemoryUploader) Get(path string) (Object, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	o, ok := m.objects[path]
	return o, ok
}

// Keys lists stored paths in order.
func (m *MemoryUploader) Keys() []string {
	m.lock.RLock()
	defer m.lock.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
