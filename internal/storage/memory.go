package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const memoryURLPrefix = "memory://blobs/"

// MemoryStorage is an in-process Gateway for tests and local runs. It records
// every delete attempt and can be told to fail specific calls.
type MemoryStorage struct {
	mu sync.Mutex

	objects  map[string]*File
	deletes  []string
	uploads  int
	failUp   map[string]error
	failDel  map[string]error
	upDelay  time.Duration
	sequence int
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		objects: make(map[string]*File),
		failUp:  make(map[string]error),
		failDel: make(map[string]error),
	}
}

func (m *MemoryStorage) Upload(ctx context.Context, file *File) (string, error) {
	if file == nil {
		return "", nil
	}

	m.mu.Lock()
	delay := m.upDelay
	failure := m.failUp[file.Field]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", uploadError(ctx.Err(), file)
		}
	}

	if failure != nil {
		return "", uploadError(failure, file)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.uploads++
	m.sequence++
	url := fmt.Sprintf("%s%s/%d-%s", memoryURLPrefix, file.Field, m.sequence, file.Filename)
	m.objects[url] = file
	return url, nil
}

func (m *MemoryStorage) Delete(_ context.Context, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.deletes = append(m.deletes, url)
	if err := m.failDel[url]; err != nil {
		return deleteError(err, url)
	}

	delete(m.objects, url)
	return nil
}

// Put seeds an object as if it had been uploaded earlier.
func (m *MemoryStorage) Put(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[url] = &File{Filename: url}
}

func (m *MemoryStorage) Has(url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[url]
	return ok
}

// Deleted lists every delete attempt in call order, failed ones included.
func (m *MemoryStorage) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deletes...)
}

func (m *MemoryStorage) Uploads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploads
}

func (m *MemoryStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// FailUploads makes every upload for the multipart field fail with err.
func (m *MemoryStorage) FailUploads(field string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failUp[field] = err
}

// FailDelete makes deletes of url fail with err.
func (m *MemoryStorage) FailDelete(url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failDel[url] = err
}

// SlowUploads delays every upload by d, honouring context cancellation.
func (m *MemoryStorage) SlowUploads(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upDelay = d
}
