package storage

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"fintrack/internal/models"
)

// ErrObjectNotFound is returned by MemoryGateway.Delete for unknown keys.
var ErrObjectNotFound = errors.New("storage: object not found")

// MemoryGateway keeps blobs in process memory. It backs STORAGE_DRIVER=memory
// for local development and records calls for tests.
type MemoryGateway struct {
	mu      sync.Mutex
	bucket  string
	baseURL string
	now     func() time.Time
	objects map[string]Object
	deleted []string

	// UploadErr and DeleteErr, when set, make the next calls fail.
	UploadErr error
	DeleteErr error
}

// NewMemoryGateway returns an empty in-memory gateway.
func NewMemoryGateway(baseURL, bucket string) *MemoryGateway {
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com"
	}
	if bucket == "" {
		bucket = "fintrack-local"
	}
	return &MemoryGateway{
		bucket:  bucket,
		baseURL: baseURL,
		now:     time.Now,
		objects: make(map[string]Object),
	}
}

// Upload implements Gateway.
func (m *MemoryGateway) Upload(_ context.Context, obj Object) (models.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UploadErr != nil {
		return models.Attachment{}, m.UploadErr
	}

	key := GenerateKey(m.now(), obj.OriginalName)
	// Two uploads of the same name within a millisecond would collide.
	for base, n := key, 1; ; n++ {
		if _, taken := m.objects[key]; !taken {
			break
		}
		key = base + "-" + strconv.Itoa(n)
	}
	m.objects[key] = Object{
		Payload:      append([]byte(nil), obj.Payload...),
		OriginalName: obj.OriginalName,
		ContentType:  obj.ContentType,
	}

	return models.Attachment{
		URL:          PublicURL(m.baseURL, m.bucket, key),
		OriginalName: obj.OriginalName,
		Kind:         ClassifyContentType(obj.ContentType),
	}, nil
}

// Delete implements Gateway. Every attempt is recorded, successful or not.
func (m *MemoryGateway) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleted = append(m.deleted, key)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.objects[key]; !ok {
		return ErrObjectNotFound
	}
	delete(m.objects, key)
	return nil
}

// KeyFromURL implements Gateway.
func (m *MemoryGateway) KeyFromURL(rawURL string) string {
	return KeyFromURL(rawURL)
}

// Has reports whether a blob is stored under key.
func (m *MemoryGateway) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Len returns the number of stored blobs.
func (m *MemoryGateway) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Deleted returns every key passed to Delete, in call order.
func (m *MemoryGateway) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
