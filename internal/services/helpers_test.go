package services

import (
	"context"
	"sync"

	"fintrack/internal/storage"
)

// recordingReporter collects orphan reports for assertions.
type recordingReporter struct {
	mu    sync.Mutex
	blobs []storage.OrphanedBlob
}

func (r *recordingReporter) ReportOrphan(_ context.Context, blob storage.OrphanedBlob) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blobs = append(r.blobs, blob)
}

func (r *recordingReporter) reports() []storage.OrphanedBlob {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]storage.OrphanedBlob(nil), r.blobs...)
}

func pdfUpload(name string) *FileUpload {
	return &FileUpload{Payload: []byte("%PDF-1.4 test"), OriginalName: name, ContentType: "application/pdf"}
}

func pngUpload(name string) *FileUpload {
	return &FileUpload{Payload: []byte("\x89PNG\r\n\x1a\n"), OriginalName: name, ContentType: "image/png"}
}

func ptr[T any](v T) *T {
	return &v
}
