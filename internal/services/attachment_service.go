package services

import (
	"context"
	"fmt"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/storage"
)

// attachmentService coordinates transaction attachments with the object store.
type attachmentService struct {
	gateway  storage.Gateway
	orphans  OrphanReporter
	maxBytes int64
	now      func() time.Time
}

// NewAttachmentService creates a new AttachmentServicer. A nil reporter
// falls back to logging.
func NewAttachmentService(gateway storage.Gateway, orphans OrphanReporter, maxBytes int64) AttachmentServicer {
	if orphans == nil {
		orphans = NewLogOrphanReporter()
	}
	return &attachmentService{gateway: gateway, orphans: orphans, maxBytes: maxBytes, now: time.Now}
}

// Validate implements AttachmentServicer.
func (s *attachmentService) Validate(file *FileUpload) error {
	if file == nil {
		return nil
	}
	if s.maxBytes > 0 && file.Size() > s.maxBytes {
		return apperrors.WithMessage(apperrors.ErrUnsupportedMediaType,
			fmt.Sprintf("File exceeds the maximum size of %d bytes", s.maxBytes))
	}
	if !storage.IsAllowedContentType(file.ContentType) {
		return apperrors.ErrUnsupportedMediaType
	}
	return nil
}

// Store implements AttachmentServicer.
func (s *attachmentService) Store(ctx context.Context, file *FileUpload) (models.Attachment, error) {
	if err := s.Validate(file); err != nil {
		return models.Attachment{}, err
	}

	att, err := s.gateway.Upload(ctx, storage.Object{
		Payload:      file.Payload,
		OriginalName: file.OriginalName,
		ContentType:  file.ContentType,
	})
	if err != nil {
		return models.Attachment{}, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return att, nil
}

// Release implements AttachmentServicer. Deletion keeps going when the
// request context is cancelled, since the record no longer references the blob.
func (s *attachmentService) Release(ctx context.Context, transactionID string, att models.Attachment) bool {
	if att.IsZero() {
		return true
	}

	ctx = context.WithoutCancel(ctx)
	key := s.gateway.KeyFromURL(att.URL)
	if err := s.gateway.Delete(ctx, key); err != nil {
		logger.Get().Warnw("failed to delete attachment blob",
			"error", err,
			"key", key,
			"transaction_id", transactionID,
		)
		s.orphans.ReportOrphan(ctx, storage.OrphanedBlob{
			Key:           key,
			URL:           att.URL,
			TransactionID: transactionID,
			Reason:        err.Error(),
			OccurredAt:    s.now().UTC(),
		})
		return false
	}
	return true
}

// logOrphanReporter writes orphaned blobs to the log.
type logOrphanReporter struct{}

// NewLogOrphanReporter returns the default OrphanReporter.
func NewLogOrphanReporter() OrphanReporter {
	return logOrphanReporter{}
}

func (logOrphanReporter) ReportOrphan(_ context.Context, blob storage.OrphanedBlob) {
	logger.Get().Errorw("orphaned attachment blob",
		"key", blob.Key,
		"url", blob.URL,
		"transaction_id", blob.TransactionID,
		"reason", blob.Reason,
	)
}

// OrphanReporters fans a report out to several reporters in order.
type OrphanReporters []OrphanReporter

// ReportOrphan implements OrphanReporter.
func (rs OrphanReporters) ReportOrphan(ctx context.Context, blob storage.OrphanedBlob) {
	for _, r := range rs {
		r.ReportOrphan(ctx, blob)
	}
}
