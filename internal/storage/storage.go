// Package storage implements the object storage gateway that holds
// transaction attachments. Blobs are addressed by a key derived from the
// public URL, so URL building and KeyFromURL must stay in lockstep.
package storage

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"fintrack/internal/models"
)

// Object is a payload about to be uploaded.
type Object struct {
	Payload      []byte
	OriginalName string
	ContentType  string
}

// Gateway stores attachment blobs.
type Gateway interface {
	// Upload stores the payload under a freshly generated key and returns the
	// descriptor pointing at its public URL.
	Upload(ctx context.Context, obj Object) (models.Attachment, error)
	// Delete removes the blob stored under key.
	Delete(ctx context.Context, key string) error
	// KeyFromURL derives the storage key from a URL returned by Upload.
	KeyFromURL(rawURL string) string
}

// ClassifyContentType maps a MIME type onto the attachment kind. Only images
// and PDFs are ever accepted, so everything that is not an image is a PDF.
func ClassifyContentType(contentType string) models.AttachmentKind {
	if strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return models.AttachmentKindImage
	}
	return models.AttachmentKindPDF
}

// IsAllowedContentType reports whether the MIME type is an image or a PDF.
func IsAllowedContentType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return strings.HasPrefix(ct, "image/") || ct == "application/pdf"
}

// GenerateKey builds "{unix-millis}-{sanitized-name}".
func GenerateKey(now time.Time, originalName string) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + SanitizeName(originalName)
}

// SanitizeName drops any directory part, collapses whitespace runs into a
// single hyphen and replaces characters outside letters, digits, '.', '_'
// and '-' with a hyphen.
func SanitizeName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Join(strings.Fields(name), "-")

	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}

	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "document"
	}
	return out
}

// PublicURL returns "{base}/{bucket}/{escaped key}".
func PublicURL(baseURL, bucket, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + bucket + "/" + url.PathEscape(key)
}

// KeyFromURL returns the unescaped last path segment of rawURL.
func KeyFromURL(rawURL string) string {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.EscapedPath()
	}
	segment := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		segment = path[i+1:]
	}
	if key, err := url.PathUnescape(segment); err == nil {
		return key
	}
	return segment
}
