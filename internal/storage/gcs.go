package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gcs "google.golang.org/api/storage/v1"

	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// GCSConfig configures the Google Cloud Storage gateway.
type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsJSON string
	CredentialsFile string
	// PublicBaseURL prefixes public object URLs, e.g. https://storage.googleapis.com.
	PublicBaseURL string
}

// GCSGateway stores blobs in a Google Cloud Storage bucket through the JSON API.
type GCSGateway struct {
	svc     *gcs.Service
	bucket  string
	baseURL string
	now     func() time.Time
}

// NewGCSGateway builds a gateway from service-account credentials. Extra
// client options are appended after the credential options.
func NewGCSGateway(ctx context.Context, cfg GCSConfig, opts ...option.ClientOption) (*GCSGateway, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs: bucket name is required")
	}

	var clientOpts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		clientOpts = append(clientOpts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.ProjectID != "" {
		clientOpts = append(clientOpts, option.WithQuotaProject(cfg.ProjectID))
	}
	clientOpts = append(clientOpts, option.WithScopes(gcs.DevstorageReadWriteScope))
	clientOpts = append(clientOpts, opts...)

	svc, err := gcs.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: create service: %w", err)
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com"
	}

	return &GCSGateway{svc: svc, bucket: cfg.Bucket, baseURL: baseURL, now: time.Now}, nil
}

// maxKeyAttempts bounds the suffixed retries after a name collision.
const maxKeyAttempts = 5

// Upload writes the payload under a fresh key, then tries to grant allUsers
// read access. The insert only succeeds when no object has the key yet; a
// collision is retried with a numeric suffix, as MemoryGateway does. A failed
// ACL grant is logged and the URL is still returned.
func (g *GCSGateway) Upload(ctx context.Context, obj Object) (models.Attachment, error) {
	base := GenerateKey(g.now(), obj.OriginalName)
	key := base

	var err error
	for n := 1; ; n++ {
		err = g.insert(ctx, key, obj)
		if err == nil {
			break
		}
		if !isPreconditionFailed(err) || n >= maxKeyAttempts {
			return models.Attachment{}, fmt.Errorf("gcs: upload %q: %w", key, err)
		}
		key = base + "-" + strconv.Itoa(n)
	}

	_, err = g.svc.ObjectAccessControls.Insert(g.bucket, key, &gcs.ObjectAccessControl{
		Entity: "allUsers",
		Role:   "READER",
	}).Context(ctx).Do()
	if err != nil {
		logger.Get().Warnw("could not make object public",
			"bucket", g.bucket,
			"key", key,
			"error", err,
		)
	}

	return models.Attachment{
		URL:          PublicURL(g.baseURL, g.bucket, key),
		OriginalName: obj.OriginalName,
		Kind:         ClassifyContentType(obj.ContentType),
	}, nil
}

// insert creates the object only if key is unused (generation 0).
func (g *GCSGateway) insert(ctx context.Context, key string, obj Object) error {
	_, err := g.svc.Objects.Insert(g.bucket, &gcs.Object{
		Name:        key,
		ContentType: obj.ContentType,
	}).IfGenerationMatch(0).
		Media(bytes.NewReader(obj.Payload), googleapi.ContentType(obj.ContentType)).
		Context(ctx).
		Do()
	return err
}

func isPreconditionFailed(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed
}

// Delete removes the object stored under key.
func (g *GCSGateway) Delete(ctx context.Context, key string) error {
	if err := g.svc.Objects.Delete(g.bucket, key).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gcs: delete %q: %w", key, err)
	}
	return nil
}

// KeyFromURL implements Gateway.
func (g *GCSGateway) KeyFromURL(rawURL string) string {
	return KeyFromURL(rawURL)
}
