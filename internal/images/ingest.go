// Package images re-hosts externally referenced artwork in the managed store.
package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultTimeout  = 15 * time.Second
	DefaultMaxBytes = 10 << 20
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/avif": ".avif",
}

type Stage string

const (
	StageRequest     Stage = "request"
	StageDownload    Stage = "download"
	StageContentType Stage = "content-type"
	StageUpload      Stage = "upload"
)

// IngestError describes why an image could not be re-hosted.
type IngestError struct {
	Stage Stage
	URL   string
	Err   error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest %s (%s): %v", e.URL, e.Stage, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

// Result is the outcome of EnsureHosted. Exactly one of URL or Err is set.
type Result struct {
	Original string
	URL      string
	Uploaded bool
	Err      error
}

func (r Result) OK() bool { return r.Err == nil }

type Ingester struct {
	store    ObjectStore
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger
}

// NewIngester builds an Ingester. A nil logger falls back to slog.Default.
func NewIngester(store ObjectStore, timeout time.Duration, maxBytes int64, logger *slog.Logger) *Ingester {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{
		store:    store,
		client:   &http.Client{Timeout: timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		maxBytes: maxBytes,
		logger:   logger,
	}
}

func (in *Ingester) Owns(rawURL string) bool {
	return in.store.Owns(rawURL)
}

// EnsureHosted returns rawURL unchanged when it already lives in the store,
// otherwise downloads it and uploads it under folder/<uuid><ext>.
func (in *Ingester) EnsureHosted(ctx context.Context, rawURL, folder string) Result {
	res := Result{Original: rawURL}
	if in.store.Owns(rawURL) {
		res.URL = rawURL
		return res
	}

	data, contentType, err := in.fetch(ctx, rawURL)
	if err != nil {
		res.Err = err
		return res
	}

	key := folder + "/" + uuid.NewString() + extensions[contentType]
	hosted, err := in.store.Put(ctx, key, contentType, data)
	if err != nil {
		res.Err = &IngestError{Stage: StageUpload, URL: rawURL, Err: err}
		return res
	}
	in.logger.Debug("image re-hosted", "source", rawURL, "hosted", hosted, "bytes", len(data))
	res.URL = hosted
	res.Uploaded = true
	return res
}

func (in *Ingester) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, "", &IngestError{Stage: StageRequest, URL: rawURL, Err: errors.New("not an absolute http(s) url")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", &IngestError{Stage: StageRequest, URL: rawURL, Err: err}
	}
	req.Header.Set("Accept", "image/*")

	resp, err := in.client.Do(req)
	if err != nil {
		return nil, "", &IngestError{Stage: StageDownload, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &IngestError{Stage: StageDownload, URL: rawURL, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, in.maxBytes+1))
	if err != nil {
		return nil, "", &IngestError{Stage: StageDownload, URL: rawURL, Err: err}
	}
	if int64(len(data)) > in.maxBytes {
		return nil, "", &IngestError{Stage: StageDownload, URL: rawURL, Err: fmt.Errorf("larger than %d bytes", in.maxBytes)}
	}

	contentType := mediaType(resp.Header.Get("Content-Type"))
	if _, ok := extensions[contentType]; !ok {
		contentType = mediaType(http.DetectContentType(data))
	}
	if _, ok := extensions[contentType]; !ok {
		return nil, "", &IngestError{Stage: StageContentType, URL: rawURL, Err: fmt.Errorf("unsupported content type %q", contentType)}
	}
	return data, contentType, nil
}

func mediaType(header string) string {
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(header))
	}
	return mt
}
