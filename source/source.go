package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"log/slog"

	"github.com/c360/schemascope/config"
	"github.com/c360/schemascope/errors"
	"github.com/c360/schemascope/metric"
	"github.com/c360/schemascope/pkg/retry"
)

// MaxSchemaBytes caps the size of a schema document accepted from any
// source. Documents larger than this are rejected rather than truncated.
const MaxSchemaBytes = 5 << 20

// Source provides schema text on demand. Implementations must be safe
// for concurrent use.
type Source interface {
	// Name identifies the source in logs and health reports.
	Name() string

	// Fetch returns the current schema document.
	Fetch(ctx context.Context) (string, error)
}

// Static serves a fixed schema document from memory.
type Static struct {
	sdl string
}

// NewStatic creates a source that always returns the given schema text.
func NewStatic(sdl string) (*Static, error) {
	if strings.TrimSpace(sdl) == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "StaticSource", "NewStatic", "validate schema text")
	}
	return &Static{sdl: sdl}, nil
}

// Name implements Source
func (s *Static) Name() string { return "static" }

// Fetch implements Source
func (s *Static) Fetch(_ context.Context) (string, error) {
	return s.sdl, nil
}

// File reads a schema document from the local filesystem. The file is
// re-read on every Fetch so edits are picked up by polling.
type File struct {
	path string
}

// NewFile creates a source backed by a schema file on disk. The file
// does not need to exist yet; missing files surface as fetch errors.
func NewFile(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "FileSource", "NewFile", "validate path")
	}
	return &File{path: path}, nil
}

// Name implements Source
func (f *File) Name() string { return "file:" + f.path }

// Fetch implements Source
func (f *File) Fetch(_ context.Context) (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.WrapInvalid(err, "FileSource", "Fetch", "read schema file")
		}
		return "", errors.WrapTransient(err, "FileSource", "Fetch", "read schema file")
	}
	if int64(len(data)) > MaxSchemaBytes {
		return "", errors.WrapInvalid(errors.ErrInvalidData, "FileSource", "Fetch",
			fmt.Sprintf("read schema file (%d bytes exceeds limit)", len(data)))
	}
	sdl := string(data)
	if strings.TrimSpace(sdl) == "" {
		return "", errors.WrapInvalid(errors.ErrInvalidData, "FileSource", "Fetch", "read schema file (empty)")
	}
	return sdl, nil
}

// HTTP fetches a schema document from a remote endpoint with retry on
// transient failures. Server errors and rate limiting are retried;
// client errors fail immediately.
type HTTP struct {
	url      string
	client   *http.Client
	retry    retry.Config
	logger   *slog.Logger
	metrics  *metric.Metrics
	maxBytes int64
}

// HTTPOption configures an HTTP source.
type HTTPOption func(*HTTP)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.client.Timeout = d
	}
}

// WithRetryConfig overrides the retry policy for fetches.
func WithRetryConfig(cfg retry.Config) HTTPOption {
	return func(h *HTTP) {
		h.retry = cfg
	}
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(h *HTTP) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMetrics enables fetch outcome recording.
func WithMetrics(m *metric.Metrics) HTTPOption {
	return func(h *HTTP) {
		h.metrics = m
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(h *HTTP) {
		if client != nil {
			h.client = client
		}
	}
}

// NewHTTP creates a source that fetches schema text from the given URL.
func NewHTTP(url string, opts ...HTTPOption) (*HTTP, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "HTTPSource", "NewHTTP", "validate URL")
	}
	h := &HTTP{
		url:      url,
		client:   &http.Client{Timeout: 10 * time.Second},
		retry:    retry.DefaultConfig(),
		logger:   slog.Default(),
		maxBytes: MaxSchemaBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Name implements Source
func (h *HTTP) Name() string { return h.url }

// Fetch implements Source
func (h *HTTP) Fetch(ctx context.Context) (string, error) {
	sdl, err := retry.DoWithResult(ctx, h.retry, func() (string, error) {
		return h.fetchOnce(ctx)
	})
	if err != nil {
		h.recordFetch("error")
		h.recordUp(false)
		return "", err
	}
	h.recordFetch("success")
	h.recordUp(true)
	return sdl, nil
}

func (h *HTTP) fetchOnce(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return "", retry.NonRetryable(errors.WrapInvalid(err, "HTTPSource", "Fetch", "build request"))
	}
	req.Header.Set("Accept", "application/graphql, text/plain")

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Warn("schema fetch failed", "url", h.url, "error", err)
		return "", errors.WrapTransient(err, "HTTPSource", "Fetch", "fetch schema")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to body read
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", errors.WrapTransient(errors.ErrRateLimited, "HTTPSource", "Fetch",
			fmt.Sprintf("fetch schema (status %d)", resp.StatusCode))
	case resp.StatusCode >= 500:
		return "", errors.WrapTransient(errors.ErrSourceUnavailable, "HTTPSource", "Fetch",
			fmt.Sprintf("fetch schema (status %d)", resp.StatusCode))
	default:
		return "", retry.NonRetryable(errors.WrapInvalid(errors.ErrSourceUnavailable, "HTTPSource", "Fetch",
			fmt.Sprintf("fetch schema (status %d)", resp.StatusCode)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return "", errors.WrapTransient(err, "HTTPSource", "Fetch", "read response body")
	}
	if int64(len(body)) > h.maxBytes {
		return "", retry.NonRetryable(errors.WrapInvalid(errors.ErrInvalidData, "HTTPSource", "Fetch",
			fmt.Sprintf("read response body (exceeds %d bytes)", h.maxBytes)))
	}
	sdl := string(body)
	if strings.TrimSpace(sdl) == "" {
		return "", retry.NonRetryable(errors.WrapInvalid(errors.ErrInvalidData, "HTTPSource", "Fetch", "read response body (empty)"))
	}
	return sdl, nil
}

func (h *HTTP) recordFetch(status string) {
	if h.metrics != nil {
		h.metrics.RecordSourceFetch(status)
	}
}

func (h *HTTP) recordUp(up bool) {
	if h.metrics != nil {
		h.metrics.RecordSourceStatus(up)
	}
}

// FromConfig builds a source from configuration. Returns nil without
// error when the configuration names no source at all, which callers
// treat as "wait for a schema over the wire".
func FromConfig(cfg config.SourceConfig, opts ...HTTPOption) (Source, error) {
	switch {
	case cfg.URL != "":
		retryCfg := retry.DefaultConfig()
		if cfg.Retries > 0 {
			retryCfg.MaxAttempts = cfg.Retries + 1
		}
		base := []HTTPOption{WithRetryConfig(retryCfg)}
		if cfg.Timeout > 0 {
			base = append(base, WithTimeout(cfg.Timeout))
		}
		return NewHTTP(cfg.URL, append(base, opts...)...)
	case cfg.File != "":
		return NewFile(cfg.File)
	default:
		return nil, nil
	}
}
