package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"cotflow/logger"
)

// ErrSourceUnavailable marks a transport failure or a non-success status
// from the upstream endpoint. The fetch is all-or-nothing and is never
// retried here; retry policy belongs to the caller.
var ErrSourceUnavailable = errors.New("source unavailable")

// SourceSpec identifies one upstream document: either a plain text feed
// or a compressed archive holding the feed.
type SourceSpec struct {
	URL string
	// Archive marks the document as a zip container that must be
	// decompressed after download.
	Archive bool
	// ArchiveEntry optionally names the entry expected inside the
	// archive. When empty, the archive must contain exactly one file.
	ArchiveEntry string
}

// Fetcher retrieves raw report bytes from a remote endpoint. Requests are
// rate limited so repeated runs stay polite toward the publisher.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	log       *logger.Log
}

// New builds a fetcher with the given request timeout and a limit of
// requestsPerMinute upstream calls.
func New(timeout time.Duration, requestsPerMinute int) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
		userAgent: "cotflow/1.0",
		log:       logger.GetLogger(),
	}
}

// Fetch downloads the document described by spec and returns the raw feed
// bytes, decompressing archives when required.
func (f *Fetcher) Fetch(ctx context.Context, spec SourceSpec) ([]byte, error) {
	log := f.log.WithComponent("fetcher").WithFields(logger.Fields{
		"url":     spec.URL,
		"archive": spec.Archive,
	})

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	start := time.Now()
	body, err := f.get(ctx, spec.URL)
	if err != nil {
		log.WithError(err).Error("fetch failed")
		return nil, err
	}

	logger.IncrementFetch(len(body))
	logger.LogPerformanceEntry(log, "fetcher", "fetch", time.Since(start), logger.Fields{
		"bytes": len(body),
	})

	if !spec.Archive {
		return body, nil
	}

	data, err := extractArchive(body, spec.ArchiveEntry)
	if err != nil {
		log.WithError(err).Error("archive extraction failed")
		return nil, err
	}

	log.WithFields(logger.Fields{
		"compressed_bytes":   len(body),
		"uncompressed_bytes": len(data),
	}).Info("archive extracted")
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %s from %s", ErrSourceUnavailable, resp.Status, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrSourceUnavailable, err)
	}
	return body, nil
}
