// Package download fetches batches of files into destination directories
// using a bounded pool of workers. Each worker owns a contiguous chunk of the
// batch and fetches it in order; a failing worker stops but never cancels its
// siblings.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the worker count used when none is configured.
const DefaultWorkers = 4

// ErrDownload matches any *Error.
var ErrDownload = errors.New("download failed")

// Error reports a transport failure or non-success status for one URL.
type Error struct {
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("download %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrDownload }

// Item is a single file to fetch. The file is stored in Dir under the last
// path segment of URL.
type Item struct {
	URL string
	Dir string
}

// Reporter receives per-item notifications. Implementations must be safe for
// concurrent use.
type Reporter interface {
	Start(item Item)
	Complete(item Item, err error)
}

// Orchestrator fetches batches of items.
type Orchestrator struct {
	Client    *http.Client
	Workers   int
	UserAgent string
	Reporter  Reporter
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.Client = c
		}
	}
}

// WithWorkers sets the worker count; values below one are ignored.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.Workers = n
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *Orchestrator) {
		o.UserAgent = ua
	}
}

// WithReporter attaches a progress reporter.
func WithReporter(r Reporter) Option {
	return func(o *Orchestrator) {
		o.Reporter = r
	}
}

// New creates an Orchestrator with DefaultWorkers and http.DefaultClient.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		Client:  http.DefaultClient,
		Workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type chunkResult struct {
	index int
	err   error
}

// FetchAll downloads items using at most o.Workers concurrent workers. It waits
// for every worker and returns the first error in worker-submission order.
// Files fetched before a failure stay on disk.
func (o *Orchestrator) FetchAll(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	// One goroutine per chunk; chunkItems never returns more than
	// o.workers() chunks, so that is the concurrency bound.
	chunks := chunkItems(items, o.workers())

	var g errgroup.Group
	results := make(chan chunkResult, len(chunks))

	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			err := o.fetchChunk(ctx, chunk)
			results <- chunkResult{index: i, err: err}
			return err
		})
	}
	_ = g.Wait()
	close(results)

	errs := make([]error, len(chunks))
	for res := range results {
		errs[res.index] = res.err
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) fetchChunk(ctx context.Context, chunk []Item) error {
	for _, item := range chunk {
		if o.Reporter != nil {
			o.Reporter.Start(item)
		}
		_, err := o.Fetch(ctx, item)
		if o.Reporter != nil {
			o.Reporter.Complete(item, err)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) workers() int {
	if o.Workers <= 0 {
		return DefaultWorkers
	}
	return o.Workers
}

// chunkItems splits items into at most n contiguous chunks of ceil(len/n) items.
func chunkItems(items []Item, n int) [][]Item {
	if len(items) == 0 {
		return nil
	}
	if n <= 0 {
		n = 1
	}
	size := (len(items) + n - 1) / n
	chunks := make([][]Item, 0, n)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// Fetch downloads a single item and returns the path of the written file.
func (o *Orchestrator) Fetch(ctx context.Context, item Item) (string, error) {
	name, err := FileName(item.URL)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(item.Dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure download dir: %w", err)
	}
	dest := filepath.Join(item.Dir, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.URL, nil)
	if err != nil {
		return "", &Error{URL: item.URL, Err: err}
	}
	if o.UserAgent != "" {
		req.Header.Set("User-Agent", o.UserAgent)
	}

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &Error{URL: item.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &Error{URL: item.URL, Status: resp.StatusCode}
	}

	tmpFile, err := os.CreateTemp(item.Dir, "download-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		tmpFile.Close()
		return "", &Error{URL: item.URL, Err: err}
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return "", fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return "", fmt.Errorf("finalize download: %w", err)
	}
	return dest, nil
}

// FileName returns the last path segment of rawURL, ignoring any query.
func FileName(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse download url: %w", err)
	}
	base := path.Base(parsed.Path)
	if base == "." || base == "" || base == "/" {
		return "", fmt.Errorf("infer file name from url: %s", rawURL)
	}
	return base, nil
}
