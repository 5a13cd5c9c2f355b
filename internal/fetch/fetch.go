// Package fetch retrieves research source pages and reduces them to plain
// text for the aggregation engine.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/textutil"
)

// PageFetcher is the collaborator the research engine depends on.
type PageFetcher interface {
	// Fetch returns the readable text of the page at url.
	Fetch(ctx context.Context, url string) (string, error)
}

// Error reports a failed page retrieval for one source URL.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

const (
	defaultTimeout  = 10 * time.Second
	defaultMaxBytes = 2 << 20
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// HTTPFetcher fetches pages over HTTP and extracts text from HTML and PDF
// responses. Bodies are capped to MaxBytes to avoid huge transfers.
type HTTPFetcher struct {
	Client   *http.Client
	MaxBytes int64
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:   &http.Client{Timeout: defaultTimeout},
		MaxBytes: defaultMaxBytes,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &Error{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &Error{URL: url, StatusCode: resp.StatusCode}
	}

	max := f.MaxBytes
	if max <= 0 {
		max = defaultMaxBytes
	}
	lr := io.LimitedReader{R: resp.Body, N: max}
	body, err := io.ReadAll(&lr)
	if err != nil {
		return "", &Error{URL: url, Err: err}
	}

	text, err := extract(resp.Header.Get("Content-Type"), body)
	if err != nil {
		return "", &Error{URL: url, Err: err}
	}
	return text, nil
}

func extract(contentType string, body []byte) (string, error) {
	switch {
	case strings.Contains(contentType, "application/pdf"):
		return pdfToText(body)
	case strings.Contains(contentType, "text/html"), looksLikeHTML(body):
		return htmlToText(body)
	default:
		return textutil.CompactWhitespace(string(body)), nil
	}
}

func looksLikeHTML(body []byte) bool {
	head := strings.ToLower(string(body[:min(len(body), 512)]))
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html")
}
