package lists

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/nftblock/nftblock/internal/config"
)

// UnreachableError indicates that a source could not be fetched (network
// failure, timeout or non-success HTTP status). It is a source-level failure:
// the sync pass logs it and continues with the remaining sources.
type UnreachableError struct {
	URL string
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("source %s unreachable: %v", e.URL, e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// Fetcher downloads remote blocklists over HTTP(S).
//
// Each fetch is a single GET with redirect-following and a fixed identifying
// user-agent. There are no retries: a failed source is reported via
// UnreachableError and skipped for this pass.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher builds a Fetcher from the general configuration. The proxy, if
// configured, applies uniformly to all fetches performed by this Fetcher.
func NewFetcher(cfg *config.GeneralConfig) (*Fetcher, error) {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %v", cfg.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   time.Duration(cfg.DownloadTimeoutSec) * time.Second,
	}

	return &Fetcher{
		client:    client,
		userAgent: cfg.UserAgent,
	}, nil
}

// Fetch retrieves the raw text of one source.
func (f *Fetcher) Fetch(sourceURL string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", &UnreachableError{URL: sourceURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &UnreachableError{URL: sourceURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UnreachableError{URL: sourceURL, Err: fmt.Errorf("HTTP status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UnreachableError{URL: sourceURL, Err: err}
	}

	return string(body), nil
}
