package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// funcPinger adapts a plain probe function to the Pinger interface.
type funcPinger struct {
	name string
	ping func(ctx context.Context) error
}

// NewPinger wraps fn as a Pinger reported under name. Store clients expose
// a Ping(ctx) method that can be passed directly.
func NewPinger(name string, fn func(ctx context.Context) error) Pinger {
	return &funcPinger{name: name, ping: fn}
}

// Name returns the dependency label used in readiness responses.
func (p *funcPinger) Name() string { return p.name }

// Ping runs the wrapped probe.
func (p *funcPinger) Ping(ctx context.Context) error { return p.ping(ctx) }

// HTTPPinger probes a dependency by issuing a GET and expecting a 2xx.
// Used for the Ollama daemon (GET /api/tags), which costs no tokens.
type HTTPPinger struct {
	// name identifies the dependency in readiness responses (e.g. "ollama").
	name string
	// url is the endpoint probed.
	url string
	// client performs the request; http.DefaultClient when nil.
	client *http.Client
}

// NewHTTPPinger constructs an HTTPPinger for url.
func NewHTTPPinger(name, url string, client *http.Client) *HTTPPinger {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPPinger{name: name, url: url, client: client}
}

// NewOllamaPinger probes the Ollama tags endpoint on host, which may be given
// with or without a scheme.
func NewOllamaPinger(host string) *HTTPPinger {
	base := strings.TrimRight(host, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return NewHTTPPinger("ollama", base+"/api/tags", nil)
}

// Name returns the dependency label used in readiness responses.
func (p *HTTPPinger) Name() string { return p.name }

// Ping issues the GET request and treats any non-2xx status as a failure.
func (p *HTTPPinger) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
