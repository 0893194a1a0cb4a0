package piwebapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client talks to one PI Web API deployment. The resolved base endpoint is
// cached for the lifetime of the client; hierarchy data never is, so every
// load re-discovers from scratch.
type Client struct {
	hostname     string
	http         *http.Client
	probeTimeout time.Duration
	username     string
	password     string

	candidates []string

	mu       sync.Mutex
	endpoint string
}

func NewClient(hostname string, requestTimeout, probeTimeout time.Duration) *Client {
	hostname = strings.TrimSpace(strings.TrimRight(hostname, "/"))
	if probeTimeout <= 0 {
		probeTimeout = 10 * time.Second
	}
	return &Client{
		hostname:     hostname,
		http:         &http.Client{Timeout: requestTimeout},
		probeTimeout: probeTimeout,
		candidates:   endpointCandidates(hostname),
	}
}

// SetBasicAuth attaches credentials to every request. Without it requests go
// out bare and the ambient transport (or a 401 answer) decides.
func (c *Client) SetBasicAuth(username, password string) {
	c.username = username
	c.password = password
}

func (c *Client) Enabled() bool {
	return c != nil && c.hostname != ""
}

// endpointCandidates lists base URLs in the fixed probe order.
func endpointCandidates(hostname string) []string {
	if hostname == "" {
		return nil
	}
	return []string{
		"https://" + hostname + "/piwebapi",
		"https://" + hostname + ":443/piwebapi",
		"http://" + hostname + "/piwebapi",
	}
}

// ResolveEndpoint probes the candidate base URLs in order and caches the
// first reachable one. A 401 answer counts as reachable: the server is there,
// it just rejected or never saw a credential.
func (c *Client) ResolveEndpoint(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.endpoint != "" {
		ep := c.endpoint
		c.mu.Unlock()
		return ep, nil
	}
	c.mu.Unlock()

	tried := make([]string, 0, len(c.candidates))
	for _, candidate := range c.candidates {
		tried = append(tried, candidate)
		probeCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
		ok := c.probe(probeCtx, candidate)
		cancel()
		if !ok {
			continue
		}
		c.mu.Lock()
		c.endpoint = candidate
		c.mu.Unlock()
		return candidate, nil
	}

	return "", &NotReachableError{Hostname: c.hostname, Tried: tried}
}

func (c *Client) probe(ctx context.Context, candidate string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, candidate, nil)
	if err != nil {
		return false
	}
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return reachableStatus(resp.StatusCode)
}

// reachableStatus treats 2xx and exactly 401 as "the server answered".
func reachableStatus(code int) bool {
	return (code >= 200 && code < 300) || code == http.StatusUnauthorized
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
}

// get issues a credentialed GET with no body and returns the status code and
// raw body. Transport failures are the only error case; HTTP status handling
// is the caller's concern.
func (c *Client) get(ctx context.Context, rawURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, err
	}
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

type itemsResult struct {
	status     int
	items      []rawItem
	recognized bool
}

// fetchItems GETs a collection URL and decodes the Items/Elements envelope.
// On 401 or an unparseable body the result carries the status with no items.
func (c *Client) fetchItems(ctx context.Context, rawURL string) (itemsResult, error) {
	status, body, err := c.get(ctx, rawURL)
	if err != nil {
		return itemsResult{}, err
	}

	out := itemsResult{status: status}
	if status < 200 || status >= 300 {
		return out, nil
	}

	var envelope itemEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return out, fmt.Errorf("decode %s: %w", rawURL, err)
	}
	out.items, out.recognized = envelope.collection()
	return out, nil
}

// base returns the resolved endpoint, probing first if needed.
func (c *Client) base(ctx context.Context) (string, error) {
	return c.ResolveEndpoint(ctx)
}
