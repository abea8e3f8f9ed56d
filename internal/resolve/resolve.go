// Package resolve provides the background reverse-DNS and ASN lookup
// workers. The UI submits requests and consumes answers through channels;
// lookups never run on the render path.
package resolve

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ASN lookup tuning.
const (
	whoisServer = "whois.cymru.com:43"

	// DefaultTimeout bounds one whois or rDNS conversation.
	DefaultTimeout = 3 * time.Second

	// DefaultFailureTTL is how long a failed ASN lookup is cached before a
	// retry is allowed.
	DefaultFailureTTL = 5 * time.Minute

	maxWhoisBytes = 64 << 10
)

// Request asks for a lookup of IP on behalf of host (the configured name).
type Request struct {
	Host string
	IP   string
}

// RDNSResult is the answer to a reverse-DNS request. OK is false when the
// address has no PTR record or the lookup failed.
type RDNSResult struct {
	Host string
	Name string
	OK   bool
}

// ASNResult is the answer to an ASN request, e.g. "AS15169".
type ASNResult struct {
	Host string
	ASN  string
	OK   bool
}

// LookupRDNS resolves the PTR name for an IP address.
func LookupRDNS(ip string) (string, bool) {
	names, err := net.LookupAddr(ip)
	if err != nil || len(names) == 0 {
		return "", false
	}
	return strings.TrimSuffix(names[0], "."), true
}

// ParseASNResponse extracts the ASN from a Team Cymru verbose whois reply.
// The reply is a header line followed by one data line of |-separated
// fields, the first of which is the AS number.
func ParseASNResponse(resp string) (string, bool) {
	var lines []string
	for _, l := range strings.Split(resp, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) < 2 {
		return "", false
	}
	fields := strings.Split(lines[1], "|")
	asn := strings.TrimSpace(strings.ReplaceAll(fields[0], "AS", ""))
	if asn == "" || strings.EqualFold(asn, "NA") {
		return "", false
	}
	return "AS" + asn, true
}

// FetchASN queries the Team Cymru whois service for the origin ASN of ip.
func FetchASN(ip string, timeout time.Duration) (string, bool) {
	conn, err := net.DialTimeout("tcp", whoisServer, timeout)
	if err != nil {
		return "", false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	if _, err := fmt.Fprintf(conn, " -v %s\n", ip); err != nil {
		return "", false
	}
	resp, err := io.ReadAll(io.LimitReader(conn, maxWhoisBytes))
	if err != nil && len(resp) == 0 {
		return "", false
	}
	return ParseASNResponse(string(resp))
}

type cacheEntry struct {
	asn       string
	ok        bool
	fetchedAt time.Time
}

// ASNCache caches ASN answers. Successful answers are kept for the life of
// the process; failures become retriable after the failure TTL.
type ASNCache struct {
	mu         sync.Mutex
	failureTTL time.Duration
	entries    map[string]cacheEntry
}

// NewASNCache creates a cache. A non-positive ttl uses the default.
func NewASNCache(ttl time.Duration) *ASNCache {
	if ttl <= 0 {
		ttl = DefaultFailureTTL
	}
	return &ASNCache{failureTTL: ttl, entries: make(map[string]cacheEntry)}
}

// Get returns the cached ASN for ip. cached is false when there is no entry
// at all.
func (c *ASNCache) Get(ip string) (asn string, ok, cached bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, found := c.entries[ip]
	return e.asn, e.ok, found
}

// Put records a lookup outcome.
func (c *ASNCache) Put(ip, asn string, ok bool, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[ip] = cacheEntry{asn: asn, ok: ok, fetchedAt: now}
}

// ShouldRetry reports whether a lookup for ip is warranted: no entry yet,
// or a failure older than the failure TTL.
func (c *ASNCache) ShouldRetry(ip string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, found := c.entries[ip]
	if !found {
		return true
	}
	return !e.ok && now.Sub(e.fetchedAt) >= c.failureTTL
}

// Workers runs the rDNS and ASN resolver goroutines. Submit with the
// request channels, drain the result channels without blocking; close is
// via Stop.
type Workers struct {
	RDNSRequests chan Request
	RDNSResults  chan RDNSResult
	ASNRequests  chan Request
	ASNResults   chan ASNResult

	rdnsFn func(ip string) (string, bool)
	asnFn  func(ip string, timeout time.Duration) (string, bool)

	timeout time.Duration
	g       *errgroup.Group
	cancel  context.CancelFunc
	once    sync.Once
}

// NewWorkersFuncs creates resolver workers with custom lookup functions.
// Callers that must not touch the network (tests, offline mode) inject
// their own.
func NewWorkersFuncs(timeout time.Duration, rdnsFn func(ip string) (string, bool), asnFn func(ip string, timeout time.Duration) (string, bool)) *Workers {
	w := NewWorkers(timeout)
	if rdnsFn != nil {
		w.rdnsFn = rdnsFn
	}
	if asnFn != nil {
		w.asnFn = asnFn
	}
	return w
}

// NewWorkers creates resolver workers with the real lookup functions.
func NewWorkers(timeout time.Duration) *Workers {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Workers{
		RDNSRequests: make(chan Request, 256),
		RDNSResults:  make(chan RDNSResult, 256),
		ASNRequests:  make(chan Request, 256),
		ASNResults:   make(chan ASNResult, 256),
		rdnsFn:       LookupRDNS,
		asnFn:        FetchASN,
		timeout:      timeout,
	}
}

// Start launches both workers.
func (w *Workers) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.g, ctx = errgroup.WithContext(ctx)
	w.g.Go(func() error { return w.rdnsLoop(ctx) })
	w.g.Go(func() error { return w.asnLoop(ctx) })
}

// Stop cancels the workers and waits for them to drain.
func (w *Workers) Stop() {
	w.once.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
		if w.g != nil {
			_ = w.g.Wait()
		}
	})
}

func (w *Workers) rdnsLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case req, ok := <-w.RDNSRequests:
			if !ok {
				return nil
			}
			name, found := w.rdnsFn(req.IP)
			select {
			case w.RDNSResults <- RDNSResult{Host: req.Host, Name: name, OK: found}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (w *Workers) asnLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case req, ok := <-w.ASNRequests:
			if !ok {
				return nil
			}
			asn, found := w.asnFn(req.IP, w.timeout)
			select {
			case w.ASNResults <- ASNResult{Host: req.Host, ASN: asn, OK: found}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
