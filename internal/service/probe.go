package service

import (
	"context"
	"net"
	"strings"
	"time"

	"cfbot/internal/model"
)

// wildcardProbes is the fixed, ordered candidate set for wildcard checks.
// The check is a heuristic: it reports what currently resolves, not whether
// a wildcard record actually exists.
var wildcardProbes = []string{"www", "api", "blog", "mail", "dev", "app", "test", "cdn"}

// hostResolver is the slice of net.Resolver the prober needs; tests swap in
// a fake.
type hostResolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Prober answers wildcard checks and reachability pings.
type Prober interface {
	CheckWildcard(ctx context.Context, pattern string) []model.ProbeResult
	Ping(ctx context.Context, host string) model.PingResult
}

type NetProber struct {
	resolver hostResolver
	dialer   *net.Dialer
	timeout  time.Duration
	ports    []string
}

func NewNetProber(timeout time.Duration) *NetProber {
	return &NetProber{
		resolver: net.DefaultResolver,
		dialer:   &net.Dialer{},
		timeout:  timeout,
		ports:    []string{"443", "80"},
	}
}

// CheckWildcard resolves every candidate subdomain under pattern, in the
// fixed probe order, one result per candidate. A leading "*." on the
// pattern is stripped.
func (p *NetProber) CheckWildcard(ctx context.Context, pattern string) []model.ProbeResult {
	domain := strings.TrimPrefix(strings.TrimSpace(pattern), "*.")

	results := make([]model.ProbeResult, 0, len(wildcardProbes))
	for _, sub := range wildcardProbes {
		host := sub + "." + domain

		lookupCtx, cancel := context.WithTimeout(ctx, p.timeout)
		addrs, err := p.resolver.LookupHost(lookupCtx, host)
		cancel()

		results = append(results, model.ProbeResult{Host: host, Addresses: addrs, Err: err})
	}
	return results
}

// Ping resolves host, then tries a TCP connect on 443 with an 80
// fallback, reporting the first address and the connect latency.
func (p *NetProber) Ping(ctx context.Context, host string) model.PingResult {
	result := model.PingResult{Host: host}

	lookupCtx, cancel := context.WithTimeout(ctx, p.timeout)
	addrs, err := p.resolver.LookupHost(lookupCtx, host)
	cancel()
	if err != nil {
		result.Err = err
		return result
	}
	if len(addrs) > 0 {
		result.Address = addrs[0]
	}

	for _, port := range p.ports {
		dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
		start := time.Now()
		conn, err := p.dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(host, port))
		cancel()
		if err != nil {
			result.Err = err
			continue
		}
		conn.Close()
		result.Port = port
		result.Latency = time.Since(start)
		result.Reachable = true
		result.Err = nil
		break
	}
	return result
}
