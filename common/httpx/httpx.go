// Package httpx provides the shared outbound HTTP client: bounded retries
// with jittered backoff, a consecutive-failure circuit breaker, and an
// optional host allowlist.
package httpx

import (
	"crypto/tls"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ShamanBV/shaman-assistant/common/logger"
	"github.com/ShamanBV/shaman-assistant/config"
)

var (
	ErrCircuitOpen    = errors.New("circuit open")
	ErrHostNotAllowed = errors.New("host not allowed")
)

// Options carries the resolved client tuning. Zero values are replaced with
// defaults in NewFromConfig.
type Options struct {
	Timeout     time.Duration
	Retry       int
	BackoffBase time.Duration
	BackoffMax  time.Duration
	// AllowedHosts restricts outbound hosts; empty allows all. Entries may
	// be exact hostnames, "*.domain" suffixes, or "*".
	AllowedHosts []string
	MaxFailures  int
	CircuitOpen  time.Duration
}

// Client wraps net/http with retry, backoff and a circuit breaker. It is
// safe for concurrent use.
type Client struct {
	hc        *http.Client
	opt       Options
	fail      int32 // consecutive failures
	openUntil int64 // unix nanos until which the circuit stays open
}

// NewFromConfig builds a Client from config, falling back to defaults for
// unset fields. A nil cfg yields a client with all defaults.
func NewFromConfig(cfg *config.HTTPClientConfig) *Client {
	opt := Options{
		Timeout:     1200 * time.Millisecond,
		Retry:       1,
		BackoffBase: 100 * time.Millisecond,
		BackoffMax:  800 * time.Millisecond,
		MaxFailures: 5,
		CircuitOpen: 5 * time.Second,
	}
	maxIdle := 100
	disableKeepAlive := false
	followRedirects := true
	if cfg != nil {
		if cfg.TimeoutMS > 0 {
			opt.Timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
		}
		if cfg.Retry > 0 {
			opt.Retry = cfg.Retry
		}
		if cfg.BackoffBaseMS > 0 {
			opt.BackoffBase = time.Duration(cfg.BackoffBaseMS) * time.Millisecond
		}
		if cfg.BackoffMaxMS > 0 {
			opt.BackoffMax = time.Duration(cfg.BackoffMaxMS) * time.Millisecond
		}
		if cfg.MaxFailures > 0 {
			opt.MaxFailures = cfg.MaxFailures
		}
		if cfg.CircuitOpenMS > 0 {
			opt.CircuitOpen = time.Duration(cfg.CircuitOpenMS) * time.Millisecond
		}
		if cfg.MaxIdleConns > 0 {
			maxIdle = cfg.MaxIdleConns
		}
		opt.AllowedHosts = cfg.AllowedHosts
		disableKeepAlive = cfg.DisableKeepAlive
		followRedirects = cfg.FollowRedirects
	}

	transport := &http.Transport{
		DialContext:       (&net.Dialer{Timeout: opt.Timeout}).DialContext,
		TLSClientConfig:   &tls.Config{MinVersion: tls.VersionTLS12},
		MaxIdleConns:      maxIdle,
		IdleConnTimeout:   30 * time.Second,
		DisableKeepAlives: disableKeepAlive,
	}
	hc := &http.Client{Timeout: opt.Timeout, Transport: transport}
	if !followRedirects {
		hc.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return &Client{hc: hc, opt: opt}
}

// New builds a Client directly from Options. Intended for tests.
func New(opt Options) *Client {
	return &Client{hc: &http.Client{Timeout: opt.Timeout}, opt: opt}
}

// Allowed reports whether the URL's host passes the allowlist.
func (c *Client) Allowed(rawURL string) bool {
	if len(c.opt.AllowedHosts) == 0 {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	for _, pattern := range c.opt.AllowedHosts {
		if matchHost(pattern, host) {
			return true
		}
	}
	return false
}

func matchHost(pattern, host string) bool {
	if pattern == "*" {
		return true
	}
	if strings.EqualFold(pattern, host) {
		return true
	}
	if strings.HasPrefix(pattern, "*.") {
		suffix := strings.TrimPrefix(pattern, "*.")
		return strings.EqualFold(host, suffix) ||
			strings.HasSuffix(strings.ToLower(host), "."+strings.ToLower(suffix))
	}
	return false
}

// Do sends the request, retrying on transport errors and 5xx responses.
// Requests built with a byte body (http.NewRequest sets GetBody) are rewound
// between attempts. Status codes below 500 count as delivered; the caller
// interprets them.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if !c.Allowed(req.URL.String()) {
		logger.Warnf("httpx: blocked outbound host: %s", req.URL.String())
		return nil, ErrHostNotAllowed
	}
	if atomic.LoadInt64(&c.openUntil) > time.Now().UnixNano() {
		return nil, ErrCircuitOpen
	}

	var resp *http.Response
	var err error
	for attempt := 0; attempt <= c.opt.Retry; attempt++ {
		if attempt > 0 && req.GetBody != nil {
			body, berr := req.GetBody()
			if berr != nil {
				return nil, berr
			}
			req.Body = body
		}
		resp, err = c.hc.Do(req)
		if err == nil && resp.StatusCode < 500 {
			atomic.StoreInt32(&c.fail, 0)
			return resp, nil
		}
		cause := "unknown"
		if err != nil {
			cause = err.Error()
		} else {
			cause = resp.Status
		}
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		logger.Warnf("httpx: request failed (try %d/%d) to %s: %s",
			attempt+1, c.opt.Retry+1, req.URL.String(), cause)
		if attempt < c.opt.Retry {
			time.Sleep(backoffJitter(c.opt.BackoffBase, c.opt.BackoffMax))
		}
	}

	if atomic.AddInt32(&c.fail, 1) >= int32(c.opt.MaxFailures) {
		atomic.StoreInt64(&c.openUntil, time.Now().Add(c.opt.CircuitOpen).UnixNano())
		atomic.StoreInt32(&c.fail, 0)
		logger.Warnf("httpx: circuit opened for %v", c.opt.CircuitOpen)
	}
	if err == nil {
		err = errors.New("server error: " + resp.Status)
	}
	return nil, err
}

func backoffJitter(base, max time.Duration) time.Duration {
	if max <= base {
		return base
	}
	return base + time.Duration(rand.Int63n(int64(max-base)))
}
