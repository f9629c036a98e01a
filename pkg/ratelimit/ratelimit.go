// Package ratelimit throttles login attempts per client IP.
//
// The IP comes from ClientIPResolver, which only honours forwarding headers
// set by a configured trusted proxy.
//
// Each IP gets a fixed window: the first attempt opens it, every attempt
// inside it increments the counter, and once the window has elapsed the next
// attempt opens a fresh one. A successful login clears the IP's counter.
// A background loop evicts stale windows so the map does not grow forever.
//
// The package depends on nothing else in the module, so both handlers and
// middleware can import it without cycles.
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"
)

type window struct {
	count int
	start time.Time
}

// LoginRateLimiter limits login attempts per IP.
type LoginRateLimiter struct {
	mu          sync.Mutex
	windows     map[string]*window
	maxAttempts int
	period      time.Duration
	now         func() time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewLoginRateLimiter allows maxAttempts per period and starts the eviction
// loop. Call Close to stop it.
func NewLoginRateLimiter(maxAttempts int, period time.Duration) *LoginRateLimiter {
	rl := newLimiter(maxAttempts, period, time.Now)
	go rl.evictLoop(time.Minute)
	return rl
}

func newLimiter(maxAttempts int, period time.Duration, now func() time.Time) *LoginRateLimiter {
	return &LoginRateLimiter{
		windows:     make(map[string]*window),
		maxAttempts: maxAttempts,
		period:      period,
		now:         now,
		stop:        make(chan struct{}),
	}
}

// Allow records an attempt for ip and reports whether it is within budget.
func (rl *LoginRateLimiter) Allow(ip string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[ip]
	if !ok || now.Sub(w.start) > rl.period {
		rl.windows[ip] = &window{count: 1, start: now}
		return true
	}

	w.count++
	return w.count <= rl.maxAttempts
}

// Reset forgets ip's attempts. Called after a successful login.
func (rl *LoginRateLimiter) Reset(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.windows, ip)
}

// RetryAfterSeconds is the value for the Retry-After header once ip is over
// budget, rounded up.
func (rl *LoginRateLimiter) RetryAfterSeconds(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[ip]
	if !ok {
		return 0
	}

	remaining := rl.period - rl.now().Sub(w.start)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

// Close stops the eviction loop. Safe to call more than once.
func (rl *LoginRateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *LoginRateLimiter) evictLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evict()
		case <-rl.stop:
			return
		}
	}
}

func (rl *LoginRateLimiter) evict() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, w := range rl.windows {
		if now.Sub(w.start) > rl.period {
			delete(rl.windows, ip)
		}
	}
}

// ClientIPResolver decides which address a request is counted against.
// Forwarding headers are only believed when the connection itself comes
// from a trusted proxy; anyone else could put any address in them.
type ClientIPResolver struct {
	trusted []netip.Prefix
}

// NewClientIPResolver parses proxies, each a bare IP or a CIDR range.
// No proxies means the connection's remote host is always used.
func NewClientIPResolver(proxies []string) (*ClientIPResolver, error) {
	res := &ClientIPResolver{}
	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.Contains(p, "/") {
			prefix, err := netip.ParsePrefix(p)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", p, err)
			}
			res.trusted = append(res.trusted, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(p)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", p, err)
		}
		addr = addr.Unmap()
		res.trusted = append(res.trusted, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return res, nil
}

// ClientIP returns the address to rate limit r by. Behind trusted proxies
// it walks X-Forwarded-For from the right and takes the first hop that is
// not a trusted proxy, falling back to X-Real-IP. A nil resolver trusts
// nobody.
func (c *ClientIPResolver) ClientIP(r *http.Request) string {
	remote := remoteHost(r)
	if c == nil || !c.isTrusted(remote) {
		return remote
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if !c.isTrusted(hop) {
				return hop
			}
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return remote
}

func (c *ClientIPResolver) isTrusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range c.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// FormatRetryMessage renders seconds for humans: "2 minute(s)", "45 second(s)".
func FormatRetryMessage(seconds int) string {
	if seconds >= 60 {
		return fmt.Sprintf("%d minute(s)", seconds/60)
	}
	return fmt.Sprintf("%d second(s)", seconds)
}
