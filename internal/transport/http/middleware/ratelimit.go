package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"hrperf/internal/transport/http/api"
)

// loginRoute is limited per client ip and per submitted email.
const loginRoute = "POST /auth/login"

// actorMutations are limited per actor on top of the global limit. Patterns
// use path.Match syntax against "METHOD /path" with the /api/v1 prefix removed.
var actorMutations = []string{
	"POST /assignments/*/start",
	"POST /reviews/*/checkin",
	"PATCH /employees/*/role",
	"POST /employees/*/deactivate",
	"POST /employees",
	"POST /departments",
	"PATCH /departments/*/manager",
}

// Buckets are swept for expired windows once the map reaches this size.
const sweepAt = 4096

type bucket struct {
	count int
	reset time.Time
}

// limiter counts requests per key in fixed windows.
type limiter struct {
	limit  int
	window time.Duration
	key    func(*http.Request) string
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

func newLimiter(limit int, window time.Duration, key func(*http.Request) string) *limiter {
	return &limiter{
		limit:   limit,
		window:  window,
		key:     key,
		now:     time.Now,
		buckets: map[string]*bucket{},
	}
}

// allow counts r and sets the limit headers. Over the limit it writes the 429
// itself and returns false.
func (l *limiter) allow(w http.ResponseWriter, r *http.Request) bool {
	if l.limit <= 0 {
		return true
	}
	key := l.key(r)
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok || !now.Before(b.reset) {
		if len(l.buckets) >= sweepAt {
			for k, old := range l.buckets {
				if !now.Before(old.reset) {
					delete(l.buckets, k)
				}
			}
		}
		b = &bucket{reset: now.Add(l.window)}
		l.buckets[key] = b
	}
	b.count++
	count, reset := b.count, b.reset
	l.mu.Unlock()

	resetIn := max(int(math.Ceil(reset.Sub(now).Seconds())), 1)
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(max(l.limit-count, 0)))
	h.Set("X-RateLimit-Reset", strconv.Itoa(resetIn))
	if count <= l.limit {
		return true
	}
	h.Set("Retry-After", strconv.Itoa(resetIn))
	slog.Warn("rate limit exceeded", "key", key, "method", r.Method, "path", r.URL.Path, "limit", l.limit)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

// RateLimit caps every request per authenticated actor, or per client ip
// before authentication.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	all := newLimiter(limit, window, actorOrIP)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if all.allow(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// SensitiveMutationRateLimit holds login to a quarter of base and the
// workflow and org mutations to half of it.
func SensitiveMutationRateLimit(base int, window time.Duration) func(http.Handler) http.Handler {
	loginByIP := newLimiter(max(base/4, 1), window, clientIP)
	loginByEmail := newLimiter(max(base/4, 1), window, loginEmail)
	mutations := newLimiter(max(base/2, 1), window, actorOrIP)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := routeOf(r)
			switch {
			case route == loginRoute:
				if !loginByIP.allow(w, r) || !loginByEmail.allow(w, r) {
					return
				}
			case isActorMutation(route):
				if !mutations.allow(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func routeOf(r *http.Request) string {
	p := strings.TrimPrefix(r.URL.Path, "/api/v1")
	if p == "" {
		p = "/"
	}
	return r.Method + " " + p
}

func isActorMutation(route string) bool {
	for _, pattern := range actorMutations {
		if ok, _ := path.Match(pattern, route); ok {
			return true
		}
	}
	return false
}

func actorOrIP(r *http.Request) string {
	if actor, ok := GetActor(r.Context()); ok && actor.ID != "" {
		return "actor:" + actor.ID
	}
	return "ip:" + clientIP(r)
}

// loginEmail keys login attempts by the submitted email and restores the body
// for the handler. Unreadable bodies fall back to the client ip.
func loginEmail(r *http.Request) string {
	if r.Body == nil {
		return "ip:" + clientIP(r)
	}
	body := r.Body
	raw, err := io.ReadAll(io.LimitReader(body, 64<<10))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(raw), body), body}
	if err != nil {
		return "ip:" + clientIP(r)
	}
	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(raw, &payload) != nil || strings.TrimSpace(payload.Email) == "" {
		return "ip:" + clientIP(r)
	}
	return "email:" + strings.ToLower(strings.TrimSpace(payload.Email))
}
