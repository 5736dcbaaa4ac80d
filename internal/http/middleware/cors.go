package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CORSConfig describes which browser origins may call the chat API.
// Origins may be exact ("https://survey.example.com"), "*" for any origin,
// or a subdomain wildcard ("https://*.example.com").
type CORSConfig struct {
	AllowedOrigins []string
	AllowedHeaders []string
	AllowedMethods []string
	ExposedHeaders []string
	MaxAge         time.Duration
}

var (
	defaultCORSHeaders = []string{"Authorization", "Content-Type", RequestIDHeader}
	defaultCORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
)

// Enabled reports whether any origin is configured.
func (c CORSConfig) Enabled() bool {
	for _, o := range c.AllowedOrigins {
		if strings.TrimSpace(o) != "" {
			return true
		}
	}
	return false
}

type originMatcher struct {
	any      bool
	exact    map[string]struct{}
	suffixes []wildcardOrigin
}

type wildcardOrigin struct {
	scheme string
	suffix string
}

func newOriginMatcher(origins []string) originMatcher {
	m := originMatcher{exact: map[string]struct{}{}}
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		switch {
		case origin == "":
		case origin == "*":
			m.any = true
		case strings.Contains(origin, "://*."):
			scheme, host, _ := strings.Cut(origin, "://*")
			m.suffixes = append(m.suffixes, wildcardOrigin{scheme: scheme + "://", suffix: host})
		default:
			m.exact[origin] = struct{}{}
		}
	}
	return m
}

func (m originMatcher) allows(origin string) bool {
	if m.any {
		return true
	}
	if _, ok := m.exact[origin]; ok {
		return true
	}
	for _, w := range m.suffixes {
		host, ok := strings.CutPrefix(origin, w.scheme)
		// "*.example.com" covers sub.example.com but not example.com itself.
		if ok && strings.HasSuffix(host, w.suffix) && len(host) > len(w.suffix) {
			return true
		}
	}
	return false
}

// CORS answers preflight requests and decorates responses for allowed origins.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	match := newOriginMatcher(cfg.AllowedOrigins)
	headers := joinOr(cfg.AllowedHeaders, defaultCORSHeaders)
	methods := joinOr(cfg.AllowedMethods, defaultCORSMethods)
	exposed := joinOr(cfg.ExposedHeaders, []string{RequestIDHeader})
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 10 * time.Minute
	}
	maxAgeSeconds := strconv.Itoa(int(maxAge / time.Second))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			allowed := origin != "" && match.allows(origin)
			if allowed {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Headers", headers)
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Expose-Headers", exposed)
				h.Set("Access-Control-Max-Age", maxAgeSeconds)
			}

			if r.Method == http.MethodOptions && origin != "" && r.Header.Get("Access-Control-Request-Method") != "" {
				if !allowed {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func joinOr(values, fallback []string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		out = fallback
	}
	return strings.Join(out, ", ")
}
