// Package middleware holds the HTTP middlewares wrapping the version service API.
package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig configures cross-origin access to the API.
type CORSConfig struct {
	// AllowedOrigins lists the origins allowed to call the API. "*" or an empty list allows any origin.
	AllowedOrigins []string
}

var (
	corsAllowedMethods = []string{http.MethodGet, http.MethodHead, http.MethodOptions}
	corsAllowedHeaders = []string{"Accept", "Content-Type", RequestIDHeader}
	corsExposedHeaders = []string{RequestIDHeader}
)

// corsMaxAge is how long, in seconds, browsers may cache a preflight answer.
const corsMaxAge = 86400

// CORS answers preflight requests and sets the CORS response headers for allowed origins.
type CORS struct {
	origins  []string
	wildcard bool
}

// NewCORS returns a CORS middleware for the read-only API.
func NewCORS(config CORSConfig) *CORS {
	origins := config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &CORS{
		origins:  origins,
		wildcard: slices.Contains(origins, "*"),
	}
}

// Handler wraps next.
func (c *CORS) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := c.setOriginHeaders(w, origin)

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if allowed {
				c.setPreflightHeaders(w, r)
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// setOriginHeaders sets the headers common to every response and reports whether origin is allowed.
func (c *CORS) setOriginHeaders(w http.ResponseWriter, origin string) bool {
	h := w.Header()
	switch {
	case c.wildcard:
		h.Set("Access-Control-Allow-Origin", "*")
	case origin != "" && slices.Contains(c.origins, origin):
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
	default:
		h.Add("Vary", "Origin")
		return false
	}

	h.Set("Access-Control-Expose-Headers", strings.Join(corsExposedHeaders, ", "))
	return true
}

func (c *CORS) setPreflightHeaders(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Methods", strings.Join(corsAllowedMethods, ", "))

	// Echo what the browser asks for, as long as we know about every header.
	allowHeaders := strings.Join(corsAllowedHeaders, ", ")
	if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" && c.headersAllowed(requested) {
		allowHeaders = requested
		h.Add("Vary", "Access-Control-Request-Headers")
	}
	h.Set("Access-Control-Allow-Headers", allowHeaders)
	h.Set("Access-Control-Max-Age", strconv.Itoa(corsMaxAge))
}

func (c *CORS) headersAllowed(requested string) bool {
	for header := range strings.SplitSeq(requested, ",") {
		header = strings.TrimSpace(header)
		if !slices.ContainsFunc(corsAllowedHeaders, func(a string) bool { return strings.EqualFold(a, header) }) {
			return false
		}
	}
	return true
}
