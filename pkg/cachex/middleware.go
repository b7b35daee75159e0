package cachex

import (
	"bytes"
	"net/http"
	"time"
)

// MiddlewareConfig controls the HTTP response cache.
type MiddlewareConfig struct {
	// Namespace for stored responses. Empty means DefaultNamespace.
	Namespace string

	// TTL per cached response. Zero means the cache default.
	TTL time.Duration

	// Methods that may be served from cache. Empty means GET only.
	Methods []string

	// KeyFunc derives the cache key from the request. The default is
	// method + request URI, which is only safe when every caller sees the
	// same response; include the authenticated principal for per-user data.
	KeyFunc func(*http.Request) string
}

// cachedResponse is the {status, headers, body} triple served on a hit.
type cachedResponse struct {
	status int
	header http.Header
	body   []byte
}

// recorder buffers the downstream handler's response so it can be captured
// into the cache after the handler returns, instead of patching the
// ResponseWriter the handler sees mid-flight.
type recorder struct {
	http.ResponseWriter

	status int
	buf    bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(p []byte) (int, error) {
	r.buf.Write(p)
	return r.ResponseWriter.Write(p)
}

func defaultKey(r *http.Request) string {
	return r.Method + " " + r.URL.RequestURI()
}

// Middleware serves matching requests from the cache, tagging responses with
// an X-Cache header (HIT or MISS). Only non-error responses (status < 400)
// are captured, so failures are never replayed.
func Middleware(cache *Cache, cfg MiddlewareConfig) func(http.Handler) http.Handler {
	methods := cfg.Methods
	if len(methods) == 0 {
		methods = []string{http.MethodGet}
	}
	allowed := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		allowed[m] = struct{}{}
	}

	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = defaultKey
	}

	opts := Options{TTL: cfg.TTL, Namespace: cfg.Namespace}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := allowed[r.Method]; !ok {
				next.ServeHTTP(w, r)
				return
			}

			key := keyFunc(r)

			if v, ok := cache.Get(key, opts); ok {
				resp := v.(cachedResponse)
				for name, vals := range resp.header {
					w.Header()[name] = vals
				}
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(resp.status)
				_, _ = w.Write(resp.body)
				return
			}

			w.Header().Set("X-Cache", "MISS")
			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status < http.StatusBadRequest {
				cache.Set(key, cachedResponse{
					status: rec.status,
					header: captureHeader(rec.Header()),
					body:   append([]byte(nil), rec.buf.Bytes()...),
				}, opts)
			}
		})
	}
}

// captureHeader copies headers for storage, dropping the diagnostic X-Cache
// tag so a replayed response carries its own.
func captureHeader(h http.Header) http.Header {
	out := h.Clone()
	out.Del("X-Cache")
	return out
}
