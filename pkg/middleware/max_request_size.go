package middleware

import "net/http"

// MaxRequestSize caps the request body. Booking payloads are a few hundred
// bytes; anything near the cap is abuse, not a legitimate client.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
