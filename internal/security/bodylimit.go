package security

import (
	"bytes"
	"io"
	"net/http"
)

// BodyLimit caps request payload size. Settlement payloads are small; a cart
// is a few hundred bytes, so anything near the limit is malformed or hostile.
type BodyLimit struct {
	Max int64
}

// Middleware rejects requests exceeding the configured limit with HTTP 413.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.Max <= 0 || r.Body == nil || r.Body == http.NoBody {
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength > b.Max {
			tooLarge(w)
			return
		}
		body, ok, err := capRead(r.Body, b.Max)
		switch {
		case err != nil:
			http.Error(w, "unreadable request body", http.StatusBadRequest)
			return
		case !ok:
			tooLarge(w)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))
		next.ServeHTTP(w, r)
	})
}

// capRead drains rc up to max bytes. ok is false when the stream holds more.
func capRead(rc io.ReadCloser, max int64) ([]byte, bool, error) {
	defer func() { _ = rc.Close() }()
	buf, err := io.ReadAll(io.LimitReader(rc, max+1))
	if err != nil {
		return nil, false, err
	}
	return buf, int64(len(buf)) <= max, nil
}

func tooLarge(w http.ResponseWriter) {
	http.Error(w, "request body exceeds limit", http.StatusRequestEntityTooLarge)
}
