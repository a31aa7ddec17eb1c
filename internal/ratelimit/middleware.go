package ratelimit

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// CreateMiddleware rate-limits POST /api/Chat/create by the userId in the
// JSON request body. The body is restored for the downstream handler.
func (l *Limiter) CreateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(raw))

		var body struct {
			UserID string `json:"userId"`
		}
		_ = json.Unmarshal(raw, &body)

		if !l.AllowCreate(body.UserID) {
			log.Printf("[WARN] ratelimit.CreateMiddleware: rate limit exceeded for userId=%s", body.UserID)
			http.Error(w, "rate limit exceeded, please try again later", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PollMiddleware rate-limits POST /api/Chat/{sessionId}/poll by sessionId.
func (l *Limiter) PollMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionId")
		if !l.AllowPoll(sessionID) {
			log.Printf("[WARN] ratelimit.PollMiddleware: rate limit exceeded for session=%s", sessionID)
			http.Error(w, "rate limit exceeded, please try again later", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
