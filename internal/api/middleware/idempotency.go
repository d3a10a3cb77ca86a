package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	ChiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	HitHeader         = "X-Idempotency-Hit"
	// FailedHeader is set by handlers whose request failed behind a
	// success status. Such outcomes are never stored.
	FailedHeader = "X-Request-Failed"

	lockTTL    = 10 * time.Second
	resultTTL  = 24 * time.Hour
	processing = "PROCESSING"
)

// Idempotency replays the outcome of a state-changing request that carries
// an Idempotency-Key already seen. Requests without the header pass through,
// as do all requests when Redis is failing.
func Idempotency(redisClient *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(IdempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			idemKey := fmt.Sprintf("idempotency:%s", key)
			ctx := r.Context()

			// Lock the key; a miss means it is in progress or done.
			acquired, err := redisClient.SetNX(ctx, idemKey, processing, lockTTL).Result()
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if !acquired {
				val, err := redisClient.Get(ctx, idemKey).Result()
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set(HitHeader, "true")
				w.WriteHeader(http.StatusConflict)
				if err != nil || val == processing {
					w.Write([]byte(`{"error": "concurrent request"}`))
					return
				}
				w.Write([]byte(fmt.Sprintf(`{"error": "request already processed", "original_response": %s}`, val)))
				return
			}

			var body bytes.Buffer
			ww := ChiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&body)

			next.ServeHTTP(ww, r)

			// The outcome is stored even if the client went away.
			ctx = context.WithoutCancel(ctx)

			// Failures release the key so the client may retry.
			if ww.Status() >= http.StatusBadRequest || ww.Header().Get(FailedHeader) != "" {
				redisClient.Del(ctx, idemKey)
				return
			}

			stored := bytes.TrimSpace(body.Bytes())
			if len(stored) == 0 {
				stored = []byte(`"COMPLETED"`)
			}
			redisClient.Set(ctx, idemKey, stored, resultTTL)
		})
	}
}
