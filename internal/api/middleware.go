package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// RequestIDHeader is the header key for request ID
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the context key for request ID
	RequestIDKey = "request_id"
)

// RequestID adds a unique request ID to each request, reusing the caller's when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID returns the request ID from context
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		if requestID, ok := id.(string); ok {
			return requestID
		}
	}
	return ""
}

// AccessLog logs one line per request: 5xx at Error, 4xx at Warn, the rest at Info.
func AccessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", GetRequestID(c)),
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			log.Error("server error", fields...)
		case status >= 400:
			log.Warn("client error", fields...)
		default:
			log.Info("request completed", fields...)
		}
	}
}

// limiterStore hands out one token bucket per client key.
type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	rps      rate.Limit
	burst    int
	ttl      time.Duration
	lastGC   time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	return &limiterStore{
		limiters: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		ttl:      3 * time.Minute,
	}
}

func (s *limiterStore) allow(key string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Drop idle visitors at most once per ttl.
	if now.Sub(s.lastGC) > s.ttl {
		for k, v := range s.limiters {
			if now.Sub(v.lastSeen) > s.ttl {
				delete(s.limiters, k)
			}
		}
		s.lastGC = now
	}

	v, ok := s.limiters[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.limiters[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// RateLimit rejects requests beyond rps (with the given burst) per client IP.
// rps <= 0 disables limiting.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = 1
	}

	store := newLimiterStore(rps, burst)
	return func(c *gin.Context) {
		if !store.allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
