package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	deliverycontext "campus/internal/delivery/context"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// visitorTTL is how long an idle client's limiter is kept.
const visitorTTL = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware applies a token bucket per client IP
type RateLimitMiddleware struct {
	logger *slog.Logger
	limit  rate.Limit
	burst  int
	now    func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewRateLimitMiddleware creates a limiter allowing rps sustained requests and burst extra per client.
// A burst below 1 is raised to 1 so a single request always fits.
func NewRateLimitMiddleware(logger *slog.Logger, rps float64, burst int) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		logger:   logger,
		limit:    rate.Limit(rps),
		burst:    max(burst, 1),
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

// Handle rejects requests over the client's budget with 429
func (m *RateLimitMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ip := c.RealIP()
		if !m.limiterFor(ip).Allow() {
			m.logger.Warn("Rate limit exceeded",
				slog.String("request_id", deliverycontext.GetRequestID(c)),
				slog.String("remote_ip", ip),
			)

			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please wait")
		}

		return next(c)
	}
}

func (m *RateLimitMiddleware) limiterFor(ip string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, v := range m.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(m.visitors, key)
		}
	}

	v, ok := m.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.visitors[ip] = v
	}
	v.lastSeen = now

	return v.limiter
}
