package api

import (
	"crypto/subtle"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("Request failed", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("Request rejected", fields...)
		default:
			log.Debug("Request served", fields...)
		}
	}
}

func recovery(logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("http")
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Panic recovered in handler",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
		}()
		c.Next()
	}
}

const (
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter держит token bucket на каждый IP клиента. Записи, которые
// не использовались дольше idleTTL, удаляются при очередном обращении.
type clientLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	clients   map[string]*clientEntry
	lastSweep time.Time
	now       func() time.Time
}

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	if burst <= 0 {
		burst = int(math.Ceil(perSecond))
	}
	return &clientLimiter{
		limit:     rate.Limit(perSecond),
		burst:     burst,
		idleTTL:   limiterIdleTTL,
		clients:   make(map[string]*clientEntry),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *clientLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= limiterSweepInterval {
		l.sweep(now)
	}

	entry, ok := l.clients[ip]
	if !ok {
		entry = &clientEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// sweep drops idle clients. Caller holds mu.
func (l *clientLimiter) sweep(now time.Time) {
	for ip, entry := range l.clients {
		if now.Sub(entry.lastSeen) > l.idleTTL {
			delete(l.clients, ip)
		}
	}
	l.lastSweep = now
}

func (l *clientLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// reserve returns zero when the request may proceed now, otherwise the wait.
func (l *clientLimiter) reserve(ip string) time.Duration {
	r := l.get(ip).Reserve()
	if !r.OK() {
		return time.Second
	}
	delay := r.Delay()
	if delay > 0 {
		r.Cancel()
	}
	return delay
}

func rateLimit(l *clientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if wait := l.reserve(c.ClientIP()); wait > 0 {
			seconds := int(math.Ceil(wait.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// requireAdmin пропускает только запросы с "Authorization: Bearer <token>".
// Пустой token отключает защищённые маршруты целиком.
func requireAdmin(token string, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("auth")
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "treasury administration is disabled"})
			return
		}

		header := c.GetHeader("Authorization")
		presented, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || presented == "" {
			c.Header("WWW-Authenticate", `Bearer realm="ovt-treasury"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing admin credentials"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			log.Warn("Rejected treasury request",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid admin credentials"})
			return
		}
		c.Next()
	}
}
