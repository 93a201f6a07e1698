package gate

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const sessionContextKey = "gate.session"

// Gate groups the request-gate dependencies for the middleware chain.
type Gate struct {
	Sessions   SessionProvider
	CSRFSecret []byte
	Limiter    RateLimiter
	Log        *slog.Logger
}

// Middleware runs the full gate for mutating endpoints: CSRF, then session,
// then rate limit. Any failure aborts before the handler parses business
// data. CSRF runs first because it is pure HMAC math; the session check may
// hit a store.
func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
			return
		}

		// sid is the first token segment; full signature verification happens
		// in the session check below.
		sid, _, _ := strings.Cut(token, ".")
		if !VerifyCSRF(g.CSRFSecret, sid, c.GetHeader(CSRFHeader)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "invalid request token"})
			return
		}

		sess, err := g.Sessions.Session(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
			return
		}

		if !g.Limiter.Allow(c.ClientIP()) {
			g.Log.Warn("rate limit exceeded", "client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}

		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// AuthOnly gates read-only endpoints: session required, no CSRF or rate
// limiting.
func (g *Gate) AuthOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
			return
		}
		sess, err := g.Sessions.Session(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
			return
		}
		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// SessionFrom returns the authenticated session the gate attached, if any.
func SessionFrom(c *gin.Context) (*Session, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*Session)
	return sess, ok
}
