package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UnauthorizedBody is the plain-text reply for a rejected request.
const UnauthorizedBody = "Bearer token is required!"

// public endpoints that do not need the shared bearer token; matched as
// prefixes of the lower-cased request path
var publicPrefixes = []string{
	"/account/verify-email",
	"/account/login",
	"/account/register",
}

func isPublicPath(path string) bool {
	p := strings.ToLower(path)
	if p == "/" {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// CheckBearer decides whether a request may pass the gate. The token is the
// last whitespace-separated field of the Authorization header and must equal
// secret. The returned reason is meant for logs only.
func CheckBearer(path string, header http.Header, secret string) (bool, string) {
	if isPublicPath(path) {
		return true, "public path"
	}
	fields := strings.Fields(header.Get("Authorization"))
	if len(fields) == 0 {
		return false, "missing authorization header"
	}
	token := fields[len(fields)-1]
	if secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
		return false, "token mismatch"
	}
	return true, "token accepted"
}

// BearerGate rejects non-public requests that do not carry the shared secret.
func BearerGate(secret string, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, reason := CheckBearer(c.Request.URL.Path, c.Request.Header, secret)
		if !ok {
			log.Infow("[auth][gate] rejected", "path", c.Request.URL.Path, "reason", reason)
			c.String(http.StatusUnauthorized, UnauthorizedBody)
			c.Abort()
			return
		}
		log.Debugw("[auth][gate] passed", "path", c.Request.URL.Path, "reason", reason)
		c.Next()
	}
}
