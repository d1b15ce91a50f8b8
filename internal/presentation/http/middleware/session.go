package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sangkips/admin-console/internal/application/service"
	"github.com/sangkips/admin-console/internal/observability/logger"
	"github.com/sangkips/admin-console/internal/presentation/http/dto/response"
	"github.com/sangkips/admin-console/pkg/apperror"
	"github.com/sangkips/admin-console/pkg/utils"
)

const (
	// SessionHeader carries the console session token
	SessionHeader = "X-Console-Session"
	// SessionCookie carries the console session token for plain browser downloads
	SessionCookie = "console_session"

	sessionKey   = "console_session"
	sessionIDKey = "session_id"
)

// SessionMiddleware resolves the console session of the request. Tokens past
// half their lifetime are replaced; the new one is returned in the session
// header and cookie.
func SessionMiddleware(tokens *utils.SessionTokenManager, sessions *service.SessionService, secureCookie bool, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			response.Unauthorized(c, "Console session token is required")
			c.Abort()
			return
		}

		claims, err := tokens.ValidateSessionToken(token)
		if err != nil {
			log.Debug("rejected console session token",
				zap.String("token", logger.MaskToken(token)),
				zap.Error(err),
			)
			response.Unauthorized(c, "Invalid or expired console session")
			c.Abort()
			return
		}

		sess, err := sessions.Get(claims.SessionID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		if tokens.NeedsRefresh(claims) {
			fresh, err := tokens.GenerateSessionToken(sess.ID)
			if err != nil {
				log.Warn("failed to refresh console session token", zap.String("session_id", sess.ID.String()), zap.Error(err))
			} else {
				c.Header(SessionHeader, fresh)
				SetSessionCookie(c, fresh, int(tokens.Expiry().Seconds()), secureCookie)
			}
		}

		c.Set(sessionKey, sess)
		c.Set(sessionIDKey, sess.ID)
		c.Next()
	}
}

// SetSessionCookie stores the session token in an HTTP-only cookie; a negative
// maxAge deletes it
func SetSessionCookie(c *gin.Context, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", "", secure, true)
}

func sessionToken(c *gin.Context) string {
	if token := strings.TrimSpace(c.GetHeader(SessionHeader)); token != "" {
		return token
	}
	if parts := strings.Fields(c.GetHeader("Authorization")); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// GetSession returns the session resolved by SessionMiddleware
func GetSession(c *gin.Context) (*service.Session, error) {
	val, exists := c.Get(sessionKey)
	if !exists {
		return nil, apperror.ErrSessionNotFound
	}
	sess, ok := val.(*service.Session)
	if !ok {
		return nil, apperror.ErrSessionNotFound
	}
	return sess, nil
}
