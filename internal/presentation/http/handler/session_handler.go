package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sangkips/admin-console/internal/application/service"
	"github.com/sangkips/admin-console/internal/presentation/http/dto/response"
	"github.com/sangkips/admin-console/internal/presentation/http/middleware"
	"github.com/sangkips/admin-console/pkg/utils"
)

// SessionHandler handles console session HTTP requests
type SessionHandler struct {
	sessions     *service.SessionService
	tokens       *utils.SessionTokenManager
	secureCookie bool
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *service.SessionService, tokens *utils.SessionTokenManager, secureCookie bool) *SessionHandler {
	return &SessionHandler{sessions: sessions, tokens: tokens, secureCookie: secureCookie}
}

// SessionCreatedResponse is returned when a console session is mounted
type SessionCreatedResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expires_in"`
	CreatedAt time.Time `json:"created_at"`
}

// Create mounts a new console session; its catalogs load in the background
func (h *SessionHandler) Create(c *gin.Context) {
	sess := h.sessions.Create(c.Request.Context())

	token, err := h.tokens.GenerateSessionToken(sess.ID)
	if err != nil {
		h.sessions.Delete(sess.ID)
		response.Error(c, err)
		return
	}

	maxAge := int(h.tokens.Expiry().Seconds())
	middleware.SetSessionCookie(c, token, maxAge, h.secureCookie)

	response.Created(c, "Console session created", SessionCreatedResponse{
		SessionID: sess.ID,
		Token:     token,
		ExpiresIn: int64(maxAge),
		CreatedAt: sess.CreatedAt,
	})
}

// Get returns the composer snapshot of the current session
func (h *SessionHandler) Get(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	response.OK(c, "Session retrieved", sess.Composer.Snapshot())
}

// Delete ends the current session
func (h *SessionHandler) Delete(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	h.sessions.Delete(sess.ID)
	middleware.SetSessionCookie(c, "", -1, h.secureCookie)
	response.NoContent(c)
}
