package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"chamado-service/apperrors"
	"chamado-service/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// SessionCookieName holds the signed session token.
	SessionCookieName = "chamado_session"
	// UserContextKey stores the *models.User of the request.
	UserContextKey = "user"
	// OwnerHeader names the user an API-key caller acts for.
	OwnerHeader = "X-Usuario"
)

// API key messages.
const (
	MsgAPIKeyNotConfigured = "API Key não configurada no servidor"
	MsgAPIKeyMissing       = "API Key não fornecida"
	MsgAPIKeyInvalid       = "API Key inválida"
	MsgOwnerMissing        = "Cabeçalho X-Usuario não fornecido"
)

// SessionValidator turns a session token into its user.
type SessionValidator interface {
	Validate(token string) (*models.User, error)
}

func sessionUser(c *gin.Context, tokens SessionValidator) (*models.User, bool) {
	raw, err := c.Cookie(SessionCookieName)
	if err != nil || raw == "" {
		return nil, false
	}
	user, err := tokens.Validate(raw)
	if err != nil {
		zap.L().Debug("rejected session cookie", zap.Error(err))
		return nil, false
	}
	return user, true
}

// RequireSessionPage redirects anonymous browsers to /login.
func RequireSessionPage(tokens SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := sessionUser(c, tokens)
		if !ok {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Set(UserContextKey, user)
		c.Next()
	}
}

// RequireSessionJSON answers 401 to anonymous JSON callers.
func RequireSessionJSON(tokens SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := sessionUser(c, tokens)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"erro": apperrors.MsgUnauthenticated, "sucesso": false})
			return
		}
		c.Set(UserContextKey, user)
		c.Next()
	}
}

// APIKeyAuth checks the headerName header against apiKey and takes the
// acting user from X-Usuario.
func APIKeyAuth(headerName, apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"erro": MsgAPIKeyNotConfigured})
			return
		}
		got := c.GetHeader(headerName)
		if got == "" {
			c.Header("WWW-Authenticate", "ApiKey")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"erro": MsgAPIKeyMissing})
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
			c.Header("WWW-Authenticate", "ApiKey")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"erro": MsgAPIKeyInvalid})
			return
		}

		owner := strings.TrimSpace(c.GetHeader(OwnerHeader))
		if owner == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"erro": MsgOwnerMissing})
			return
		}
		c.Set(UserContextKey, &models.User{Email: owner})
		c.Next()
	}
}

// GetUser returns the user set by the auth middlewares.
func GetUser(c *gin.Context) (*models.User, error) {
	val, exists := c.Get(UserContextKey)
	if !exists {
		return nil, errors.New("user not found in context")
	}
	user, ok := val.(*models.User)
	if !ok || user == nil || user.Email == "" {
		return nil, errors.New("user has invalid type in context")
	}
	return user, nil
}
