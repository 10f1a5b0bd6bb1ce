package controllers

import (
	"net/http"
	"strings"

	"chamado-service/formctl"
	"chamado-service/logger"
	"chamado-service/middleware"
	"chamado-service/providers"
	"chamado-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Login page messages.
const (
	MsgGoogleAuthFailed = "Falha na autenticação com Google"
	MsgDomainDenied     = "Acesso negado: domínio não autorizado"
	MsgAuthError        = "Erro ao processar autenticação"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 600
)

// LoginPage is the data of login.tmpl.
type LoginPage struct {
	Error string
}

// AuthController handles the Google login flow and the session cookie.
type AuthController struct {
	identity       providers.IdentityProvider
	tokens         *services.TokenService
	forms          *formctl.Registry
	allowedDomains []string
	secureCookie   bool
}

// NewAuthController creates a new AuthController. forms may be nil.
func NewAuthController(identity providers.IdentityProvider, tokens *services.TokenService, forms *formctl.Registry, allowedDomains []string, secureCookie bool) *AuthController {
	domains := make([]string, 0, len(allowedDomains))
	for _, d := range allowedDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			domains = append(domains, d)
		}
	}
	return &AuthController{
		identity:       identity,
		tokens:         tokens,
		forms:          forms,
		allowedDomains: domains,
		secureCookie:   secureCookie,
	}
}

// Root handles GET /
func (ac *AuthController) Root(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/login")
}

// LoginPage handles GET /login
func (ac *AuthController) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.tmpl", LoginPage{})
}

// GoogleLogin handles GET /login/google
func (ac *AuthController) GoogleLogin(c *gin.Context) {
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/login/google", "", ac.secureCookie, true)
	c.Redirect(http.StatusFound, ac.identity.AuthCodeURL(state))
}

// GoogleCallback handles GET /login/google/callback
func (ac *AuthController) GoogleCallback(c *gin.Context) {
	expected, _ := c.Cookie(oauthStateCookie)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, "", -1, "/login/google", "", ac.secureCookie, true)

	if expected == "" || c.Query("state") != expected {
		logger.Warn(c, "oauth state mismatch")
		c.HTML(http.StatusBadRequest, "login.tmpl", LoginPage{Error: MsgGoogleAuthFailed})
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Warn(c, "google callback without code", zap.String("error", c.Query("error")))
		c.HTML(http.StatusUnauthorized, "login.tmpl", LoginPage{Error: MsgGoogleAuthFailed})
		return
	}

	user, err := ac.identity.Exchange(c.Request.Context(), code)
	if err != nil {
		logger.Error(c, "google authentication failed", err)
		c.HTML(http.StatusBadGateway, "login.tmpl", LoginPage{Error: MsgAuthError})
		return
	}

	if !ac.domainAllowed(user.Email) {
		logger.Warn(c, "access denied for domain", zap.String("email", user.Email))
		c.HTML(http.StatusForbidden, "login.tmpl", LoginPage{Error: MsgDomainDenied})
		return
	}

	token, err := ac.tokens.Issue(*user)
	if err != nil {
		logger.Error(c, "failed to issue session token", err)
		c.HTML(http.StatusInternalServerError, "login.tmpl", LoginPage{Error: MsgAuthError})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, token, int(ac.tokens.TTL().Seconds()), "/", "", ac.secureCookie, true)
	logger.Info(c, "user authenticated", zap.String("email", user.Email))
	c.Redirect(http.StatusSeeOther, "/chamado")
}

// Logout handles GET /logout
func (ac *AuthController) Logout(c *gin.Context) {
	if raw, err := c.Cookie(middleware.SessionCookieName); err == nil {
		if user, err := ac.tokens.Validate(raw); err == nil {
			if ac.forms != nil {
				ac.forms.Forget(user.Email)
			}
			logger.Info(c, "logout", zap.String("email", user.Email))
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", ac.secureCookie, true)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (ac *AuthController) domainAllowed(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, d := range ac.allowedDomains {
		if domain == d {
			return true
		}
	}
	return false
}
