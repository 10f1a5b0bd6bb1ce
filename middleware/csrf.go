package middleware

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/justinas/nosurf"
	"go.uber.org/zap"
)

// CSRFFieldName is the form field carrying the CSRF token.
const CSRFFieldName = nosurf.FormFieldName

// CSRF wraps the router with nosurf. API-key routes and /health are exempt.
func CSRF(next http.Handler, secureCookie bool) http.Handler {
	h := nosurf.New(next)
	h.SetBaseCookie(http.Cookie{
		Path:     "/",
		HttpOnly: true,
		Secure:   secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	h.ExemptRegexp(regexp.MustCompile(`^/(api/v1/|health$)`))
	h.SetFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zap.L().Warn("csrf check failed", zap.String("path", r.URL.Path), zap.Error(nosurf.Reason(r)))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{"erro": "Token CSRF inválido", "sucesso": false})
	}))
	return h
}

// CSRFToken returns the token to embed in forms, or "" outside CSRF.
func CSRFToken(c *gin.Context) string {
	return nosurf.Token(c.Request)
}
