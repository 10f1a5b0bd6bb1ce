package routes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chamado-service/apperrors"
	"chamado-service/controllers"
	"chamado-service/formctl"
	"chamado-service/middleware"
	"chamado-service/models"
	"chamado-service/routes"
	"chamado-service/services"
	"chamado-service/web"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubChamados answers JobStatus only; other calls panic on the nil
// embedded interface.
type stubChamados struct {
	services.ChamadoService
	owners []string
}

func (s *stubChamados) JobStatus(ctx context.Context, owner, id string) (*models.BatchJob, *apperrors.Error) {
	s.owners = append(s.owners, owner)
	return &models.BatchJob{ID: id, Owner: owner, Status: models.JobStatusQueued}, nil
}

func setupRouter(t *testing.T) (*gin.Engine, *services.TokenService, *stubChamados) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := services.NewTokenService("routes-secret", time.Hour)
	require.NoError(t, err)
	ctrl, err := formctl.New(formctl.DefaultElements())
	require.NoError(t, err)
	svc := &stubChamados{}
	forms := formctl.NewRegistry(ctrl, func(owner string) formctl.Previewer {
		return controllers.ServicePreviewer(svc, owner)
	}, time.Hour)
	t.Cleanup(forms.Stop)

	tmpl, err := web.Templates()
	require.NoError(t, err)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	routes.RegisterRoutes(r,
		controllers.NewAuthController(nil, tokens, forms, []string{"uisa.com.br"}, false),
		controllers.NewChamadoController(svc, nil, forms, 0),
		routes.Options{
			Sessions:       tokens,
			APIKeyHeader:   "X-API-Key",
			APIKey:         "k1",
			AllowedOrigins: []string{"https://portal.uisa.com.br"},
		},
	)
	return r, tokens, svc
}

func do(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPublicRoutes(t *testing.T) {
	r, _, _ := setupRouter(t)

	w := do(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK"}`, w.Body.String())

	w = do(r, httptest.NewRequest(http.MethodGet, "/static/css/style.css", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ".hidden")

	w = do(r, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionGroups(t *testing.T) {
	r, tokens, svc := setupRouter(t)

	w := do(r, httptest.NewRequest(http.MethodGet, "/chamado", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = do(r, httptest.NewRequest(http.MethodPost, "/chamado/preview", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"erro":"`+apperrors.MsgUnauthenticated+`","sucesso":false}`, w.Body.String())

	token, err := tokens.Issue(models.User{Email: "ana@uisa.com.br"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/chamado/jobs/job-9", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	w = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"ana@uisa.com.br"}, svc.owners)
}

func TestAPIKeyGroup(t *testing.T) {
	r, _, svc := setupRouter(t)

	w := do(r, httptest.NewRequest(http.MethodGet, "/api/v1/chamado/jobs/job-1", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chamado/jobs/job-1", nil)
	req.Header.Set("X-API-Key", "k1")
	w = do(r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), middleware.MsgOwnerMissing)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/chamado/jobs/job-1", nil)
	req.Header.Set("X-API-Key", "k1")
	req.Header.Set(middleware.OwnerHeader, "robo@uisa.com.br")
	req.Header.Set("Origin", "https://portal.uisa.com.br")
	w = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://portal.uisa.com.br", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, []string{"robo@uisa.com.br"}, svc.owners)
}

func TestAPIPreflight(t *testing.T) {
	r, _, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chamado/preview", nil)
	req.Header.Set("Origin", "https://portal.uisa.com.br")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "X-API-Key")
	w := do(r, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Api-Key")
}
