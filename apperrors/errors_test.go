package apperrors_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"chamado-service/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	appErr := apperrors.BadRequest("Apenas arquivos .xlsx são suportados.")
	wrapped := errors.Join(errors.New("ctx"), appErr)

	assert.Same(t, appErr, apperrors.From(wrapped))

	plain := apperrors.From(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, plain.Code)
	assert.Equal(t, apperrors.MsgInternal+": boom", plain.Error())
}

func TestErrorMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(apperrors.ErrorMiddleware())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(apperrors.NotFound("Job não encontrado"))
	})
	r.GET("/ok", func(c *gin.Context) {
		_ = c.Error(errors.New("ignored"))
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"erro":"Job não encontrado","sucesso":false}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
