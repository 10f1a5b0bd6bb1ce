package controllers

import (
	"net/http"

	"chamado-service/apperrors"
	"chamado-service/logger"
	"chamado-service/middleware"
	"chamado-service/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// previewBody mirrors models.PreviewRequest with the optional fields left
// nil when absent.
type previewBody struct {
	Titulo               *string `json:"titulo" binding:"required"`
	Descricao            *string `json:"descricao" binding:"required"`
	QtdChamados          *int    `json:"qtd_chamados"`
	IgnorarPrimeiraLinha *bool   `json:"ignorar_primeira_linha"`
}

func (b previewBody) request() models.PreviewRequest {
	req := models.PreviewRequest{
		Titulo:               *b.Titulo,
		Descricao:            *b.Descricao,
		QtdChamados:          models.DefaultPreviewQuantity,
		IgnorarPrimeiraLinha: true,
	}
	if b.QtdChamados != nil {
		req.QtdChamados = *b.QtdChamados
	}
	if b.IgnorarPrimeiraLinha != nil {
		req.IgnorarPrimeiraLinha = *b.IgnorarPrimeiraLinha
	}
	return req
}

func jsonUser(c *gin.Context) (*models.User, bool) {
	user, err := middleware.GetUser(c)
	if err != nil {
		apperrors.Respond(c, apperrors.New(http.StatusUnauthorized, apperrors.MsgUnauthenticated, err))
		return nil, false
	}
	return user, true
}

// Preview handles POST /chamado/preview
func (cc *ChamadoController) Preview(c *gin.Context) {
	user, ok := jsonUser(c)
	if !ok {
		return
	}

	var body previewBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": MsgInvalidRequest, "preview": []models.PreviewItem{}})
		return
	}

	resp, appErr := cc.chamados.Preview(c.Request.Context(), user.Email, body.request())
	if appErr != nil {
		if appErr.Code >= http.StatusInternalServerError {
			logger.Error(c, "preview failed", appErr)
		}
		c.JSON(appErr.Code, gin.H{"erro": appErr.Message, "preview": []models.PreviewItem{}})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LoadSpreadsheet handles POST /chamado/carregar-planilha
func (cc *ChamadoController) LoadSpreadsheet(c *gin.Context) {
	user, ok := jsonUser(c)
	if !ok {
		return
	}

	loaded, appErr := cc.loadAttached(c, user.Email)
	if appErr == nil && loaded == nil {
		appErr = apperrors.BadRequest(MsgNoFile)
	}
	if appErr != nil {
		apperrors.Respond(c, appErr)
		return
	}

	logger.Info(c, "spreadsheet uploaded", zap.String("email", user.Email), zap.Int("rows", loaded.Rows))
	c.JSON(http.StatusOK, gin.H{
		"sucesso":            true,
		"mensagem":           loaded.Message,
		"linhas_processadas": loaded.Rows,
	})
}

// JobStatus handles GET /chamado/jobs/:id
func (cc *ChamadoController) JobStatus(c *gin.Context) {
	user, ok := jsonUser(c)
	if !ok {
		return
	}
	job, appErr := cc.chamados.JobStatus(c.Request.Context(), user.Email, c.Param("id"))
	if appErr != nil {
		apperrors.Respond(c, appErr)
		return
	}
	c.JSON(http.StatusOK, job)
}

// History handles GET /chamado/historico
func (cc *ChamadoController) History(c *gin.Context) {
	user, ok := jsonUser(c)
	if !ok {
		return
	}
	page, limit, err := cc.validator.ParsePagination(c)
	if err != nil {
		apperrors.Respond(c, apperrors.New(http.StatusBadRequest, MsgInvalidRequest, err))
		return
	}

	entries, total, appErr := cc.chamados.History(c.Request.Context(), user.Email, page, limit)
	if appErr != nil {
		apperrors.Respond(c, appErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"historico": entries,
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}
