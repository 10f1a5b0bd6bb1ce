package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"chamado-service/apperrors"
	"chamado-service/formctl"
	"chamado-service/models"
	"chamado-service/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Validation constants
const (
	MaxPageSize          = 100
	DefaultPageSize      = 20
	MaxSpreadsheetSize   = 10 * 1024 * 1024 // 10MB
	MsgSpreadsheetTooBig = "Arquivo muito grande (máximo 10MB)."
	MsgNoFile            = "Selecione uma planilha .xlsx."
	MsgInvalidRequest    = "Requisição inválida"
)

type spreadsheetUpload struct {
	FileName string `validate:"required,xlsx"`
	Size     int64  `validate:"gt=0,lte=10485760"`
}

// RequestValidator handles all input validation
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	_ = v.RegisterValidation("xlsx", func(fl validator.FieldLevel) bool {
		return strings.EqualFold(filepath.Ext(fl.Field().String()), ".xlsx")
	})
	return &RequestValidator{validate: v}
}

// ReadSpreadsheet returns the workbook uploaded in field. ok is false when
// the request carries no file.
func (rv *RequestValidator) ReadSpreadsheet(c *gin.Context, field string) (name string, data []byte, ok bool, appErr *apperrors.Error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil, false, nil
	}
	if err != nil {
		return "", nil, false, apperrors.New(http.StatusBadRequest, services.MsgInvalidSheet, err)
	}
	if fh.Filename == "" {
		return "", nil, false, nil
	}

	upload := spreadsheetUpload{FileName: fh.Filename, Size: fh.Size}
	if err := rv.validate.Struct(upload); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			switch {
			case verrs[0].Field() == "FileName":
				return "", nil, false, apperrors.BadRequest(services.MsgOnlyXLSX)
			case verrs[0].Tag() == "lte":
				return "", nil, false, apperrors.BadRequest(MsgSpreadsheetTooBig)
			}
		}
		return "", nil, false, apperrors.New(http.StatusBadRequest, services.MsgInvalidSheet, err)
	}

	f, err := fh.Open()
	if err != nil {
		return "", nil, false, apperrors.Internal("Erro ao ler arquivo enviado", err)
	}
	defer f.Close()

	data, err = io.ReadAll(io.LimitReader(f, MaxSpreadsheetSize))
	if err != nil {
		return "", nil, false, apperrors.Internal("Erro ao ler arquivo enviado", err)
	}
	return filepath.Base(fh.Filename), data, true, nil
}

// ValidateBatch checks a batch request built from the ticket form.
func (rv *RequestValidator) ValidateBatch(req models.BatchRequest) *apperrors.Error {
	err := rv.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.New(http.StatusBadRequest, MsgInvalidRequest, err)
	}
	switch verrs[0].Field() {
	case "Titulo", "Descricao":
		return apperrors.BadRequest(formctl.MsgSubmitMissingFields)
	case "QtdChamados":
		return apperrors.BadRequest(services.MsgInvalidQuantity)
	case "InicioLinha":
		return apperrors.BadRequest("inicio_linha deve ser maior que zero")
	}
	return apperrors.New(http.StatusBadRequest, MsgInvalidRequest, err)
}

// ParsePagination reads page and limit, clamping limit to MaxPageSize.
func (rv *RequestValidator) ParsePagination(c *gin.Context) (int, int, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 0, 0, errors.New("invalid page number")
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize)))
	if err != nil || limit < 1 {
		return 0, 0, errors.New("invalid page size")
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit, nil
}

// readFields collects the ticket form values. A form without the skip-header
// field counts as checked.
func readFields(c *gin.Context) (formctl.FormFields, int) {
	fields := formctl.FormFields{
		Title:         c.PostForm("ds_titulo"),
		Description:   c.PostForm("ds_chamado"),
		Quantity:      c.PostForm("qtd_chamados"),
		SkipFirstLine: true,
	}
	if vals, ok := c.GetPostFormArray("ignorar_primeira_linha"); ok {
		fields.SkipFirstLine = false
		for _, v := range vals {
			if v == "1" || v == "true" || v == "on" {
				fields.SkipFirstLine = true
			}
		}
	}

	inicio := 1
	if v := strings.TrimSpace(c.PostForm("inicio_linha")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			inicio = n
		} else {
			inicio = 0
		}
	}
	return fields, inicio
}

// submitQuantity parses the ticket count of a submit. Empty means one.
func submitQuantity(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func batchMessage(r *models.BatchResult) string {
	msg := fmt.Sprintf("%d chamado(s) criado(s) com sucesso!", r.Sucessos)
	if r.Erros > 0 {
		msg += fmt.Sprintf(" %d chamado(s) falharam.", r.Erros)
	}
	return msg
}
