package controllers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"chamado-service/apperrors"
	"chamado-service/formctl"
	"chamado-service/logger"
	"chamado-service/middleware"
	"chamado-service/models"
	"chamado-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UI events accepted by POST /chamado/ui.
const (
	EventPreview  = "preview"
	EventClose    = "fechar"
	EventBackdrop = "fundo"
	EventContent  = "conteudo"
	EventKey      = "tecla"
	EventClear    = "limpar"
)

const MsgTicketCreatedPage = "Chamado criado com sucesso!"

// SheetSummary describes the spreadsheet currently loaded for a user.
type SheetSummary struct {
	FileName string
	Rows     int
}

// ChamadoPage is the data of chamado.tmpl.
type ChamadoPage struct {
	User        *models.User
	Dados       *models.EmployeeForm
	Error       string
	Success     string
	Alert       string
	Fields      formctl.FormFields
	InicioLinha int
	Sheet       *SheetSummary
	State       formctl.State
	Elements    formctl.Elements
	CSRFField   string
	CSRFToken   string
	Refresh     bool
	Job         *models.BatchJob
}

type draft struct {
	fields formctl.FormFields
	inicio int
}

// draftStore keeps the last typed form values per user between redirects.
type draftStore struct {
	mu sync.Mutex
	m  map[string]draft
}

func (d *draftStore) get(owner string) draft {
	d.mu.Lock()
	defer d.mu.Unlock()
	if v, ok := d.m[owner]; ok {
		return v
	}
	return draft{fields: formctl.FormFields{SkipFirstLine: true}, inicio: 1}
}

func (d *draftStore) set(owner string, v draft) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m[owner] = v
}

func (d *draftStore) clear(owner string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.m, owner)
}

// ChamadoController handles the ticket page, its form events and the JSON
// routes.
type ChamadoController struct {
	chamados    services.ChamadoService
	employees   services.EmployeeService
	forms       *formctl.Registry
	validator   *RequestValidator
	drafts      *draftStore
	previewWait time.Duration
}

// NewChamadoController creates a new ChamadoController. previewWait bounds
// how long a preview click waits for the result before the page falls back
// to refreshing.
// Drafts live as long as the owner's form loop.
func NewChamadoController(chamados services.ChamadoService, employees services.EmployeeService, forms *formctl.Registry, previewWait time.Duration) *ChamadoController {
	cc := &ChamadoController{
		chamados:    chamados,
		employees:   employees,
		forms:       forms,
		validator:   NewRequestValidator(),
		drafts:      &draftStore{m: make(map[string]draft)},
		previewWait: previewWait,
	}
	forms.OnEvict(cc.drafts.clear)
	return cc
}

// ServicePreviewer answers form previews in process. Service errors become
// failed results carrying the message, like a non-2xx JSON answer would.
func ServicePreviewer(svc services.ChamadoService, owner string) formctl.Previewer {
	return formctl.PreviewerFunc(func(ctx context.Context, req models.PreviewRequest) (formctl.PreviewResult, error) {
		resp, appErr := svc.Preview(ctx, owner, req)
		if appErr != nil {
			return formctl.PreviewResult{Body: models.PreviewResponse{Erro: appErr.Message}}, nil
		}
		return formctl.PreviewResult{OK: true, Body: *resp}, nil
	})
}

func currentUser(c *gin.Context) (*models.User, bool) {
	user, err := middleware.GetUser(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
		return nil, false
	}
	return user, true
}

func (cc *ChamadoController) newPage(c *gin.Context, user *models.User) *ChamadoPage {
	ctx := c.Request.Context()
	state := cc.forms.Get(user.Email).Snapshot()
	d := cc.drafts.get(user.Email)

	page := &ChamadoPage{
		User:        user,
		Fields:      d.fields,
		InicioLinha: d.inicio,
		State:       state,
		Elements:    cc.forms.Elements(),
		CSRFField:   middleware.CSRFFieldName,
		CSRFToken:   middleware.CSRFToken(c),
		Refresh:     state.Modal.Visible && state.Modal.Loading,
	}

	dados, appErr := cc.employees.Form(ctx, *user)
	if appErr != nil {
		page.Error = appErr.Message
	} else {
		page.Dados = dados
	}
	if stored, appErr := cc.chamados.CurrentSpreadsheet(ctx, user.Email); appErr == nil {
		page.Sheet = &SheetSummary{FileName: stored.FileName, Rows: stored.Sheet.Len()}
	}
	cc.syncSheet(user.Email, page)
	return page
}

// syncSheet aligns the form loop with the stored spreadsheet. The loop is
// rebuilt empty after idle eviction or a restart while the sheet outlives
// it, and a discarded sheet must not leave its controls behind.
func (cc *ChamadoController) syncSheet(owner string, page *ChamadoPage) {
	loop := cc.forms.Get(owner)
	switch {
	case page.Sheet != nil && page.State.StatusText == "":
		loop.Dispatch(formctl.FileChanged{File: &formctl.SelectedFile{Name: page.Sheet.FileName}})
	case page.Sheet == nil && page.State.Sections.Status:
		loop.Dispatch(formctl.FileChanged{})
	default:
		return
	}
	page.State = loop.Snapshot()
	page.Refresh = page.State.Modal.Visible && page.State.Modal.Loading
}

func (cc *ChamadoController) render(c *gin.Context, code int, page *ChamadoPage) {
	page.State = cc.forms.Get(page.User.Email).Snapshot()
	page.Refresh = page.State.Modal.Visible && page.State.Modal.Loading
	c.HTML(code, "chamado.tmpl", page)
}

func (cc *ChamadoController) fail(c *gin.Context, page *ChamadoPage, appErr *apperrors.Error) {
	page.Error = appErr.Message
	cc.render(c, appErr.Code, page)
}

// loadAttached loads a spreadsheet sent with the form, if any, and reports
// it to the user's form loop.
func (cc *ChamadoController) loadAttached(c *gin.Context, owner string) (*services.SheetLoaded, *apperrors.Error) {
	name, data, ok, appErr := cc.validator.ReadSpreadsheet(c, "planilha")
	if appErr != nil || !ok {
		return nil, appErr
	}
	loaded, appErr := cc.chamados.LoadSpreadsheet(c.Request.Context(), owner, name, data)
	if appErr != nil {
		return nil, appErr
	}
	cc.forms.Get(owner).Dispatch(formctl.FileChanged{File: &formctl.SelectedFile{Name: loaded.FileName}})
	return loaded, nil
}

// Page handles GET /chamado
func (cc *ChamadoController) Page(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	page := cc.newPage(c, user)
	if page.Dados != nil {
		logger.Info(c, "employee data loaded", zap.String("email", user.Email))
	}
	cc.render(c, http.StatusOK, page)
}

// Submit handles POST /chamado
func (cc *ChamadoController) Submit(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	owner := user.Email
	ctx := c.Request.Context()

	fields, inicio := readFields(c)
	cc.drafts.set(owner, draft{fields: fields, inicio: inicio})

	loop := cc.forms.Get(owner)
	if eff := loop.Dispatch(formctl.SubmitRequested{Fields: fields}); eff.PreventSubmit {
		page := cc.newPage(c, user)
		page.Alert = eff.Alert
		cc.render(c, http.StatusBadRequest, page)
		return
	}

	page := cc.newPage(c, user)
	if page.Dados == nil {
		cc.render(c, http.StatusBadGateway, page)
		return
	}
	if s := c.PostForm("solicitante"); s != "" {
		page.Dados.Solicitante = s
	}
	if t := c.PostForm("num_tel_contato"); t != "" {
		page.Dados.TelefoneContato = t
	}

	loaded, appErr := cc.loadAttached(c, owner)
	if appErr != nil {
		cc.fail(c, page, appErr)
		return
	}
	if loaded != nil {
		page.Sheet = &SheetSummary{FileName: loaded.FileName, Rows: loaded.Rows}
	}

	if page.Sheet == nil {
		if appErr := cc.chamados.OpenTicket(ctx, owner, fields.Title, fields.Description); appErr != nil {
			cc.fail(c, page, appErr)
			return
		}
		cc.drafts.clear(owner)
		page.Fields, page.InicioLinha = cc.drafts.get(owner).fields, 1
		page.Success = MsgTicketCreatedPage
		cc.render(c, http.StatusOK, page)
		return
	}

	req := models.BatchRequest{
		Titulo:               fields.Title,
		Descricao:            fields.Description,
		QtdChamados:          submitQuantity(fields.Quantity),
		InicioLinha:          inicio,
		IgnorarPrimeiraLinha: fields.SkipFirstLine,
	}
	if appErr := cc.validator.ValidateBatch(req); appErr != nil {
		cc.fail(c, page, appErr)
		return
	}

	if c.Query("async") == "true" || c.PostForm("async") == "true" {
		job, appErr := cc.chamados.EnqueueBatch(ctx, owner, req)
		if appErr != nil {
			cc.fail(c, page, appErr)
			return
		}
		page.Job = job
		page.Success = fmt.Sprintf("Chamados enfileirados para processamento (job %s).", job.ID)
	} else {
		result, appErr := cc.chamados.OpenBatch(ctx, owner, req)
		if appErr != nil {
			cc.fail(c, page, appErr)
			return
		}
		page.Success = batchMessage(result)
		page.Sheet = nil
	}

	loop.Dispatch(formctl.FileChanged{})
	cc.drafts.clear(owner)
	page.Fields, page.InicioLinha = cc.drafts.get(owner).fields, 1
	cc.render(c, http.StatusOK, page)
}

// UploadPage handles POST /chamado/planilha
func (cc *ChamadoController) UploadPage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	fields, inicio := readFields(c)
	cc.drafts.set(user.Email, draft{fields: fields, inicio: inicio})

	loaded, appErr := cc.loadAttached(c, user.Email)
	page := cc.newPage(c, user)
	switch {
	case appErr != nil:
		cc.fail(c, page, appErr)
	case loaded == nil:
		cc.fail(c, page, apperrors.BadRequest(MsgNoFile))
	default:
		page.Success = loaded.Message
		cc.render(c, http.StatusOK, page)
	}
}

// UI handles POST /chamado/ui: one form-controller event per request.
func (cc *ChamadoController) UI(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	owner := user.Email
	loop := cc.forms.Get(owner)

	var eff formctl.Effect
	switch c.PostForm("evento") {
	case EventPreview:
		fields, inicio := readFields(c)
		cc.drafts.set(owner, draft{fields: fields, inicio: inicio})
		if _, appErr := cc.loadAttached(c, owner); appErr != nil {
			cc.fail(c, cc.newPage(c, user), appErr)
			return
		}
		eff = loop.Dispatch(formctl.PreviewClicked{Fields: fields})
		if eff.Request != nil && cc.previewWait > 0 {
			ctx, cancel := context.WithTimeout(c.Request.Context(), cc.previewWait)
			loop.Await(ctx)
			cancel()
		}
	case EventClose:
		eff = loop.Dispatch(formctl.CloseClicked{})
	case EventBackdrop:
		eff = loop.Dispatch(formctl.ModalClicked{OnBackdrop: true})
	case EventContent:
		eff = loop.Dispatch(formctl.ModalClicked{})
	case EventKey:
		eff = loop.Dispatch(formctl.KeyPressed{Key: c.PostForm("tecla")})
	case EventClear:
		if appErr := cc.chamados.DiscardSpreadsheet(c.Request.Context(), owner); appErr != nil {
			cc.fail(c, cc.newPage(c, user), appErr)
			return
		}
		eff = loop.Dispatch(formctl.FileChanged{})
	default:
		cc.fail(c, cc.newPage(c, user), apperrors.BadRequest("Evento inválido"))
		return
	}

	if eff.Alert != "" {
		page := cc.newPage(c, user)
		page.Alert = eff.Alert
		cc.render(c, http.StatusOK, page)
		return
	}
	c.Redirect(http.StatusSeeOther, "/chamado")
}
