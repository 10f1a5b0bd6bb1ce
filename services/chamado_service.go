package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"chamado-service/apperrors"
	"chamado-service/models"
	aws_pkg "chamado-service/pkg/aws"
	"chamado-service/providers"
	"chamado-service/repository"
	"chamado-service/spreadsheet"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// User-facing messages.
const (
	MsgOnlyXLSX          = "Apenas arquivos .xlsx são suportados."
	MsgInvalidSheet      = "Erro ao processar planilha. Verifique o formato do arquivo."
	MsgNoSheet           = "Nenhuma planilha carregada. Faça upload da planilha primeiro."
	MsgEmptySheet        = "Nenhuma linha válida encontrada na planilha"
	MsgInvalidQuantity   = "qtd_chamados deve ser maior que zero"
	MsgTicketCreated     = "Chamado criado com sucesso"
	MsgJobNotFound       = "Job não encontrado"
	msgSheetLoadedFormat = "Planilha carregada com sucesso! %d linha(s) processada(s)."
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SheetLoaded describes an accepted upload.
type SheetLoaded struct {
	FileName string
	Rows     int
	Message  string
}

// ChamadoService defines the ticket business logic.
type ChamadoService interface {
	LoadSpreadsheet(ctx context.Context, owner, filename string, data []byte) (*SheetLoaded, *apperrors.Error)
	CurrentSpreadsheet(ctx context.Context, owner string) (*repository.StoredSheet, *apperrors.Error)
	DiscardSpreadsheet(ctx context.Context, owner string) *apperrors.Error
	Preview(ctx context.Context, owner string, req models.PreviewRequest) (*models.PreviewResponse, *apperrors.Error)
	OpenTicket(ctx context.Context, owner, titulo, descricao string) *apperrors.Error
	OpenBatch(ctx context.Context, owner string, req models.BatchRequest) (*models.BatchResult, *apperrors.Error)
	EnqueueBatch(ctx context.Context, owner string, req models.BatchRequest) (*models.BatchJob, *apperrors.Error)
	JobStatus(ctx context.Context, owner, id string) (*models.BatchJob, *apperrors.Error)
	ProcessJob(ctx context.Context, id string) error
	History(ctx context.Context, owner string, page, limit int) ([]models.TicketLog, int64, *apperrors.Error)
}

// Dependencies wires a ChamadoService. Archiver, Publisher and Metrics are
// optional.
type Dependencies struct {
	Sheets    repository.SheetStore
	Jobs      repository.JobStore
	Logs      repository.TicketLogRepository
	Provider  providers.TicketProvider
	Archiver  aws_pkg.Archiver
	Publisher aws_pkg.SNSPublisher
	TopicArn  string
	Metrics   aws_pkg.MetricsRecorder
	Logger    *zap.Logger
}

type chamadoServiceImpl struct {
	Dependencies
}

// NewChamadoService creates a new ChamadoService.
func NewChamadoService(deps Dependencies) ChamadoService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &chamadoServiceImpl{Dependencies: deps}
}

func (s *chamadoServiceImpl) LoadSpreadsheet(ctx context.Context, owner, filename string, data []byte) (*SheetLoaded, *apperrors.Error) {
	if !strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return nil, apperrors.BadRequest(MsgOnlyXLSX)
	}

	sheet, err := spreadsheet.Parse(bytes.NewReader(data))
	if err != nil {
		s.Logger.Warn("spreadsheet parse failed", zap.String("owner", owner), zap.String("file", filename), zap.Error(err))
		return nil, apperrors.New(http.StatusBadRequest, MsgInvalidSheet, err)
	}
	if sheet.Len() == 0 {
		return nil, apperrors.BadRequest(MsgInvalidSheet)
	}

	stored := &repository.StoredSheet{FileName: filepath.Base(filename), UploadedAt: time.Now().UTC(), Sheet: *sheet}
	if err := s.Sheets.Save(ctx, owner, stored); err != nil {
		s.Logger.Error("failed to store spreadsheet", zap.String("owner", owner), zap.Error(err))
		return nil, apperrors.Internal("Erro ao salvar planilha", err)
	}

	if s.Archiver != nil {
		key := fmt.Sprintf("planilhas/%s/%s-%s", owner, stored.UploadedAt.Format("20060102T150405"), stored.FileName)
		if err := s.Archiver.Archive(ctx, key, xlsxContentType, data); err != nil {
			s.Logger.Warn("spreadsheet archive failed", zap.String("key", key), zap.Error(err))
		}
	}

	s.count(aws_pkg.MetricSpreadsheetsLoaded)
	s.Logger.Info("spreadsheet loaded",
		zap.String("owner", owner),
		zap.String("file", stored.FileName),
		zap.Int("rows", sheet.Len()),
	)
	return &SheetLoaded{
		FileName: stored.FileName,
		Rows:     sheet.Len(),
		Message:  fmt.Sprintf(msgSheetLoadedFormat, sheet.Len()),
	}, nil
}

func (s *chamadoServiceImpl) CurrentSpreadsheet(ctx context.Context, owner string) (*repository.StoredSheet, *apperrors.Error) {
	stored, err := s.Sheets.Get(ctx, owner)
	if errors.Is(err, repository.ErrSheetNotFound) {
		return nil, apperrors.BadRequest(MsgNoSheet)
	}
	if err != nil {
		s.Logger.Error("failed to read spreadsheet", zap.String("owner", owner), zap.Error(err))
		return nil, apperrors.Internal("Erro ao carregar planilha", err)
	}
	return stored, nil
}

func (s *chamadoServiceImpl) DiscardSpreadsheet(ctx context.Context, owner string) *apperrors.Error {
	if err := s.Sheets.Delete(ctx, owner); err != nil {
		return apperrors.Internal("Erro ao remover planilha", err)
	}
	return nil
}

// Preview fills the first qtd data rows without opening tickets.
func (s *chamadoServiceImpl) Preview(ctx context.Context, owner string, req models.PreviewRequest) (*models.PreviewResponse, *apperrors.Error) {
	if req.QtdChamados < 1 {
		return nil, apperrors.BadRequest(MsgInvalidQuantity)
	}
	stored, appErr := s.CurrentSpreadsheet(ctx, owner)
	if appErr != nil {
		return nil, appErr
	}
	if stored.Sheet.Len() == 0 {
		return nil, apperrors.BadRequest(MsgEmptySheet)
	}

	rows := stored.Sheet.Data(req.IgnorarPrimeiraLinha)
	n := min(req.QtdChamados, len(rows))

	items := make([]models.PreviewItem, 0, n)
	for _, row := range rows[:n] {
		titulo, descricao, erro := s.fillRow(req.Titulo, req.Descricao, row)
		if erro != "" {
			// Failed rows echo the unfilled templates.
			titulo, descricao = req.Titulo, req.Descricao
		}
		items = append(items, models.PreviewItem{
			Linha:     row.Line,
			Titulo:    titulo,
			Descricao: descricao,
			Erro:      erro,
		})
	}

	s.count(aws_pkg.MetricPreviewsGenerated)
	return &models.PreviewResponse{
		Sucesso:     true,
		TotalLinhas: len(rows),
		Preview:     items,
	}, nil
}

// fillRow substitutes the row into title and description. Placeholders
// without a value stay in the text. erro is set only when the title ends up
// blank.
func (s *chamadoServiceImpl) fillRow(titulo, descricao string, row spreadsheet.Row) (string, string, string) {
	t, missingT := spreadsheet.Fill(titulo, row)
	d, missingD := spreadsheet.Fill(descricao, row)

	missing := missingT
	for _, col := range missingD {
		if !contains(missing, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		s.Logger.Warn("placeholder without value left unreplaced", zap.Int("linha", row.Line), zap.Strings("colunas", missing))
	}
	if strings.TrimSpace(t) == "" {
		return t, d, fmt.Sprintf("Título vazio na linha %d", row.Line)
	}
	return t, d, ""
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func (s *chamadoServiceImpl) OpenTicket(ctx context.Context, owner, titulo, descricao string) *apperrors.Error {
	err := s.Provider.CreateTicket(ctx, models.TicketPayload{Usuario: owner, Titulo: titulo, Descricao: descricao})
	entry := &models.TicketLog{Usuario: owner, Titulo: titulo, Descricao: descricao, Sucesso: err == nil, Mensagem: MsgTicketCreated}
	if err != nil {
		entry.Mensagem = "Erro ao criar chamado: " + err.Error()
	}
	s.record(ctx, entry)

	if err != nil {
		s.count(aws_pkg.MetricTicketsFailed)
		s.Logger.Error("ticket creation failed", zap.String("owner", owner), zap.Error(err))
		return apperrors.BadGateway("Erro ao criar chamado: "+err.Error(), err)
	}
	s.count(aws_pkg.MetricTicketsCreated)
	s.Logger.Info("ticket created", zap.String("owner", owner), zap.String("titulo", titulo))
	return nil
}

func (s *chamadoServiceImpl) OpenBatch(ctx context.Context, owner string, req models.BatchRequest) (*models.BatchResult, *apperrors.Error) {
	return s.runBatch(ctx, owner, "", req)
}

func (s *chamadoServiceImpl) runBatch(ctx context.Context, owner, jobID string, req models.BatchRequest) (*models.BatchResult, *apperrors.Error) {
	stored, appErr := s.CurrentSpreadsheet(ctx, owner)
	if appErr != nil {
		return nil, appErr
	}
	if req.InicioLinha < 1 {
		req.InicioLinha = 1
	}

	var selected []spreadsheet.Row
	for _, row := range stored.Sheet.Data(req.IgnorarPrimeiraLinha) {
		if row.Line >= req.InicioLinha && len(selected) < req.QtdChamados {
			selected = append(selected, row)
		}
	}

	result := &models.BatchResult{Detalhes: []models.BatchDetail{}}
	if len(selected) == 0 {
		result.Erros = 1
		result.Detalhes = append(result.Detalhes, models.BatchDetail{
			Linha:    req.InicioLinha,
			Mensagem: fmt.Sprintf("Nenhuma linha encontrada a partir da linha %d", req.InicioLinha),
		})
		return result, nil
	}

	s.Logger.Info("opening tickets from spreadsheet",
		zap.String("owner", owner),
		zap.String("job_id", jobID),
		zap.Int("rows", len(selected)),
		zap.Int("inicio_linha", req.InicioLinha),
	)

	for _, row := range selected {
		result.TotalProcessados++
		titulo, descricao, erro := s.fillRow(req.Titulo, req.Descricao, row)
		detail := models.BatchDetail{Linha: row.Line}
		entry := &models.TicketLog{Usuario: owner, JobID: jobID, Linha: row.Line, Titulo: titulo, Descricao: descricao}

		switch {
		case erro != "":
			detail.Mensagem = erro
		default:
			if err := s.Provider.CreateTicket(ctx, models.TicketPayload{Usuario: owner, Titulo: titulo, Descricao: descricao}); err != nil {
				s.Logger.Error("ticket creation failed", zap.Int("linha", row.Line), zap.Error(err))
				detail.Mensagem = "Erro ao criar chamado: " + err.Error()
			} else {
				detail.Sucesso = true
				detail.Mensagem = MsgTicketCreated
				detail.Titulo = titulo
			}
		}

		if detail.Sucesso {
			result.Sucessos++
			s.count(aws_pkg.MetricTicketsCreated)
		} else {
			result.Erros++
			s.count(aws_pkg.MetricTicketsFailed)
		}
		entry.Sucesso = detail.Sucesso
		entry.Mensagem = detail.Mensagem
		s.record(ctx, entry)
		result.Detalhes = append(result.Detalhes, detail)
	}

	if err := s.Sheets.Delete(ctx, owner); err != nil {
		s.Logger.Warn("failed to discard spreadsheet", zap.String("owner", owner), zap.Error(err))
	}
	s.publishEvent(ctx, models.BatchCompletedEvent{
		EventType: "batch_completed",
		JobID:     jobID,
		Usuario:   owner,
		Total:     result.TotalProcessados,
		Sucessos:  result.Sucessos,
		Erros:     result.Erros,
		Timestamp: time.Now().UTC(),
	})
	return result, nil
}

func (s *chamadoServiceImpl) EnqueueBatch(ctx context.Context, owner string, req models.BatchRequest) (*models.BatchJob, *apperrors.Error) {
	if _, appErr := s.CurrentSpreadsheet(ctx, owner); appErr != nil {
		return nil, appErr
	}
	now := time.Now().UTC()
	job := &models.BatchJob{
		ID:        uuid.NewString(),
		Owner:     owner,
		Status:    models.JobStatusQueued,
		Request:   req,
		CreatedAt: now,
	}
	if err := s.Jobs.Enqueue(ctx, job); err != nil {
		s.Logger.Error("failed to enqueue batch", zap.String("owner", owner), zap.Error(err))
		return nil, apperrors.Internal("Erro ao enfileirar chamados", err)
	}
	s.Logger.Info("batch enqueued", zap.String("owner", owner), zap.String("job_id", job.ID))
	return job, nil
}

func (s *chamadoServiceImpl) JobStatus(ctx context.Context, owner, id string) (*models.BatchJob, *apperrors.Error) {
	job, err := s.Jobs.Get(ctx, id)
	if errors.Is(err, repository.ErrJobNotFound) || (err == nil && job.Owner != owner) {
		return nil, apperrors.NotFound(MsgJobNotFound)
	}
	if err != nil {
		return nil, apperrors.Internal("Erro ao consultar job", err)
	}
	return job, nil
}

// ProcessJob runs a queued batch and stores its outcome on the job.
func (s *chamadoServiceImpl) ProcessJob(ctx context.Context, id string) error {
	job, err := s.Jobs.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load job %s: %w", id, err)
	}

	job.Status = models.JobStatusProcessing
	if err := s.Jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("mark job %s processing: %w", id, err)
	}

	result, appErr := s.runBatch(ctx, job.Owner, job.ID, job.Request)
	if appErr != nil {
		job.Status = models.JobStatusFailed
		job.Error = appErr.Message
	} else {
		job.Status = models.JobStatusDone
		job.Result = result
	}
	if err := s.Jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("store job %s result: %w", id, err)
	}
	return nil
}

func (s *chamadoServiceImpl) History(ctx context.Context, owner string, page, limit int) ([]models.TicketLog, int64, *apperrors.Error) {
	entries, total, err := s.Logs.FindByUser(ctx, owner, page, limit)
	if err != nil {
		s.Logger.Error("failed to list ticket log", zap.String("owner", owner), zap.Error(err))
		return nil, 0, apperrors.Internal("Erro ao consultar histórico", err)
	}
	return entries, total, nil
}

func (s *chamadoServiceImpl) record(ctx context.Context, entry *models.TicketLog) {
	if s.Logs == nil {
		return
	}
	if err := s.Logs.Create(ctx, entry); err != nil {
		s.Logger.Warn("failed to record ticket log", zap.String("owner", entry.Usuario), zap.Error(err))
	}
}

func (s *chamadoServiceImpl) count(metric string) {
	if s.Metrics == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Metrics.RecordCount(ctx, metric, map[string]string{"Service": "chamado-service"})
	}()
}

func (s *chamadoServiceImpl) publishEvent(ctx context.Context, event models.BatchCompletedEvent) {
	if s.Publisher == nil || s.TopicArn == "" {
		return
	}
	b, err := json.Marshal(event)
	if err != nil {
		s.Logger.Error("failed to marshal event", zap.Error(err))
		return
	}
	if err := s.Publisher.Publish(ctx, s.TopicArn, b); err != nil {
		s.Logger.Error("failed to publish event", zap.String("event_type", event.EventType), zap.Error(err))
	}
}
