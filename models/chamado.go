package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultPreviewQuantity is used when no usable quantity is supplied.
const DefaultPreviewQuantity = 5

// PreviewRequest is the body of POST /chamado/preview.
type PreviewRequest struct {
	Titulo               string `json:"titulo"`
	Descricao            string `json:"descricao"`
	QtdChamados          int    `json:"qtd_chamados"`
	IgnorarPrimeiraLinha bool   `json:"ignorar_primeira_linha"`
}

// PreviewItem is one generated ticket in a preview.
type PreviewItem struct {
	Linha     int    `json:"linha"`
	Titulo    string `json:"titulo,omitempty"`
	Descricao string `json:"descricao,omitempty"`
	Erro      string `json:"erro,omitempty"`
}

// PreviewResponse is returned by POST /chamado/preview.
type PreviewResponse struct {
	Sucesso     bool          `json:"sucesso,omitempty"`
	Erro        string        `json:"erro,omitempty"`
	TotalLinhas int           `json:"total_linhas,omitempty"`
	Preview     []PreviewItem `json:"preview,omitempty"`
}

// BatchRequest selects which spreadsheet rows become tickets.
type BatchRequest struct {
	Titulo               string `json:"titulo" validate:"required"`
	Descricao            string `json:"descricao" validate:"required"`
	QtdChamados          int    `json:"qtd_chamados" validate:"gte=1"`
	InicioLinha          int    `json:"inicio_linha" validate:"gte=1"`
	IgnorarPrimeiraLinha bool   `json:"ignorar_primeira_linha"`
}

// BatchDetail reports the outcome of one row.
type BatchDetail struct {
	Linha    int    `json:"linha"`
	Sucesso  bool   `json:"sucesso"`
	Mensagem string `json:"mensagem"`
	Titulo   string `json:"titulo,omitempty"`
}

// BatchResult summarises a batch run.
type BatchResult struct {
	TotalProcessados int           `json:"total_processados"`
	Sucessos         int           `json:"sucessos"`
	Erros            int           `json:"erros"`
	Detalhes         []BatchDetail `json:"detalhes"`
}

// Batch job states.
const (
	JobStatusQueued     = "queued"
	JobStatusProcessing = "processing"
	JobStatusDone       = "done"
	JobStatusFailed     = "failed"
)

// BatchJob is the redis-persisted state of an asynchronous batch.
type BatchJob struct {
	ID        string       `json:"id"`
	Owner     string       `json:"owner"`
	Status    string       `json:"status"`
	Request   BatchRequest `json:"request"`
	Result    *BatchResult `json:"result,omitempty"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// TicketPayload is sent to the ticket API.
type TicketPayload struct {
	Usuario   string `json:"Usuario"`
	Titulo    string `json:"Titulo"`
	Descricao string `json:"Descricao"`
}

// EmployeeLookup is sent to the employee API.
type EmployeeLookup struct {
	Email string `json:"Email"`
}

// Employee is the employee API response. Unknown fields are ignored.
type Employee struct {
	Nome         string `json:"Nome"`
	Email        string `json:"Email"`
	Telefone     string `json:"Telefone"`
	Funcao       string `json:"Função"`
	Secao        string `json:"Seção"`
	Empresa      string `json:"Empresa"`
	CentroCusto  string `json:"Centro_Custo"`
	Chapa        string `json:"Chapa"`
	Gerencia     string `json:"Gerencia"`
	EmailPessoal string `json:"Email_Pessoal"`
	CodigoPessoa string `json:"Codigo_Pessoa"`
}

// EmployeeForm holds the read-only fields shown on the ticket form.
type EmployeeForm struct {
	Elaborador      string `json:"elaborador"`
	Solicitante     string `json:"solicitante"`
	DataAbertura    string `json:"data_abertura"`
	TelefoneContato string `json:"telefone_contato"`
	Cargo           string `json:"cargo"`
	Secao           string `json:"secao"`
	Empresa         string `json:"empresa"`
	CentroCusto     string `json:"centro_custo"`
	Chapa           string `json:"chapa"`
	Gerencia        string `json:"gerencia"`
	Email           string `json:"email"`
}

// User is the authenticated session principal.
type User struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// TicketLog is the GORM model recording every ticket creation attempt.
type TicketLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Usuario   string         `gorm:"type:varchar(256);not null;index" json:"usuario"`
	JobID     string         `gorm:"type:varchar(64);index" json:"job_id,omitempty"`
	Linha     int            `json:"linha"`
	Titulo    string         `gorm:"type:varchar(512)" json:"titulo"`
	Descricao string         `gorm:"type:text" json:"descricao"`
	Sucesso   bool           `gorm:"not null" json:"sucesso"`
	Mensagem  string         `gorm:"type:text" json:"mensagem"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BatchCompletedEvent is published to SNS when a batch finishes.
type BatchCompletedEvent struct {
	EventType string    `json:"event_type"`
	JobID     string    `json:"job_id,omitempty"`
	Usuario   string    `json:"usuario"`
	Total     int       `json:"total_processados"`
	Sucessos  int       `json:"sucessos"`
	Erros     int       `json:"erros"`
	Timestamp time.Time `json:"timestamp"`
}
