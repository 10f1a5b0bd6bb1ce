package formctl

import "chamado-service/models"

// Messages shown by the form controller.
const (
	MsgPreviewMissingFields = "Por favor, preencha o título e a descrição antes de visualizar a prévia."
	MsgSubmitMissingFields  = "Por favor, preencha o título e a descrição do chamado."
	MsgPreviewFallback      = "Erro ao gerar prévia"
	MsgPreviewFailedPrefix  = "Erro ao carregar prévia: "
	MsgFileSelectedPrefix   = "✓ Arquivo selecionado: "

	KeyEscape = "Escape"
)

// FormFields are the current values of the ticket form.
type FormFields struct {
	Title         string
	Description   string
	Quantity      string
	SkipFirstLine bool
}

// Request builds the preview request body from the form values.
func (f FormFields) Request() models.PreviewRequest {
	return models.PreviewRequest{
		Titulo:               f.Title,
		Descricao:            f.Description,
		QtdChamados:          ParseQuantity(f.Quantity),
		IgnorarPrimeiraLinha: f.SkipFirstLine,
	}
}

// SelectedFile describes the file chosen in the file input.
type SelectedFile struct {
	Name string
}

// Sections holds the visibility of the file-dependent parts of the form.
type Sections struct {
	Status        bool
	Quantity      bool
	SkipHeader    bool
	PreviewButton bool
}

// Modal is the preview dialog. Error is shown when non-empty and Content when
// non-nil.
type Modal struct {
	Visible bool
	Loading bool
	Error   string
	Content *PreviewView
}

// State is the whole UI state of one ticket form.
type State struct {
	StatusText string
	Sections   Sections
	Modal      Modal
	// Generation identifies the latest preview request.
	Generation uint64
}

// Event is an input to Reduce.
type Event interface {
	event()
}

// FileChanged reports a change of the file input. A nil File clears it.
type FileChanged struct {
	File *SelectedFile
}

// PreviewClicked is a click on the preview button.
type PreviewClicked struct {
	Fields FormFields
}

// PreviewResult is a completed preview response.
type PreviewResult struct {
	// OK is true for a 2xx status.
	OK   bool
	Body models.PreviewResponse
}

// PreviewSettled delivers the response of the request with Generation.
type PreviewSettled struct {
	Generation uint64
	Result     PreviewResult
}

// PreviewFailed reports a transport or decoding failure.
type PreviewFailed struct {
	Generation uint64
	Err        error
}

// CloseClicked is a click on the modal close button.
type CloseClicked struct{}

// ModalClicked is a click inside the modal container. OnBackdrop is true when
// the target is the backdrop itself and not the dialog content.
type ModalClicked struct {
	OnBackdrop bool
}

// KeyPressed is a document keydown.
type KeyPressed struct {
	Key string
}

// SubmitRequested is an attempt to submit the ticket form.
type SubmitRequested struct {
	Fields FormFields
}

func (FileChanged) event()     {}
func (PreviewClicked) event()  {}
func (PreviewSettled) event()  {}
func (PreviewFailed) event()   {}
func (CloseClicked) event()    {}
func (ModalClicked) event()    {}
func (KeyPressed) event()      {}
func (SubmitRequested) event() {}

// Request is an outgoing preview request.
type Request struct {
	Generation uint64
	Body       models.PreviewRequest
}

// Effect is what the adapter must do after a reduction.
type Effect struct {
	Alert         string
	Request       *Request
	PreventSubmit bool
}
