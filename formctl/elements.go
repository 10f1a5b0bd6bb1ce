package formctl

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrMissingElement is returned by New when a required element id is empty.
var ErrMissingElement = errors.New("formctl: missing required element")

// Elements names the page elements the controller drives.
type Elements struct {
	FileInput          string
	Status             string
	QuantityGroup      string
	SkipHeaderGroup    string
	PreviewButtonGroup string
	Form               string
	TitleInput         string
	DescriptionInput   string
	QuantityInput      string
	SkipHeaderInput    string
	PreviewButton      string
	Modal              string
	ModalLoading       string
	ModalError         string
	ModalContent       string
	CloseButton        string
}

// DefaultElements returns the ids used by the ticket page.
func DefaultElements() Elements {
	return Elements{
		FileInput:          "planilha",
		Status:             "status",
		QuantityGroup:      "quantidade-group",
		SkipHeaderGroup:    "ignorar-cabecalho-group",
		PreviewButtonGroup: "preview-button-group",
		Form:               "formChamado",
		TitleInput:         "ds_titulo",
		DescriptionInput:   "ds_chamado",
		QuantityInput:      "qtd_chamados",
		SkipHeaderInput:    "ignorar_primeira_linha",
		PreviewButton:      "btn-preview",
		Modal:              "modal-preview",
		ModalLoading:       "modal-loading",
		ModalError:         "modal-error",
		ModalContent:       "modal-preview-content",
		CloseButton:        "btn-close-modal",
	}
}

// Validate reports the first empty element id.
func (e Elements) Validate() error {
	required := []struct {
		name, id string
	}{
		{"file input", e.FileInput},
		{"status", e.Status},
		{"quantity group", e.QuantityGroup},
		{"skip header group", e.SkipHeaderGroup},
		{"preview button group", e.PreviewButtonGroup},
		{"form", e.Form},
		{"title input", e.TitleInput},
		{"description input", e.DescriptionInput},
		{"quantity input", e.QuantityInput},
		{"skip header input", e.SkipHeaderInput},
		{"preview button", e.PreviewButton},
		{"modal", e.Modal},
		{"modal loading", e.ModalLoading},
		{"modal error", e.ModalError},
		{"modal content", e.ModalContent},
		{"close button", e.CloseButton},
	}
	for _, r := range required {
		if r.id == "" {
			return fmt.Errorf("%w: %s", ErrMissingElement, r.name)
		}
	}
	return nil
}

// Controller binds an element set to event loops.
type Controller struct {
	elems          Elements
	requestTimeout time.Duration
	logger         *zap.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithRequestTimeout bounds each preview request.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.requestTimeout = d
		}
	}
}

// WithLogger sets the logger used by loops.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New validates the element set and returns a Controller.
func New(elems Elements, opts ...Option) (*Controller, error) {
	if err := elems.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		elems:          elems,
		requestTimeout: 30 * time.Second,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Elements returns the element ids the controller was built with.
func (c *Controller) Elements() Elements {
	return c.elems
}
