package formctl_test

import (
	"errors"
	"testing"

	"chamado-service/formctl"
	"chamado-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledFields() formctl.FormFields {
	return formctl.FormFields{Title: "Chamado <A>", Description: "Linha <B>", Quantity: "3", SkipFirstLine: true}
}

func TestReduce_FileSelectedRevealsSections(t *testing.T) {
	s, eff := formctl.Reduce(formctl.State{}, formctl.FileChanged{File: &formctl.SelectedFile{Name: "base.xlsx"}})

	assert.Equal(t, formctl.Effect{}, eff)
	assert.Contains(t, s.StatusText, "base.xlsx")
	assert.Equal(t, "✓ Arquivo selecionado: base.xlsx", s.StatusText)
	assert.Equal(t, formctl.Sections{Status: true, Quantity: true, SkipHeader: true, PreviewButton: true}, s.Sections)
}

func TestReduce_FileClearedHidesSections(t *testing.T) {
	s, _ := formctl.Reduce(formctl.State{}, formctl.FileChanged{File: &formctl.SelectedFile{Name: "base.xlsx"}})
	s, _ = formctl.Reduce(s, formctl.FileChanged{})

	assert.Empty(t, s.StatusText)
	assert.Equal(t, formctl.Sections{}, s.Sections)
}

func TestReduce_PreviewRequiresTitleAndDescription(t *testing.T) {
	cases := map[string]formctl.FormFields{
		"empty title":       {Description: "d"},
		"empty description": {Title: "t"},
		"both empty":        {},
	}
	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			before := formctl.State{Generation: 4}
			s, eff := formctl.Reduce(before, formctl.PreviewClicked{Fields: fields})

			assert.Nil(t, eff.Request)
			assert.Equal(t, formctl.MsgPreviewMissingFields, eff.Alert)
			assert.Equal(t, before, s)
		})
	}
}

func TestReduce_PreviewOpensLoadingModal(t *testing.T) {
	s, eff := formctl.Reduce(formctl.State{}, formctl.PreviewClicked{Fields: filledFields()})

	require.NotNil(t, eff.Request)
	assert.Empty(t, eff.Alert)
	assert.Equal(t, uint64(1), eff.Request.Generation)
	assert.Equal(t, models.PreviewRequest{
		Titulo:               "Chamado <A>",
		Descricao:            "Linha <B>",
		QtdChamados:          3,
		IgnorarPrimeiraLinha: true,
	}, eff.Request.Body)
	assert.Equal(t, formctl.Modal{Visible: true, Loading: true}, s.Modal)
}

func TestReduce_PreviewQuantityFallback(t *testing.T) {
	for _, q := range []string{"abc", ""} {
		f := filledFields()
		f.Quantity = q
		_, eff := formctl.Reduce(formctl.State{}, formctl.PreviewClicked{Fields: f})
		require.NotNil(t, eff.Request)
		assert.Equal(t, 5, eff.Request.Body.QtdChamados, "quantity %q", q)
	}

	f := filledFields()
	f.Quantity = "12"
	_, eff := formctl.Reduce(formctl.State{}, formctl.PreviewClicked{Fields: f})
	require.NotNil(t, eff.Request)
	assert.Equal(t, 12, eff.Request.Body.QtdChamados)
}

func TestReduce_PreviewSettledSuccess(t *testing.T) {
	s, eff := formctl.Reduce(formctl.State{}, formctl.PreviewClicked{Fields: filledFields()})
	gen := eff.Request.Generation

	s, _ = formctl.Reduce(s, formctl.PreviewSettled{Generation: gen, Result: formctl.PreviewResult{
		OK: true,
		Body: models.PreviewResponse{
			TotalLinhas: 3,
			Preview: []models.PreviewItem{
				{Linha: 1, Titulo: "A", Descricao: "B"},
				{Linha: 2, Erro: "bad row"},
			},
		},
	}})

	assert.True(t, s.Modal.Visible)
	assert.False(t, s.Modal.Loading)
	assert.Empty(t, s.Modal.Error)
	require.NotNil(t, s.Modal.Content)
	assert.Equal(t, 3, s.Modal.Content.TotalRows)
	assert.Equal(t, []formctl.PreviewRow{
		{Line: 1, Title: "A", Description: "B"},
		{Line: 2, Error: "bad row", Title: "(vazio)", Description: "(vazio)"},
	}, s.Modal.Content.Rows)
}

func TestReduce_PreviewSettledServerError(t *testing.T) {
	cases := []struct {
		name   string
		result formctl.PreviewResult
		want   string
	}{
		{"erro field", formctl.PreviewResult{OK: true, Body: models.PreviewResponse{Erro: "falha"}}, "falha"},
		{"http error with message", formctl.PreviewResult{OK: false, Body: models.PreviewResponse{Erro: "sem planilha"}}, "sem planilha"},
		{"http error without message", formctl.PreviewResult{OK: false}, formctl.MsgPreviewFallback},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, eff := formctl.Reduce(formctl.State{}, formctl.PreviewClicked{Fields: filledFields()})
			s, _ = formctl.Reduce(s, formctl.PreviewSettled{Generation: eff.Request.Generation, Result: tc.result})

			assert.False(t, s.Modal.Loading)
			assert.Equal(t, tc.want, s.Modal.Error)
			assert.Nil(t, s.Modal.Content)
		})
	}
}

func TestReduce_PreviewFailed(t *testing.T) {
	s, eff := formctl.Reduce(formctl.State{}, formctl.PreviewClicked{Fields: filledFields()})
	s, _ = formctl.Reduce(s, formctl.PreviewFailed{Generation: eff.Request.Generation, Err: errors.New("connection refused")})

	assert.False(t, s.Modal.Loading)
	assert.Equal(t, "Erro ao carregar prévia: connection refused", s.Modal.Error)
	assert.Nil(t, s.Modal.Content)
}

func TestReduce_StaleResultIsDropped(t *testing.T) {
	s, first := formctl.Reduce(formctl.State{}, formctl.PreviewClicked{Fields: filledFields()})
	s, second := formctl.Reduce(s, formctl.PreviewClicked{Fields: filledFields()})
	require.NotEqual(t, first.Request.Generation, second.Request.Generation)

	s, _ = formctl.Reduce(s, formctl.PreviewSettled{Generation: second.Request.Generation, Result: formctl.PreviewResult{
		OK: true, Body: models.PreviewResponse{Preview: []models.PreviewItem{{Linha: 7, Titulo: "novo"}}},
	}})
	after := s

	s, _ = formctl.Reduce(s, formctl.PreviewSettled{Generation: first.Request.Generation, Result: formctl.PreviewResult{
		OK: true, Body: models.PreviewResponse{Preview: []models.PreviewItem{{Linha: 2, Titulo: "velho"}}},
	}})
	assert.Equal(t, after, s)

	s, _ = formctl.Reduce(s, formctl.PreviewFailed{Generation: first.Request.Generation, Err: errors.New("late")})
	assert.Equal(t, after, s)
}

func TestReduce_ModalDismissal(t *testing.T) {
	open, _ := formctl.Reduce(formctl.State{}, formctl.PreviewClicked{Fields: filledFields()})
	require.True(t, open.Modal.Visible)

	s, _ := formctl.Reduce(open, formctl.CloseClicked{})
	assert.False(t, s.Modal.Visible)

	s, _ = formctl.Reduce(open, formctl.ModalClicked{OnBackdrop: true})
	assert.False(t, s.Modal.Visible)

	s, _ = formctl.Reduce(open, formctl.KeyPressed{Key: "Escape"})
	assert.False(t, s.Modal.Visible)

	s, _ = formctl.Reduce(open, formctl.ModalClicked{OnBackdrop: false})
	assert.True(t, s.Modal.Visible)

	s, _ = formctl.Reduce(open, formctl.KeyPressed{Key: "Enter"})
	assert.True(t, s.Modal.Visible)
}

func TestReduce_SettleAfterCloseKeepsModalHidden(t *testing.T) {
	s, eff := formctl.Reduce(formctl.State{}, formctl.PreviewClicked{Fields: filledFields()})
	s, _ = formctl.Reduce(s, formctl.CloseClicked{})
	s, _ = formctl.Reduce(s, formctl.PreviewSettled{Generation: eff.Request.Generation, Result: formctl.PreviewResult{OK: true}})

	assert.False(t, s.Modal.Visible)
	assert.NotNil(t, s.Modal.Content)
}

func TestReduce_SubmitValidation(t *testing.T) {
	_, eff := formctl.Reduce(formctl.State{}, formctl.SubmitRequested{Fields: formctl.FormFields{Title: "t"}})
	assert.True(t, eff.PreventSubmit)
	assert.Equal(t, formctl.MsgSubmitMissingFields, eff.Alert)

	_, eff = formctl.Reduce(formctl.State{}, formctl.SubmitRequested{Fields: formctl.FormFields{Title: "t", Description: "d"}})
	assert.False(t, eff.PreventSubmit)
	assert.Empty(t, eff.Alert)
}

func TestParseQuantity(t *testing.T) {
	cases := map[string]int{
		"":      5,
		"abc":   5,
		"0":     5,
		"12":    12,
		" 7":    7,
		"12abc": 12,
		"-3":    -3,
		"+4":    4,

		"100000":                formctl.MaxQuantity,
		"100001":                formctl.MaxQuantity,
		"99999999999999999999":  formctl.MaxQuantity,
		"-99999999999999999999": -formctl.MaxQuantity,
	}
	for in, want := range cases {
		assert.Equal(t, want, formctl.ParseQuantity(in), "input %q", in)
	}
}

func TestNew_ValidatesElements(t *testing.T) {
	_, err := formctl.New(formctl.DefaultElements())
	assert.NoError(t, err)

	elems := formctl.DefaultElements()
	elems.ModalContent = ""
	_, err = formctl.New(elems)
	assert.ErrorIs(t, err, formctl.ErrMissingElement)
	assert.Contains(t, err.Error(), "modal content")
}
