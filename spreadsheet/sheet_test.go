package spreadsheet_test

import (
	"bytes"
	"strings"
	"testing"

	"chamado-service/spreadsheet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, cells map[string]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for ref, v := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", ref, v))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParse_IndexesNonEmptyRows(t *testing.T) {
	buf := workbook(t, map[string]any{
		"A1": "Nome", "B1": "Unidade",
		"A2": "Ana", "B2": "Usina Sul",
		"A4": "Bia", "C4": 42,
	})

	sheet, err := spreadsheet.Parse(buf)
	require.NoError(t, err)

	assert.Equal(t, "Sheet1", sheet.Name)
	assert.Equal(t, 3, sheet.Len())

	row, ok := sheet.Row(4)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"A": "Bia", "C": "42"}, row.Cells)

	_, ok = sheet.Row(3)
	assert.False(t, ok)
}

func TestParse_RejectsNonWorkbook(t *testing.T) {
	_, err := spreadsheet.Parse(strings.NewReader("nome,unidade\nana,sul\n"))
	assert.Error(t, err)
}

func TestSheet_DataSkipsHeader(t *testing.T) {
	sheet := &spreadsheet.Sheet{Rows: []spreadsheet.Row{
		{Line: 5, Cells: map[string]string{"A": "c"}},
		{Line: 2, Cells: map[string]string{"A": "header"}},
		{Line: 3, Cells: map[string]string{"A": "b"}},
	}}

	lines := func(rows []spreadsheet.Row) []int {
		var out []int
		for _, r := range rows {
			out = append(out, r.Line)
		}
		return out
	}
	assert.Equal(t, []int{2, 3, 5}, lines(sheet.Data(false)))
	assert.Equal(t, []int{3, 5}, lines(sheet.Data(true)))
	assert.Empty(t, (&spreadsheet.Sheet{}).Data(true))
}

func TestFill(t *testing.T) {
	row := spreadsheet.Row{Line: 2, Cells: map[string]string{"A": "Ana", "AB": "TI"}}

	out, missing := spreadsheet.Fill("Acesso para <A> na área <ab>", row)
	assert.Equal(t, "Acesso para Ana na área TI", out)
	assert.Empty(t, missing)

	out, missing = spreadsheet.Fill("<A> <Z> <z> <1>", row)
	assert.Equal(t, "Ana <Z> <z> <1>", out)
	assert.Equal(t, []string{"Z"}, missing)
}
