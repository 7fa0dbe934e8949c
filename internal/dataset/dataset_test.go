package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"excelEvidence/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTable() *Table {
	return NewTable("base.xlsx",
		[]string{"CUENTA", "GESTION EFECTIVA", "FECHA"},
		[][]string{
			{"123", "IVR", "2024-01-01"},
			{" 123 ", "sms, ivr", "2024-01-02"},
			{"1234", "IVR", "2024-01-03"},
			{"123", "CALL", "2024-01-04"},
			{"999"},
		},
	)
}

func TestFindRows(t *testing.T) {
	tests := []struct {
		name      string
		column    string
		key       string
		filter    Filter
		wantDates []string
		wantErr   error
	}{
		{"exact trimmed equality", "CUENTA", "123", Filter{}, []string{"2024-01-01", "2024-01-02", "2024-01-04"}, nil},
		{"key is trimmed", "CUENTA", " 123", Filter{}, []string{"2024-01-01", "2024-01-02", "2024-01-04"}, nil},
		{"no substring match", "CUENTA", "12", Filter{}, nil, nil},
		{"evidence filter is case-insensitive", "CUENTA", "123", Filter{Column: "GESTION EFECTIVA", Contains: "ivr"}, []string{"2024-01-01", "2024-01-02"}, nil},
		{"short row padded", "CUENTA", "999", Filter{}, []string{""}, nil},
		{"missing join column", "cuenta", "123", Filter{}, nil, ErrColumnNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := FindRows(sampleTable(), tt.column, tt.key, tt.filter)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Equal(t, 0, rows.Len())
				return
			}
			require.NoError(t, err)
			var dates []string
			for i := range rows.Rows {
				dates = append(dates, rows.Value(i, "FECHA"))
			}
			assert.Equal(t, tt.wantDates, dates)
		})
	}
}

func TestFirst(t *testing.T) {
	rec, ok := First(sampleTable(), "CUENTA", "1234")
	require.True(t, ok)
	assert.Equal(t, "2024-01-03", rec["FECHA"])

	_, ok = First(sampleTable(), "CUENTA", "0")
	assert.False(t, ok)
}

func TestNewTableHeaders(t *testing.T) {
	tbl := NewTable("x", []string{"A", "", "A"}, nil)
	assert.Equal(t, []string{"A", "Unnamed: 1", "A.1"}, tbl.Columns)
}

func TestWithColumn(t *testing.T) {
	src := sampleTable()
	stamped := src.WithColumn("TIPO DE GESTION", "IVR")
	assert.Equal(t, "TIPO DE GESTION", stamped.Columns[len(stamped.Columns)-1])
	for i := range stamped.Rows {
		assert.Equal(t, "IVR", stamped.Value(i, "TIPO DE GESTION"))
	}
	assert.False(t, src.HasColumn("TIPO DE GESTION"))

	again := stamped.WithColumn("TIPO DE GESTION", "CALL")
	assert.Len(t, again.Columns, len(stamped.Columns))
	assert.Equal(t, "CALL", again.Value(0, "TIPO DE GESTION"))
}

func TestResolveColumn(t *testing.T) {
	tbl := NewTable("call.xlsx", []string{"fecha", "Numero_Celular", "Ruta ", "NUMERO CELULAR ALT"}, nil)

	col, ok := ResolveColumn(tbl, Compact("NUMEROCELULAR"), Contains("NUMERO", "CELULAR"))
	require.True(t, ok)
	assert.Equal(t, "Numero_Celular", col)

	col, ok = ResolveColumn(tbl, EqualFold("ruta"))
	require.True(t, ok)
	assert.Equal(t, "Ruta", col)

	_, ok = ResolveColumn(tbl, Exact("ruta"))
	assert.False(t, ok)

	_, ok = ResolveColumn(nil, Exact("x"))
	assert.False(t, ok)
}

func TestCacheColumnIsResolvedOnce(t *testing.T) {
	c := NewCache()
	tbl := NewTable("t", []string{"CUENTA CLIENTE"}, nil)
	calls := 0
	probe := func(column string) bool {
		calls++
		return true
	}

	col, ok := c.Column("k", tbl, probe)
	require.True(t, ok)
	assert.Equal(t, "CUENTA CLIENTE", col)
	c.Column("k", tbl, probe)
	assert.Equal(t, 1, calls)

	c.Reset()
	c.Column("k", tbl, probe)
	assert.Equal(t, 2, calls)
}

func TestCacheTableLoadsOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "base.csv")
	require.NoError(t, os.WriteFile(path, []byte("CUENTA,VALOR\n1,a\n"), 0644))

	c := NewCache()
	loads := 0
	c.loader = func(p string) (*Table, error) {
		loads++
		return Load(p)
	}

	first, err := c.Table("sms", path)
	require.NoError(t, err)
	second, err := c.Table("sms", path)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, loads)

	none, err := c.Table("ivr", "")
	assert.NoError(t, err)
	assert.Nil(t, none)

	_, err = c.Table("call", filepath.Join(dir, "missing.xlsx"))
	assert.Error(t, err)
}

func TestExcelWriteAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteExcel(sampleTable(), path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"CUENTA", "GESTION EFECTIVA", "FECHA"}, loaded.Columns)
	assert.Equal(t, 5, loaded.Len())
	assert.Equal(t, "sms, ivr", loaded.Value(1, "GESTION EFECTIVA"))
}

func TestLoadKeepsLongNumericKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"CUENTA", "TELEFONO", "FECHA"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{int64(1234567890123456), int64(3001234567), "2024-01-01"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{int64(1234567890123457), int64(3001234568), "2024-01-02"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1234567890123456", loaded.Value(0, "CUENTA"))
	assert.Equal(t, "1234567890123457", loaded.Value(1, "CUENTA"))
	assert.Equal(t, "3001234567", loaded.Value(0, "TELEFONO"))
	assert.Equal(t, "2024-01-01", loaded.Value(0, "FECHA"))

	rows, err := FindRows(loaded, "CUENTA", "1234567890123456", Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, rows.Len())
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clientes.csv")
	content := "\ufeffNOMBRE,CUENTA,GESTION EFECTIVA,TELEFONO\nJuan Perez,123,\"IVR,GRABACION CALL\",5551234\n,456,SMS\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	customers, err := LoadCustomers(path)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Juan Perez", customers[0].Name)
	assert.Equal(t, "IVR,GRABACION CALL", customers[0].EffectiveManagement)
	assert.Equal(t, "5551234", customers[0].Phone)
	assert.Equal(t, "Sin nombre", customers[1].Name)
	assert.Equal(t, "", customers[1].Phone)
	assert.Equal(t, "456", customers[1].Field("CUENTA"))
}

func TestCustomersMissingColumns(t *testing.T) {
	_, err := Customers(NewTable("x", []string{"NOMBRE", "TELEFONO"}, nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrMissingColumns))
	assert.Contains(t, err.Error(), "CUENTA")
	assert.Contains(t, err.Error(), "GESTION EFECTIVA")
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	_, err := Load("datos.xls")
	assert.Error(t, err)
}
