package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"excelEvidence/internal/config"
	"excelEvidence/internal/dataset"
	"excelEvidence/internal/ledger"
	"excelEvidence/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func workbook(t *testing.T, path string, header []string, rows [][]string) string {
	t.Helper()
	require.NoError(t, dataset.WriteExcel(dataset.NewTable(filepath.Base(path), header, rows), path))
	return path
}

func testConfig(t *testing.T) *config.Config {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	require.NoError(t, os.MkdirAll(in, 0755))
	audio := filepath.Join(in, "ivr.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("ivr"), 0644))

	return &config.Config{
		CustomersFile: workbook(t, filepath.Join(in, "datos_fuente.xlsx"),
			[]string{"NOMBRE", "CUENTA", "TELEFONO", "GESTION EFECTIVA"},
			[][]string{
				{"Juan Perez", "123", "5551234", "IVR"},
				{"Ana Gomez", "456", "", "IVR,SMS"},
			}),
		NewDataFile: workbook(t, filepath.Join(in, "nuevos_datos.xlsx"),
			[]string{"CUENTA", "TIPO DE GESTION"},
			[][]string{{"123", "IVR"}, {"456", "CALL"}}),
		IVR: config.MatchConfig{
			BaseFile: workbook(t, filepath.Join(in, "ivr.xlsx"),
				[]string{"CUENTA", "GESTION EFECTIVA"}, [][]string{{"123", "IVR"}, {"456", "IVR"}}),
			AudioFile:    audio,
			ClientColumn: "CUENTA",
			FileColumn:   "CUENTA",
		},
		SMS: config.MatchConfig{
			BaseFile:     workbook(t, filepath.Join(in, "sms.xlsx"), []string{"NUMERO DE CREDITO"}, [][]string{{"999"}}),
			ClientColumn: "CUENTA",
			FileColumn:   "NUMERO DE CREDITO",
		},
		OutputRoot: filepath.Join(root, "out"),
		RunFolder:  "evidencias_10-10-24",
	}
}

func TestGenerateThenAuditInLaterProcess(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	var done []int
	p := New(cfg, quietLogger(), WithProgress(func(n, _ int, _ models.CustomerRecord) { done = append(done, n) }))
	res, err := p.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, done)
	assert.True(t, res.Registry.Has(models.SMSNoMatch, "Ana Gomez_456"))
	assert.FileExists(t, filepath.Join(res.RunDir, ledger.RunFile))
	assert.FileExists(t, filepath.Join(res.RunDir, ledger.RegistryFile))

	later := New(cfg, quietLogger())
	runDir, err := later.RunDir("")
	require.NoError(t, err)
	assert.Equal(t, res.RunDir, runDir)

	s, err := later.Audit(ctx, runDir)
	require.NoError(t, err)
	assert.Equal(t, res.RunID, s.Run.RunID)
	assert.Equal(t, 2, s.Report.TotalFolders)
	assert.Empty(t, s.Report.Findings, "sms miss is excused by the stored registry")

	matches, err := filepath.Glob(filepath.Join(runDir, "auditoria_*.json"))
	require.NoError(t, err)
	assert.NotEmpty(t, matches)
}

func TestRepairHealsAndPersists(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	p := New(cfg, quietLogger())

	res, err := p.Generate(ctx)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(res.RunDir, "Juan Perez_123", "Juan Perez_ivr.xlsx")))

	s, err := p.Audit(ctx, res.RunDir)
	require.NoError(t, err)
	require.Len(t, s.Report.Findings, 1)

	sum, err := p.Repair(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Attempted)
	assert.Empty(t, s.Report.Findings)
	assert.FileExists(t, filepath.Join(res.RunDir, "Juan Perez_123", "Juan Perez_ivr.xlsx"))
}

func TestAuditWithoutLedger(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	p := New(cfg, quietLogger())

	res, err := p.Generate(ctx)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(res.RunDir, ledger.RunFile)))

	s, err := p.Audit(ctx, res.RunDir)
	require.NoError(t, err)
	require.Len(t, s.Report.Findings, 1)
	assert.Equal(t, "Ana Gomez_456", s.Report.Findings[0].Folder)
}

func TestCheck(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, quietLogger())

	mismatches, err := p.Check()
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, "456", mismatches[0].Account)
	assert.Equal(t, "CALL", mismatches[0].Secondary)

	cfg.NewDataFile = ""
	_, err = p.Check()
	assert.True(t, errors.Is(err, ErrNoNewData))
}

func TestSimulateWithMerge(t *testing.T) {
	cfg := testConfig(t)
	cfg.MergeV2 = true

	plans, err := New(cfg, quietLogger()).Simulate()
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, []string{"Ana Gomez_ivr.xlsx", "ivr_Ana Gomez.mp3", "SMS_Ana Gomez.xlsx", "Ana Gomez_gestiones.xlsx", "Ana Gomez_456.mp3"}, plans[1].Files)
	_, err = os.Stat(cfg.RunDir())
	assert.True(t, os.IsNotExist(err), "simulation does not touch the disk")
}

func TestCustomersRequiresFile(t *testing.T) {
	_, err := New(&config.Config{}, quietLogger()).Customers()
	assert.True(t, errors.Is(err, config.ErrNoCustomerFile))
}

func TestHistoryRequiresMirror(t *testing.T) {
	p := New(testConfig(t), quietLogger())
	_, err := p.History(context.Background(), "evidencias_10-10-24", 5)
	assert.True(t, errors.Is(err, ErrNoMirror))
}
