package ledger

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"excelEvidence/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMirror struct {
	runs    map[string]models.RunRecord
	audits  []*models.AuditReport
	failing bool
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{runs: make(map[string]models.RunRecord)}
}

func (f *fakeMirror) SaveRun(_ context.Context, rec models.RunRecord) (bool, error) {
	if f.failing {
		return false, errors.New("mirror down")
	}
	_, existed := f.runs[rec.RunDir]
	f.runs[rec.RunDir] = rec
	return existed, nil
}

func (f *fakeMirror) LoadRun(_ context.Context, runDir string) (models.RunRecord, error) {
	rec, ok := f.runs[runDir]
	if !ok {
		return rec, errors.New("not found")
	}
	return rec, nil
}

func (f *fakeMirror) SaveAudit(_ context.Context, report *models.AuditReport) error {
	if f.failing {
		return errors.New("mirror down")
	}
	f.audits = append(f.audits, report)
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func sampleRun(dir string) models.RunRecord {
	reg := models.NewRegistry()
	reg.Add(models.IVRNoAudio, "Juan Perez_123", "Juan Perez", "123", "ivr audio source not configured")
	reg.Add(models.CallPhoneNoMatch, "Ana, la de \"arriba\"_9", "Ana, la de \"arriba\"", "9", "")
	return models.RunRecord{
		RunID:      "run-1",
		RunDir:     dir,
		StartedAt:  time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC),
		Customers:  2,
		Folders:    2,
		Counts:     reg.Counts(),
		Entries:    reg.Entries(),
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "evidencias_01-01-24")
	svc := NewService(nil, quietLogger())

	rec := sampleRun(dir)
	require.NoError(t, svc.SaveRun(context.Background(), rec))
	assert.FileExists(t, filepath.Join(dir, RunFile))
	assert.FileExists(t, filepath.Join(dir, RegistryFile))

	loaded, reg, err := svc.LoadRun(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, rec.RunID, loaded.RunID)
	assert.True(t, rec.StartedAt.Equal(loaded.StartedAt))
	assert.Equal(t, 1, loaded.Counts[models.IVRNoAudio])
	assert.Equal(t, rec.Entries, reg.Entries())
	assert.True(t, reg.Has(models.CallPhoneNoMatch, "Ana, la de \"arriba\"_9"))
}

func TestStartedAt(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "evidencias_01-01-24")
	_, ok := StartedAt(dir)
	assert.False(t, ok)

	rec := sampleRun(dir)
	require.NoError(t, NewService(nil, quietLogger()).SaveRun(context.Background(), rec))
	started, ok := StartedAt(dir)
	require.True(t, ok)
	assert.True(t, rec.StartedAt.Equal(started))
}

func TestSaveRunEmptyRegistry(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(nil, quietLogger())
	require.NoError(t, svc.SaveRun(context.Background(), models.RunRecord{RunID: "r", RunDir: dir}))

	data, err := os.ReadFile(filepath.Join(dir, RegistryFile))
	require.NoError(t, err)
	assert.Equal(t, "bucket,folder,name,account,detail", strings.TrimSpace(string(data)))

	_, reg, err := svc.LoadRun(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Len())
}

func TestLoadRunFallsBackToMirror(t *testing.T) {
	mirror := newFakeMirror()
	saved := sampleRun(filepath.Join(t.TempDir(), "run"))
	svc := NewService(mirror, quietLogger())
	require.NoError(t, svc.SaveRun(context.Background(), saved))
	require.Contains(t, mirror.runs, saved.RunDir)

	require.NoError(t, os.Remove(filepath.Join(saved.RunDir, RunFile)))
	rec, reg, err := svc.LoadRun(context.Background(), saved.RunDir)
	require.NoError(t, err)
	assert.Equal(t, "run-1", rec.RunID)
	assert.True(t, reg.Has(models.IVRNoAudio, "Juan Perez_123"))
}

func TestLoadRunMissing(t *testing.T) {
	_, _, err := NewService(newFakeMirror(), quietLogger()).LoadRun(context.Background(), t.TempDir())
	assert.True(t, errors.Is(err, ErrNoLedger))
}

func TestMirrorFailureIsNotFatal(t *testing.T) {
	mirror := newFakeMirror()
	mirror.failing = true
	svc := NewService(mirror, quietLogger())
	dir := t.TempDir()

	assert.NoError(t, svc.SaveRun(context.Background(), sampleRun(dir)))
	_, err := svc.SaveAudit(context.Background(), &models.AuditReport{RunDir: dir})
	assert.NoError(t, err)
}

func TestSaveAudit(t *testing.T) {
	mirror := newFakeMirror()
	dir := t.TempDir()
	report := &models.AuditReport{
		RunDir:       dir,
		AuditedAt:    time.Date(2024, 2, 3, 14, 5, 6, 0, time.Local),
		TotalFolders: 3,
		OKFolders:    2,
		Findings:     []models.Finding{{Folder: "Ana_1", Errors: []string{"empty folder"}, Empty: true}},
	}

	path, err := NewService(mirror, quietLogger()).SaveAudit(context.Background(), report)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "auditoria_20240203_140506.json"), path)
	assert.FileExists(t, path)
	assert.Len(t, mirror.audits, 1)
}
