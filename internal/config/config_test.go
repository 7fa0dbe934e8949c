package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"excelEvidence/internal/channel"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "CUENTA", cfg.IVR.ClientColumn)
	assert.Equal(t, "CUENTA", cfg.IVR.FileColumn)
	assert.Equal(t, "CUENTA", cfg.SMS.ClientColumn)
	assert.Equal(t, "NUMERO DE CREDITO", cfg.SMS.FileColumn)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DefaultRunFolder(time.Now()), cfg.RunFolder)
	assert.False(t, cfg.MergeV2)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evidencias.yaml")
	yaml := `customers_file: datos_fuente.xlsx
merge_v2: true
ivr:
  base_file: ivr.xlsx
  audio_file: ivr.mp3
call:
  call_log_file: consolidado.xlsx
  reuse_ivr_base: true
output_root: /tmp/salida
run_folder: evidencias_prueba
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	t.Setenv("EVIDENCIAS_SMS_BASE_FILE", "sms.csv")
	t.Setenv("EVIDENCIAS_LOG_LEVEL", "debug")

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "datos_fuente.xlsx", cfg.CustomersFile)
	assert.True(t, cfg.MergeV2)
	assert.Equal(t, "ivr.mp3", cfg.IVR.AudioFile)
	assert.Equal(t, "sms.csv", cfg.SMS.BaseFile)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, filepath.Join("/tmp/salida", "evidencias_prueba"), cfg.RunDir())
	assert.Equal(t, "ivr.xlsx", cfg.GestionesFile())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefaultRunFolder(t *testing.T) {
	day := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "evidencias_05-03-24", DefaultRunFolder(day))
}

func TestRunFolderDate(t *testing.T) {
	day, ok := RunFolderDate(DefaultRunFolder(time.Date(2024, time.March, 5, 10, 0, 0, 0, time.Local)))
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.Local), day)

	for _, name := range []string{"evidencias", "evidencias_lote", "evidencias_31-02-24", "otros_05-03-24"} {
		_, ok := RunFolderDate(name)
		assert.False(t, ok, name)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	assert.True(t, errors.Is(cfg.Validate(), ErrNoCustomerFile))

	cfg.CustomersFile = "datos.xlsx"
	assert.NoError(t, cfg.Validate())

	cfg.SMS = MatchConfig{BaseFile: "sms.xlsx", ClientColumn: "CUENTA"}
	assert.Error(t, cfg.Validate())
}

func TestExpects(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want map[channel.ArtifactKind]bool
	}{
		{
			name: "nothing configured",
			cfg:  Config{},
			want: map[channel.ArtifactKind]bool{
				channel.IVRExcel: false, channel.IVRAudio: true, channel.SMSExcel: false,
				channel.CallExcel: false, channel.CallAudio: false,
			},
		},
		{
			name: "call log without gestiones",
			cfg:  Config{Call: CallConfig{CallLogFile: "log.xlsx"}, SMS: MatchConfig{BaseFile: "sms.xlsx"}},
			want: map[channel.ArtifactKind]bool{
				channel.IVRExcel: false, channel.IVRAudio: true, channel.SMSExcel: true,
				channel.CallExcel: false, channel.CallAudio: true,
			},
		},
		{
			name: "ivr base reused for gestiones",
			cfg:  Config{IVR: MatchConfig{BaseFile: "ivr.xlsx"}, Call: CallConfig{CallLogFile: "log.xlsx", ReuseIVRBase: true}},
			want: map[channel.ArtifactKind]bool{
				channel.IVRExcel: true, channel.IVRAudio: true, channel.SMSExcel: false,
				channel.CallExcel: true, channel.CallAudio: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for kind, want := range tt.want {
				assert.Equal(t, want, tt.cfg.Expects(kind), kind)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("warn", "json")
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	_, err = NewLogger("loud", "text")
	assert.Error(t, err)
	_, err = NewLogger("info", "xml")
	assert.Error(t, err)
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("info", "json")
	require.NoError(t, err)
	logger.SetOutput(&buf)

	LogError(logger, "evidence", "copyFile", "ivr audio", map[string]string{"folder": "Juan_1"}, errors.New("disk full"))
	assert.Contains(t, buf.String(), `"module":"evidence"`)
	assert.Contains(t, buf.String(), "disk full")
}
