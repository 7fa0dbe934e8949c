// Package config loads the run configuration from an optional YAML file, EVIDENCIAS_*
// environment variables and command flags.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"excelEvidence/internal/channel"

	"github.com/spf13/viper"
)

const (
	EnvPrefix       = "EVIDENCIAS"
	RunFolderPrefix = "evidencias"
	runFolderDate   = "02-01-06"
)

var ErrNoCustomerFile = errors.New("customer table path is not set")

// MatchConfig joins a customer-side column to a column of a channel base dataset.
type MatchConfig struct {
	BaseFile     string `mapstructure:"base_file"`
	AudioFile    string `mapstructure:"audio_file"`
	ClientColumn string `mapstructure:"client_column"`
	FileColumn   string `mapstructure:"file_column"`
}

type CallConfig struct {
	GestionesFile string `mapstructure:"gestiones_file"`
	ReuseIVRBase  bool   `mapstructure:"reuse_ivr_base"`
	CallLogFile   string `mapstructure:"call_log_file"`
	AudioDir      string `mapstructure:"audio_dir"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	CustomersFile string      `mapstructure:"customers_file"`
	NewDataFile   string      `mapstructure:"new_data_file"`
	MergeV2       bool        `mapstructure:"merge_v2"`
	IVR           MatchConfig `mapstructure:"ivr"`
	SMS           MatchConfig `mapstructure:"sms"`
	Call          CallConfig  `mapstructure:"call"`
	OutputRoot    string      `mapstructure:"output_root"`
	RunFolder     string      `mapstructure:"run_folder"`
	Mongo         MongoConfig `mapstructure:"mongo"`
	Log           LogConfig   `mapstructure:"log"`
}

// New returns a viper instance with every key defaulted and environment lookup enabled.
// Every key needs a default for Unmarshal to see its environment variable.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("customers_file", "")
	v.SetDefault("new_data_file", "")
	v.SetDefault("merge_v2", false)
	v.SetDefault("ivr.base_file", "")
	v.SetDefault("ivr.audio_file", "")
	v.SetDefault("ivr.client_column", "CUENTA")
	v.SetDefault("ivr.file_column", "CUENTA")
	v.SetDefault("sms.base_file", "")
	v.SetDefault("sms.client_column", "CUENTA")
	v.SetDefault("sms.file_column", "NUMERO DE CREDITO")
	v.SetDefault("call.gestiones_file", "")
	v.SetDefault("call.reuse_ivr_base", false)
	v.SetDefault("call.call_log_file", "")
	v.SetDefault("call.audio_dir", "")
	v.SetDefault("output_root", ".")
	v.SetDefault("run_folder", "")
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "evidencias")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	return v
}

// Load reads path into v when given and decodes the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.RunFolder == "" {
		cfg.RunFolder = DefaultRunFolder(time.Now())
	}
	return &cfg, nil
}

// DefaultRunFolder names a run folder after its day, e.g. evidencias_16-10-26.
func DefaultRunFolder(t time.Time) string {
	return fmt.Sprintf("%s_%s", RunFolderPrefix, t.Format(runFolderDate))
}

// RunFolderDate parses the day out of a folder named by DefaultRunFolder.
func RunFolderDate(name string) (time.Time, bool) {
	day, ok := strings.CutPrefix(name, RunFolderPrefix+"_")
	if !ok {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(runFolderDate, day, time.Local)
	return t, err == nil
}

func (c *Config) RunDir() string {
	return filepath.Join(c.OutputRoot, c.RunFolder)
}

// Validate checks what a generation run cannot do without.
func (c *Config) Validate() error {
	if c.CustomersFile == "" {
		return ErrNoCustomerFile
	}
	for name, m := range map[string]MatchConfig{"ivr": c.IVR, "sms": c.SMS} {
		if m.BaseFile != "" && (m.ClientColumn == "" || m.FileColumn == "") {
			return fmt.Errorf("%s match columns must be set when %s.base_file is configured", name, name)
		}
	}
	return nil
}

// GestionesFile is the dataset the CALL excel extract is drawn from, "" when none.
func (c *Config) GestionesFile() string {
	if c.Call.ReuseIVRBase && c.IVR.BaseFile != "" {
		return c.IVR.BaseFile
	}
	return c.Call.GestionesFile
}

// Expects reports whether an artifact can be produced at all under this configuration.
// IVR audio is always expected; an unset audio source is registered as a miss instead.
func (c *Config) Expects(kind channel.ArtifactKind) bool {
	switch kind {
	case channel.IVRExcel:
		return c.IVR.BaseFile != ""
	case channel.IVRAudio:
		return true
	case channel.SMSExcel:
		return c.SMS.BaseFile != ""
	case channel.CallExcel:
		return c.Call.CallLogFile != "" && c.GestionesFile() != ""
	case channel.CallAudio:
		return c.Call.CallLogFile != ""
	}
	return false
}
