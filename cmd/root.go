package cmd

import (
	"fmt"
	"log"

	"excelEvidence/internal/config"
	"excelEvidence/internal/pipeline"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	v       = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "evidencias",
	Short: "Generate and audit per-customer evidence folders",
	Long: `Evidencias builds one evidence folder per customer from the customer table and the
channel base datasets (IVR, SMS, CALL), then audits a run folder against the same
expectations and repairs what is missing.

Running without a command starts the interactive TUI.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "YAML configuration file")
	flags.StringP("customers", "c", "", "Customer table (.xlsx or .csv)")
	flags.StringP("output-root", "o", ".", "Directory that holds the run folders")
	flags.String("run-folder", "", "Run folder name (default evidencias_<dd-mm-yy>)")
	flags.String("ivr-base", "", "IVR base dataset")
	flags.String("ivr-audio", "", "IVR base audio copied into every IVR folder")
	flags.String("ivr-client-column", "CUENTA", "Customer column matched against the IVR dataset")
	flags.String("ivr-file-column", "CUENTA", "IVR dataset column matched against the customer")
	flags.String("sms-base", "", "SMS base dataset")
	flags.String("sms-client-column", "CUENTA", "Customer column matched against the SMS dataset")
	flags.String("sms-file-column", "NUMERO DE CREDITO", "SMS dataset column matched against the customer")
	flags.String("call-log", "", "Consolidated call log with numero_celular and ruta columns")
	flags.String("gestiones", "", "Gestiones dataset for the CALL excel")
	flags.Bool("reuse-ivr-base", false, "Draw the CALL excel from the IVR base dataset")
	flags.String("audio-dir", "", "Directory searched for call recordings missing at their logged path")
	flags.String("new-data", "", "Secondary (nuevos datos) table with TIPO DE GESTION per account")
	flags.Bool("merge-v2", false, "Merge channels from the new data table")
	flags.String("mongo-uri", "", "MongoDB URI for the run ledger mirror")
	flags.String("mongo-database", "evidencias", "MongoDB database for the run ledger mirror")
	flags.String("log-level", "info", "Log level")
	flags.String("log-format", "text", "Log format: text or json")

	for key, flag := range map[string]string{
		"customers_file":      "customers",
		"output_root":         "output-root",
		"run_folder":          "run-folder",
		"ivr.base_file":       "ivr-base",
		"ivr.audio_file":      "ivr-audio",
		"ivr.client_column":   "ivr-client-column",
		"ivr.file_column":     "ivr-file-column",
		"sms.base_file":       "sms-base",
		"sms.client_column":   "sms-client-column",
		"sms.file_column":     "sms-file-column",
		"call.call_log_file":  "call-log",
		"call.gestiones_file": "gestiones",
		"call.reuse_ivr_base": "reuse-ivr-base",
		"call.audio_dir":      "audio-dir",
		"new_data_file":       "new-data",
		"merge_v2":            "merge-v2",
		"mongo.uri":           "mongo-uri",
		"mongo.database":      "mongo-database",
		"log.level":           "log-level",
		"log.format":          "log-format",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			log.Fatalf("failed to bind flag %s: %v", flag, err)
		}
	}

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(repairCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(tuiCmd)
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading it: %v", err)
	}
}

// newPipeline loads the configuration and builds the pipeline the commands share.
func newPipeline(opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	return pipeline.New(cfg, logger, opts...), nil
}

func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
