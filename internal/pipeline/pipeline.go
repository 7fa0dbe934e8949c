// Package pipeline wires configuration, datasets, generation, audit and the run ledger
// into the operations the commands expose.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"excelEvidence/internal/audit"
	"excelEvidence/internal/config"
	"excelEvidence/internal/database"
	"excelEvidence/internal/dataset"
	"excelEvidence/internal/evidence"
	"excelEvidence/internal/ledger"
	"excelEvidence/internal/models"
	"excelEvidence/internal/reconcile"

	"github.com/sirupsen/logrus"
)

var (
	ErrNoNewData = errors.New("new data file is not set")
	ErrNoMirror  = errors.New("no MongoDB ledger mirror is configured")
)

type Option func(*Pipeline)

func WithProgress(fn evidence.ProgressFunc) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// WithMirror replaces the MongoDB mirror the configuration would open.
func WithMirror(m ledger.Mirror) Option {
	return func(p *Pipeline) {
		p.mirror = m
	}
}

type Pipeline struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Generator *evidence.Generator
	Auditor   *audit.Auditor
	Ledger    *ledger.Service

	progress evidence.ProgressFunc
	mirror   ledger.Mirror
	db       *database.MongoDB
}

// New builds a pipeline. An unreachable MongoDB mirror is logged and skipped.
func New(cfg *config.Config, logger *logrus.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{Config: cfg, Logger: logger}
	for _, opt := range opts {
		opt(p)
	}

	if p.mirror == nil && cfg.Mongo.URI != "" {
		db, err := database.NewMongoDB(cfg.Mongo.URI, cfg.Mongo.Database, logger)
		if err != nil {
			logger.Warnf("continuing without ledger mirror: %v", err)
		} else {
			p.db = db
			p.mirror = db
		}
	}

	genOpts := []evidence.Option{evidence.WithLogger(logger), evidence.WithCache(dataset.NewCache())}
	if p.progress != nil {
		genOpts = append(genOpts, evidence.WithProgress(p.progress))
	}
	p.Generator = evidence.NewGenerator(cfg, genOpts...)
	p.Auditor = audit.NewAuditor(cfg, p.Generator, audit.WithLogger(logger))
	p.Ledger = ledger.NewService(p.mirror, logger)
	return p
}

func (p *Pipeline) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// Customers loads the customer table named by the configuration.
func (p *Pipeline) Customers() ([]models.CustomerRecord, error) {
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}
	customers, err := dataset.LoadCustomers(p.Config.CustomersFile)
	if err != nil {
		return nil, err
	}
	p.Logger.Infof("Loaded %d customers from %s", len(customers), p.Config.CustomersFile)
	return customers, nil
}

// Generate builds the run folder and records its ledger.
func (p *Pipeline) Generate(ctx context.Context) (*evidence.Result, error) {
	customers, err := p.Customers()
	if err != nil {
		return nil, err
	}
	res, err := p.Generator.GenerateAll(customers)
	if err != nil {
		return nil, fmt.Errorf("failed to generate evidence: %w", err)
	}
	if err := p.Ledger.SaveRun(ctx, res.Record()); err != nil {
		return res, fmt.Errorf("failed to save run ledger: %w", err)
	}
	return res, nil
}

// RunDir returns explicit when set, else the latest run folder under the output root.
func (p *Pipeline) RunDir(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	return audit.LatestRunDir(p.Config.OutputRoot)
}

// Session is an audit over one run folder with the state a repair needs.
type Session struct {
	RunDir    string
	Customers []models.CustomerRecord
	Run       models.RunRecord
	Registry  *models.Registry
	Report    *models.AuditReport
}

// Audit checks runDir against the customer table and the registry its ledger recorded.
// A run without a ledger is audited with an empty registry.
func (p *Pipeline) Audit(ctx context.Context, runDir string) (*Session, error) {
	customers, err := p.Customers()
	if err != nil {
		return nil, err
	}
	s := &Session{RunDir: runDir, Customers: customers}

	s.Run, s.Registry, err = p.Ledger.LoadRun(ctx, runDir)
	if errors.Is(err, ledger.ErrNoLedger) {
		p.Logger.Warnf("no ledger for %s: auditing without excusals", runDir)
		s.Run = models.RunRecord{RunDir: runDir}
		s.Registry = models.NewRegistry()
	} else if err != nil {
		return nil, fmt.Errorf("failed to load run ledger: %w", err)
	}

	if err := p.audit(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Pipeline) audit(ctx context.Context, s *Session) error {
	report, err := p.Auditor.Audit(s.RunDir, s.Customers, s.Registry)
	if err != nil {
		return fmt.Errorf("failed to audit %s: %w", s.RunDir, err)
	}
	s.Report = report
	if path, err := p.Ledger.SaveAudit(ctx, report); err != nil {
		p.Logger.Warnf("failed to save audit report: %v", err)
	} else {
		p.Logger.Infof("Audit report written to %s", path)
	}
	return nil
}

// Repair repairs every finding of s, stores the updated registry and re-audits s.
func (p *Pipeline) Repair(ctx context.Context, s *Session) (audit.RepairSummary, error) {
	sum := p.Auditor.RepairAll(s.Report, s.Customers, s.Registry)

	s.Run.Entries = s.Registry.Entries()
	s.Run.Counts = s.Registry.Counts()
	s.Run.Failures = append(s.Run.Failures, sum.Failures...)
	if err := p.Ledger.SaveRun(ctx, s.Run); err != nil {
		return sum, fmt.Errorf("failed to save run ledger: %w", err)
	}
	return sum, p.audit(ctx, s)
}

// History returns the latest audit reports the MongoDB mirror holds for runDir, newest first.
func (p *Pipeline) History(ctx context.Context, runDir string, limit int64) ([]models.AuditReport, error) {
	if p.db == nil {
		return nil, ErrNoMirror
	}
	return p.db.Audits(ctx, runDir, limit)
}

func (p *Pipeline) Simulate() ([]evidence.Plan, error) {
	customers, err := p.Customers()
	if err != nil {
		return nil, err
	}
	return p.Generator.Simulate(customers), nil
}

// Check compares the customer table channels with the new data file.
func (p *Pipeline) Check() ([]reconcile.Mismatch, error) {
	if p.Config.NewDataFile == "" {
		return nil, ErrNoNewData
	}
	customers, err := p.Customers()
	if err != nil {
		return nil, err
	}
	t, err := dataset.Load(p.Config.NewDataFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load new data file: %w", err)
	}

	join, okJoin := dataset.ResolveColumn(t, reconcile.JoinColumn...)
	ch, okCh := dataset.ResolveColumn(t, reconcile.ChannelColumn...)
	if !okJoin || !okCh {
		return nil, fmt.Errorf("%w: CUENTA / TIPO DE GESTION in %s", dataset.ErrColumnNotFound, t.Name)
	}
	return reconcile.Compare(customers, reconcile.Source{Table: t, JoinColumn: join, ChannelColumn: ch}), nil
}
