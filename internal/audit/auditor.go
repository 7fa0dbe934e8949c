// Package audit checks a generated run folder against what each customer's channels
// require, and repairs what is missing.
package audit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"excelEvidence/internal/channel"
	"excelEvidence/internal/config"
	"excelEvidence/internal/evidence"
	"excelEvidence/internal/ledger"
	"excelEvidence/internal/models"

	"github.com/sirupsen/logrus"
)

var ErrNoRunDir = errors.New("no run folder found")

const emptyFolder = "empty folder"

// LatestRunDir returns the newest run folder under root. Runs are ranked by the start
// time in their ledger, then by the day in their name, then by modification time, since
// audits and repairs write into older run folders too.
func LatestRunDir(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("failed to list %s: %w", root, err)
	}

	var latest string
	var latestKey, latestMod time.Time
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), config.RunFolderPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		key := runKey(filepath.Join(root, e.Name()), info.ModTime())
		if latest == "" || key.After(latestKey) || (key.Equal(latestKey) && info.ModTime().After(latestMod)) {
			latest, latestKey, latestMod = e.Name(), key, info.ModTime()
		}
	}
	if latest == "" {
		return "", fmt.Errorf("%w under %s", ErrNoRunDir, root)
	}
	return filepath.Join(root, latest), nil
}

func runKey(dir string, mod time.Time) time.Time {
	if t, ok := ledger.StartedAt(dir); ok {
		return t
	}
	if t, ok := config.RunFolderDate(filepath.Base(dir)); ok {
		return t
	}
	return mod
}

type Option func(*Auditor)

func WithLogger(logger *logrus.Logger) Option {
	return func(a *Auditor) {
		a.logger = logger
	}
}

// Auditor derives expectations through the same generator that built the run, so both
// agree on channel sets and artifact names.
type Auditor struct {
	cfg    *config.Config
	gen    *evidence.Generator
	logger *logrus.Logger
}

func NewAuditor(cfg *config.Config, gen *evidence.Generator, opts ...Option) *Auditor {
	a := &Auditor{
		cfg:    cfg,
		gen:    gen,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// customerIndex finds the customer a folder belongs to.
type customerIndex struct {
	byFolder  map[string]models.CustomerRecord
	customers []models.CustomerRecord
}

func newCustomerIndex(customers []models.CustomerRecord) customerIndex {
	idx := customerIndex{byFolder: make(map[string]models.CustomerRecord, len(customers)), customers: customers}
	for _, c := range customers {
		folder := evidence.FolderName(c)
		if _, dup := idx.byFolder[folder]; !dup {
			idx.byFolder[folder] = c
		}
	}
	return idx
}

// lookup resolves a folder by its exact name, then by the account after its last
// underscore. detailed is false for folders without an underscore.
func (idx customerIndex) lookup(folder string) (c models.CustomerRecord, found, detailed bool) {
	cut := strings.LastIndex(folder, "_")
	if cut < 0 {
		return models.CustomerRecord{}, false, false
	}
	if c, ok := idx.byFolder[folder]; ok {
		return c, true, true
	}
	c, ok := models.FindByAccount(idx.customers, folder[cut+1:])
	return c, ok, true
}

// Audit inspects every customer folder of runDir. reg explains the artifacts generation
// knowingly skipped; a nil registry excuses nothing.
func (a *Auditor) Audit(runDir string, customers []models.CustomerRecord, reg *models.Registry) (*models.AuditReport, error) {
	entries, err := os.ReadDir(runDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read run folder: %w", err)
	}
	if a.cfg.MergeV2 {
		a.gen.EnsurePrepared()
	}

	report := &models.AuditReport{RunDir: runDir, AuditedAt: time.Now()}
	idx := newCustomerIndex(customers)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		report.TotalFolders++

		finding, ok := a.inspect(filepath.Join(runDir, e.Name()), idx, reg)
		if ok {
			report.OKFolders++
			continue
		}
		report.Findings = append(report.Findings, finding)
	}

	a.logger.WithFields(logrus.Fields{
		"run_dir":  runDir,
		"folders":  report.TotalFolders,
		"ok":       report.OKFolders,
		"findings": len(report.Findings),
	}).Info("audit finished")
	return report, nil
}

func (a *Auditor) inspect(dir string, idx customerIndex, reg *models.Registry) (models.Finding, bool) {
	folder := filepath.Base(dir)
	files := regularFiles(dir)
	finding := models.Finding{Folder: folder, FoundFiles: len(files)}

	c, found, detailed := idx.lookup(folder)
	var expected []channel.ArtifactKind
	if found {
		finding.ExpectedChannels = a.gen.Channels(c)
		expected = a.expected(finding.ExpectedChannels)
		finding.ExpectedFiles = len(expected)
	}

	if len(files) == 0 {
		finding.Empty = true
		finding.Errors = []string{emptyFolder}
		return finding, false
	}
	if !detailed || !found {
		return finding, true
	}

	for _, kind := range expected {
		if present(files, kind) {
			continue
		}
		msg, excused := a.excuse(reg, folder, kind)
		if excused {
			continue
		}
		finding.Errors = append(finding.Errors, msg)
		finding.Missing = append(finding.Missing, kind)
		finding.MissingDescriptions = append(finding.MissingDescriptions, kind.Description())
	}
	return finding, len(finding.Errors) == 0
}

// expected lists the artifacts a channel set calls for under the current configuration.
func (a *Auditor) expected(set channel.Set) []channel.ArtifactKind {
	var kinds []channel.ArtifactKind
	for _, ch := range channel.ProcessingOrder {
		if !set.Has(ch) {
			continue
		}
		for _, kind := range channel.Artifacts(ch) {
			if a.cfg.Expects(kind) {
				kinds = append(kinds, kind)
			}
		}
	}
	return kinds
}

// excuse decides whether a missing artifact was knowingly skipped. A CALL audio whose phone
// is absent from the call log is always reported.
func (a *Auditor) excuse(reg *models.Registry, folder string, kind channel.ArtifactKind) (string, bool) {
	msg := "missing " + kind.Description()
	if kind == channel.CallAudio {
		if reg.Has(models.CallPhoneNoMatch, folder) {
			return msg + " (phone not in call log)", false
		}
		return msg, reg.Has(models.CallNoAudio, folder)
	}
	for _, b := range models.BucketsFor(kind) {
		if reg.Has(b, folder) {
			return msg, true
		}
	}
	return msg, false
}

func present(files []string, kind channel.ArtifactKind) bool {
	for _, f := range files {
		if kind.Matches(f) {
			return true
		}
	}
	return false
}

func regularFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}
	return files
}
