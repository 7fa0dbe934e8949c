// Package ledger persists what a generation run left behind, so audit and repair can run
// in a later process: the run record and the not-created registry next to the run folder,
// optionally mirrored to MongoDB.
package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"excelEvidence/internal/models"

	"github.com/jszwec/csvutil"
	"github.com/sirupsen/logrus"
)

const (
	RunFile      = "ledger.json"
	RegistryFile = "no_creados.csv"
)

var ErrNoLedger = errors.New("no ledger for run folder")

// Mirror is a secondary store for run records and audit reports.
type Mirror interface {
	SaveRun(ctx context.Context, rec models.RunRecord) (bool, error)
	LoadRun(ctx context.Context, runDir string) (models.RunRecord, error)
	SaveAudit(ctx context.Context, report *models.AuditReport) error
}

type Service struct {
	mirror Mirror
	logger *logrus.Logger
}

// NewService returns a file ledger. mirror may be nil.
func NewService(mirror Mirror, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{mirror: mirror, logger: logger}
}

// SaveRun writes the run record and registry into the run folder, then mirrors the record.
// A mirror failure is logged and does not fail the save.
func (s *Service) SaveRun(ctx context.Context, rec models.RunRecord) error {
	if err := os.MkdirAll(rec.RunDir, 0755); err != nil {
		return fmt.Errorf("failed to create run folder: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(rec.RunDir, RunFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write run record: %w", err)
	}

	registry, err := encodeEntries(rec.Entries)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(rec.RunDir, RegistryFile), registry, 0644); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}

	if s.mirror != nil {
		if replaced, err := s.mirror.SaveRun(ctx, rec); err != nil {
			s.logger.Warnf("failed to mirror run %s: %v", rec.RunID, err)
		} else if replaced {
			s.logger.Debugf("mirrored run %s over an earlier run", rec.RunID)
		}
	}
	return nil
}

// LoadRun restores the run record and registry of runDir, from the folder when present,
// else from the mirror.
func (s *Service) LoadRun(ctx context.Context, runDir string) (models.RunRecord, *models.Registry, error) {
	rec, err := s.loadFiles(runDir)
	if err == nil {
		return rec, models.RegistryFromEntries(rec.Entries), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return rec, nil, err
	}

	if s.mirror != nil {
		rec, merr := s.mirror.LoadRun(ctx, runDir)
		if merr == nil {
			s.logger.Infof("ledger for %s restored from mirror", runDir)
			return rec, models.RegistryFromEntries(rec.Entries), nil
		}
		s.logger.Debugf("mirror has no run for %s: %v", runDir, merr)
	}
	return models.RunRecord{}, nil, fmt.Errorf("%w: %s", ErrNoLedger, runDir)
}

// StartedAt returns the start time recorded in runDir's ledger file.
func StartedAt(runDir string) (time.Time, bool) {
	data, err := os.ReadFile(filepath.Join(runDir, RunFile))
	if err != nil {
		return time.Time{}, false
	}
	var rec models.RunRecord
	if err := json.Unmarshal(data, &rec); err != nil || rec.StartedAt.IsZero() {
		return time.Time{}, false
	}
	return rec.StartedAt, true
}

func (s *Service) loadFiles(runDir string) (models.RunRecord, error) {
	var rec models.RunRecord
	data, err := os.ReadFile(filepath.Join(runDir, RunFile))
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("failed to decode run record: %w", err)
	}

	registry, err := os.ReadFile(filepath.Join(runDir, RegistryFile))
	if err != nil {
		return rec, err
	}
	rec.Entries, err = decodeEntries(registry)
	return rec, err
}

// SaveAudit writes the report as auditoria_<timestamp>.json in its run folder and returns
// the file path.
func (s *Service) SaveAudit(ctx context.Context, report *models.AuditReport) (string, error) {
	timestamp := report.AuditedAt
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	path := filepath.Join(report.RunDir, fmt.Sprintf("auditoria_%s.json", timestamp.Format("20060102_150405")))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal audit report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write audit report: %w", err)
	}

	if s.mirror != nil {
		if err := s.mirror.SaveAudit(ctx, report); err != nil {
			s.logger.Warnf("failed to mirror audit report: %v", err)
		}
	}
	return path, nil
}

func encodeEntries(entries []models.RegistryEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	enc := csvutil.NewEncoder(w)
	if err := enc.EncodeHeader(models.RegistryEntry{}); err != nil {
		return nil, fmt.Errorf("failed to encode registry header: %w", err)
	}
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return nil, fmt.Errorf("failed to encode registry entry %s/%s: %w", e.Bucket, e.Folder, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write registry: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeEntries(data []byte) ([]models.RegistryEntry, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(bytes.NewReader(data)))
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry header: %w", err)
	}

	var entries []models.RegistryEntry
	for {
		var e models.RegistryEntry
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode registry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
