package audit

import (
	"fmt"
	"path/filepath"

	"excelEvidence/internal/channel"
	"excelEvidence/internal/models"
)

// RepairSummary counts what a repair pass did.
type RepairSummary struct {
	Attempted int
	Skipped   []string
	Failures  []models.Failure
}

// Repair rebuilds the missing artifacts of one finding. An empty folder is rebuilt for
// every artifact its channels call for.
func (a *Auditor) Repair(runDir string, f models.Finding, customers []models.CustomerRecord, reg *models.Registry) ([]models.Failure, error) {
	c, ok := newCustomerIndex(customers).byFolder[f.Folder]
	if !ok {
		return nil, fmt.Errorf("no customer builds folder %s", f.Folder)
	}

	kinds := f.Missing
	if f.Empty || len(kinds) == 0 {
		kinds = a.expected(a.gen.Channels(c))
	}
	a.logger.Infof("repairing %s: %v", f.Folder, describe(kinds))
	return a.gen.Repair(runDir, c, kinds, reg), nil
}

// RepairAll repairs every finding of report, continuing past folders it cannot place.
func (a *Auditor) RepairAll(report *models.AuditReport, customers []models.CustomerRecord, reg *models.Registry) RepairSummary {
	var sum RepairSummary
	for _, f := range report.Findings {
		failures, err := a.Repair(report.RunDir, f, customers, reg)
		if err != nil {
			a.logger.Warnf("skipping %s: %v", filepath.Join(report.RunDir, f.Folder), err)
			sum.Skipped = append(sum.Skipped, f.Folder)
			continue
		}
		sum.Attempted++
		sum.Failures = append(sum.Failures, failures...)
	}
	return sum
}

func describe(kinds []channel.ArtifactKind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = k.Description()
	}
	return out
}
