// Package evidence builds the per-customer evidence folders of a run: excel extracts drawn
// from the channel base datasets and audio files copied from the configured sources.
package evidence

import (
	"fmt"
	"path/filepath"
	"time"

	"excelEvidence/internal/channel"
	"excelEvidence/internal/config"
	"excelEvidence/internal/dataset"
	"excelEvidence/internal/models"
	"excelEvidence/internal/reconcile"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Dataset roles in the run cache.
const (
	RoleIVR       = "ivr"
	RoleSMS       = "sms"
	RoleGestiones = "gestiones"
	RoleCallLog   = "call"
	RoleNewData   = "nuevos"
)

// ProgressFunc is called after each customer with the number processed so far.
type ProgressFunc func(done, total int, customer models.CustomerRecord)

type Option func(*Generator)

func WithLogger(logger *logrus.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

func WithProgress(fn ProgressFunc) Option {
	return func(g *Generator) {
		g.progress = fn
	}
}

// WithCache shares a run cache, e.g. with the auditor.
func WithCache(cache *dataset.Cache) Option {
	return func(g *Generator) {
		g.cache = cache
	}
}

// Generator produces evidence folders. One generator serves one run at a time.
type Generator struct {
	cfg      *config.Config
	cache    *dataset.Cache
	logger   *logrus.Logger
	progress ProgressFunc

	prepared  bool
	secondary reconcile.Source
	registry  *models.Registry
	failures  []models.Failure
}

func NewGenerator(cfg *config.Config, opts ...Option) *Generator {
	g := &Generator{
		cfg:      cfg,
		cache:    dataset.NewCache(),
		logger:   logrus.StandardLogger(),
		registry: models.NewRegistry(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result is the outcome of one generation run.
type Result struct {
	RunID      string
	RunDir     string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Folders    []string
	Registry   *models.Registry
	Failures   []models.Failure
}

// Record converts the result into its persisted form.
func (r *Result) Record() models.RunRecord {
	return models.RunRecord{
		RunID:      r.RunID,
		RunDir:     r.RunDir,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Customers:  r.Total,
		Folders:    len(r.Folders),
		Counts:     r.Registry.Counts(),
		Failures:   r.Failures,
		Entries:    r.Registry.Entries(),
	}
}

// Prepare resets the run cache and loads every configured dataset once. A dataset that
// fails to load is logged and left out; its customers are then registered as misses.
func (g *Generator) Prepare() {
	g.cache.Reset()
	g.secondary = reconcile.Source{}

	g.load(RoleIVR, g.cfg.IVR.BaseFile)
	g.load(RoleSMS, g.cfg.SMS.BaseFile)
	if g.cfg.Call.CallLogFile != "" {
		if g.cfg.Call.ReuseIVRBase && g.cfg.IVR.BaseFile != "" {
			if t := g.cache.Loaded(RoleIVR); t != nil {
				g.cache.Put(RoleGestiones, t)
			}
		} else {
			g.load(RoleGestiones, g.cfg.Call.GestionesFile)
		}
		g.load(RoleCallLog, g.cfg.Call.CallLogFile)
	}

	if g.cfg.MergeV2 {
		g.load(RoleNewData, g.cfg.NewDataFile)
		if t := g.cache.Loaded(RoleNewData); t != nil {
			join, _ := g.cache.Column("nuevos.cuenta", t, reconcile.JoinColumn...)
			ch, _ := g.cache.Column("nuevos.tipo_gestion", t, reconcile.ChannelColumn...)
			g.secondary = reconcile.Source{Table: t, JoinColumn: join, ChannelColumn: ch}
			if join == "" || ch == "" {
				g.logger.Warnf("nuevos datos: CUENTA or TIPO DE GESTION column not found in %s", t.Name)
			}
		}
	}
	g.prepared = true
}

// EnsurePrepared runs Prepare unless a run already did.
func (g *Generator) EnsurePrepared() {
	if !g.prepared {
		g.Prepare()
	}
}

func (g *Generator) load(role, path string) {
	if path == "" {
		g.logger.Debugf("%s dataset not configured", role)
		return
	}
	t, err := g.cache.Table(role, path)
	if err != nil {
		config.LogError(g.logger, "evidence", "Prepare", role, path, err)
		return
	}
	g.logger.Debugf("loaded %s dataset %s: %d rows", role, filepath.Base(path), t.Len())
}

// Secondary returns the merge source resolved by Prepare.
func (g *Generator) Secondary() reconcile.Source {
	return g.secondary
}

// Channels is the effective channel set of a customer: the normalized management value,
// merged with the secondary source when merging is enabled.
func (g *Generator) Channels(c models.CustomerRecord) channel.Set {
	set := c.Channels()
	if !g.cfg.MergeV2 {
		return set
	}
	res := reconcile.Merge(set, c.Account, g.secondary)
	if res.Status != reconcile.StatusMerged {
		g.logger.WithField("account", c.Account).Debugf("merge skipped: %s", res.Status)
	} else if len(res.Added) > 0 {
		g.logger.WithField("account", c.Account).Debugf("merge added %s", res.Added)
	}
	return res.Channels
}

// GenerateAll processes every customer exactly once, in order, into the configured run
// folder. Per-customer problems end up in the result; only an unusable output root fails.
func (g *Generator) GenerateAll(customers []models.CustomerRecord) (*Result, error) {
	runDir := g.cfg.RunDir()
	if err := ensureWritable(runDir); err != nil {
		return nil, err
	}

	res := &Result{
		RunID:     uuid.NewString(),
		RunDir:    runDir,
		StartedAt: time.Now(),
		Total:     len(customers),
	}
	g.registry = models.NewRegistry()
	g.failures = nil
	g.Prepare()

	g.logger.Infof("generating evidence for %d customers into %s", len(customers), runDir)
	seen := make(map[string]bool)
	for i, c := range customers {
		folder := g.process(runDir, c, nil)
		if folder != "" && !seen[folder] {
			seen[folder] = true
			res.Folders = append(res.Folders, folder)
		}
		if g.progress != nil {
			g.progress(i+1, len(customers), c)
		}
	}

	res.FinishedAt = time.Now()
	res.Registry = g.registry
	res.Failures = g.failures
	g.logger.WithFields(logrus.Fields{
		"run_id":    res.RunID,
		"folders":   len(res.Folders),
		"not_built": res.Registry.Len(),
		"failures":  len(res.Failures),
	}).Info("generation finished")
	return res, nil
}

// Repair re-runs the given artifact kinds for one customer inside an existing run folder.
// Files already present are left alone. The folder's entries for those kinds are dropped
// from reg first and re-added when the artifact still cannot be built.
func (g *Generator) Repair(runDir string, c models.CustomerRecord, kinds []channel.ArtifactKind, reg *models.Registry) []models.Failure {
	g.EnsurePrepared()

	only := make(map[channel.ArtifactKind]bool, len(kinds))
	forget := []models.Bucket{models.EmptyFolders}
	for _, k := range kinds {
		only[k] = true
		forget = append(forget, models.BucketsFor(k)...)
	}
	reg.Forget(FolderName(c), forget...)

	g.registry = reg
	g.failures = nil
	g.process(runDir, c, only)
	return g.failures
}

// Simulate lists, without touching the disk, the files a full run would try to create.
func (g *Generator) Simulate(customers []models.CustomerRecord) []Plan {
	if g.cfg.MergeV2 {
		g.EnsurePrepared()
	}
	plans := make([]Plan, 0, len(customers))
	for i, c := range customers {
		set := g.Channels(c)
		name, account := Sanitize(c.Name), Sanitize(c.Account)
		plans = append(plans, Plan{
			ID:       i + 1,
			Name:     c.Name,
			Account:  c.Account,
			Folder:   FolderName(c),
			Channels: set,
			Files:    channel.PlannedFiles(name, account, set),
		})
	}
	return plans
}

// Plan is the dry-run outcome for one customer.
type Plan struct {
	ID       int         `json:"id"`
	Name     string      `json:"name"`
	Account  string      `json:"account"`
	Folder   string      `json:"folder"`
	Channels channel.Set `json:"channels"`
	Files    []string    `json:"files"`
}

func (p Plan) String() string {
	return fmt.Sprintf("%d. %s (%s): %s -> %d files", p.ID, p.Name, p.Account, p.Channels, len(p.Files))
}
