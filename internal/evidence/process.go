package evidence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"excelEvidence/internal/channel"
	"excelEvidence/internal/dataset"
	"excelEvidence/internal/models"

	"github.com/sirupsen/logrus"
)

// StampColumn is added to every excel extract, holding the channel it was drawn for.
const StampColumn = "TIPO DE GESTION"

// Call log column predicates.
var (
	CallNumberColumn = []dataset.ColumnPredicate{dataset.Compact("NUMEROCELULAR"), dataset.Contains("NUMERO", "CELULAR")}
	CallPathColumn   = []dataset.ColumnPredicate{dataset.EqualFold("ruta")}
	GestionesAccount = []dataset.ColumnPredicate{dataset.Contains("CUENTA")}
)

// job is one customer being processed into its folder.
type job struct {
	customer models.CustomerRecord
	name     string
	account  string
	folder   string
	dir      string
	// only restricts processing to these kinds and skips files already present. nil
	// processes everything and overwrites.
	only    map[channel.ArtifactKind]bool
	created []channel.ArtifactKind
}

func (j *job) path(kind channel.ArtifactKind) string {
	return filepath.Join(j.dir, kind.FileName(j.name, j.account))
}

func (j *job) wants(kind channel.ArtifactKind) bool {
	if j.only == nil {
		return true
	}
	return j.only[kind] && !exists(j.path(kind))
}

// process builds one customer folder and returns its name, "" when the folder could not
// be created.
func (g *Generator) process(runDir string, c models.CustomerRecord, only map[channel.ArtifactKind]bool) string {
	j := &job{
		customer: c,
		name:     Sanitize(c.Name),
		account:  Sanitize(c.Account),
		folder:   FolderName(c),
		only:     only,
	}
	j.dir = filepath.Join(runDir, j.folder)
	if err := os.MkdirAll(j.dir, 0755); err != nil {
		fields := logrus.Fields{"module": "evidence", "customer": c.Name, "folder": j.folder}
		g.logger.WithFields(fields).Warnf("failed to create folder: %v", err)
		g.failures = append(g.failures, models.Failure{Folder: j.folder, Customer: c.Name, Error: err.Error()})
		return ""
	}

	set := g.Channels(c)
	g.logger.Infof("->%s: %v", c.Name, set.Strings())

	for _, ch := range channel.ProcessingOrder {
		if !set.Has(ch) {
			continue
		}
		switch ch {
		case channel.IVR:
			g.processIVR(j)
		case channel.SMS:
			g.processSMS(j)
		case channel.CALL:
			g.processCall(j)
		}
	}
	g.summarize(j)

	if fileCount(j.dir) == 0 {
		g.registry.Add(models.EmptyFolders, j.folder, c.Name, c.Account, "no files")
	}
	return j.folder
}

func (g *Generator) processIVR(j *job) {
	if j.wants(channel.IVRAudio) {
		if src := g.cfg.IVR.AudioFile; src == "" {
			g.miss(j, channel.IVR, models.IVRNoAudio, "ivr audio source not configured")
		} else if err := copyFile(src, j.path(channel.IVRAudio)); err != nil {
			g.fail(j, channel.IVRAudio, models.IVRNoAudio, err)
		} else {
			j.created = append(j.created, channel.IVRAudio)
		}
	}

	if !j.wants(channel.IVRExcel) || g.cfg.IVR.BaseFile == "" {
		return
	}
	t := g.cache.Loaded(RoleIVR)
	evidence, _ := g.cache.Column("ivr.gestion_efectiva", t, dataset.ManagementColumn...)
	g.extract(j, extraction{
		kind:     channel.IVRExcel,
		table:    t,
		bucket:   models.IVRNoMatch,
		column:   g.cfg.IVR.FileColumn,
		key:      j.customer.Field(g.cfg.IVR.ClientColumn),
		evidence: evidence,
		stamp:    channel.IVR,
	})
}

func (g *Generator) processSMS(j *job) {
	if !j.wants(channel.SMSExcel) {
		return
	}
	if g.cfg.SMS.BaseFile == "" {
		g.logger.Debugf("  ->SMS: no base dataset configured")
		return
	}
	g.extract(j, extraction{
		kind:   channel.SMSExcel,
		table:  g.cache.Loaded(RoleSMS),
		bucket: models.SMSNoMatch,
		column: g.cfg.SMS.FileColumn,
		key:    j.customer.Field(g.cfg.SMS.ClientColumn),
	})
}

func (g *Generator) processCall(j *job) {
	if g.cfg.Call.CallLogFile == "" {
		g.logger.Debugf("  ->CALL: no call log configured")
		return
	}

	if j.wants(channel.CallExcel) && g.cfg.GestionesFile() != "" {
		t := g.cache.Loaded(RoleGestiones)
		account, _ := g.cache.Column("gestiones.cuenta", t, GestionesAccount...)
		evidence, _ := g.cache.Column("gestiones.gestion_efectiva", t, dataset.ManagementColumn...)
		g.extract(j, extraction{
			kind:     channel.CallExcel,
			table:    t,
			bucket:   models.CallNoMatch,
			column:   account,
			key:      j.customer.Account,
			evidence: evidence,
			stamp:    channel.CALL,
		})
	}

	if j.wants(channel.CallAudio) {
		g.callAudio(j)
	}
}

func (g *Generator) callAudio(j *job) {
	phone := j.customer.Phone
	if phone == "" {
		g.miss(j, channel.CALL, models.CallNoAudio, "customer has no phone number")
		return
	}
	t := g.cache.Loaded(RoleCallLog)
	if t == nil {
		g.miss(j, channel.CALL, models.CallNoAudio, "call log unavailable")
		return
	}
	numberCol, okNumber := g.cache.Column("call.numero_celular", t, CallNumberColumn...)
	pathCol, okPath := g.cache.Column("call.ruta", t, CallPathColumn...)
	if !okNumber || !okPath {
		g.miss(j, channel.CALL, models.CallNoAudio, "call log has no numero_celular or ruta column")
		return
	}

	row, ok := dataset.First(t, numberCol, phone)
	if !ok {
		g.miss(j, channel.CALL, models.CallPhoneNoMatch, fmt.Sprintf("phone %s not in call log", phone))
		return
	}
	src := g.locateAudio(cleanPath(row[pathCol]))
	if src == "" {
		g.miss(j, channel.CALL, models.CallNoAudio, fmt.Sprintf("audio %q not found", row[pathCol]))
		return
	}
	if err := copyFile(src, j.path(channel.CallAudio)); err != nil {
		g.fail(j, channel.CallAudio, models.CallNoAudio, err)
		return
	}
	j.created = append(j.created, channel.CallAudio)
}

// locateAudio returns p when it exists, else a file with the same name under the
// configured audio directory, else "".
func (g *Generator) locateAudio(p string) string {
	if p == "" {
		return ""
	}
	if exists(p) {
		return p
	}
	if found := findByBase(g.cfg.Call.AudioDir, p); found != "" {
		g.logger.Debugf("audio %s found at %s", p, found)
		return found
	}
	return ""
}

type extraction struct {
	kind   channel.ArtifactKind
	table  *dataset.Table
	bucket models.Bucket
	column string
	key    string
	// evidence, when resolved, keeps only rows whose cell mentions the channel.
	evidence string
	stamp    channel.Channel
}

func (g *Generator) extract(j *job, x extraction) {
	ch := x.kind.Channel()
	if x.table == nil {
		g.miss(j, ch, x.bucket, "base dataset unavailable")
		return
	}

	if x.key == "" {
		g.miss(j, ch, x.bucket, "customer has no value to match on")
		return
	}

	filter := dataset.Filter{}
	if x.evidence != "" {
		filter = dataset.Filter{Column: x.evidence, Contains: string(ch)}
	}
	rows, err := dataset.FindRows(x.table, x.column, x.key, filter)
	if errors.Is(err, dataset.ErrColumnNotFound) {
		g.miss(j, ch, x.bucket, err.Error())
		return
	}
	if rows.Len() == 0 {
		g.miss(j, ch, x.bucket, fmt.Sprintf("no rows for %s in %s", x.key, x.table.Name))
		return
	}

	if x.stamp != "" {
		rows = rows.WithColumn(StampColumn, string(x.stamp))
	}
	if err := dataset.WriteExcel(rows, j.path(x.kind)); err != nil {
		g.fail(j, x.kind, "", err)
		return
	}
	j.created = append(j.created, x.kind)
}

// miss registers an artifact that could not be built for lack of data.
func (g *Generator) miss(j *job, ch channel.Channel, bucket models.Bucket, detail string) {
	g.registry.Add(bucket, j.folder, j.customer.Name, j.customer.Account, detail)
	g.logger.WithFields(logrus.Fields{
		"customer": j.customer.Name,
		"channel":  ch,
		"bucket":   bucket,
	}).Infof("  ->%s: %s", ch, detail)
}

// fail records a resource error. bucket may be empty, leaving the artifact unexcused.
func (g *Generator) fail(j *job, kind channel.ArtifactKind, bucket models.Bucket, err error) {
	if bucket != "" {
		g.registry.Add(bucket, j.folder, j.customer.Name, j.customer.Account, err.Error())
	}
	g.failures = append(g.failures, models.Failure{
		Folder:   j.folder,
		Customer: j.customer.Name,
		Artifact: kind,
		Error:    err.Error(),
	})
	g.logger.WithFields(logrus.Fields{
		"module":   "evidence",
		"customer": j.customer.Name,
		"channel":  kind.Channel(),
	}).Warnf("failed to build %s: %v", kind.Description(), err)
}

func (g *Generator) summarize(j *job) {
	byChannel := make(map[channel.Channel][]string)
	for _, k := range j.created {
		byChannel[k.Channel()] = append(byChannel[k.Channel()], filepath.Ext(j.path(k))[1:])
	}
	for _, ch := range channel.ProcessingOrder {
		if files := byChannel[ch]; len(files) > 0 {
			g.logger.Debugf("  ->%s: %d files created %v", ch, len(files), files)
		}
	}
}
