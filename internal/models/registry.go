package models

import (
	"sort"

	"excelEvidence/internal/channel"
)

// Bucket names one category of artifact that generation knowingly did not create.
type Bucket string

const (
	IVRNoMatch       Bucket = "ivr_sin_match"
	SMSNoMatch       Bucket = "sms_sin_match"
	CallNoMatch      Bucket = "call_sin_match"
	IVRNoAudio       Bucket = "ivr_sin_audio"
	CallNoAudio      Bucket = "call_sin_audio"
	EmptyFolders     Bucket = "carpetas_vacias"
	CallPhoneNoMatch Bucket = "call_sin_match_celular"
)

// Buckets lists every bucket in reporting order.
var Buckets = []Bucket{IVRNoMatch, SMSNoMatch, CallNoMatch, IVRNoAudio, CallNoAudio, EmptyFolders, CallPhoneNoMatch}

// BucketsFor returns the buckets that explain a missing artifact of the given kind.
func BucketsFor(kind channel.ArtifactKind) []Bucket {
	switch kind {
	case channel.IVRExcel:
		return []Bucket{IVRNoMatch}
	case channel.IVRAudio:
		return []Bucket{IVRNoAudio}
	case channel.SMSExcel:
		return []Bucket{SMSNoMatch}
	case channel.CallExcel:
		return []Bucket{CallNoMatch}
	case channel.CallAudio:
		return []Bucket{CallNoAudio, CallPhoneNoMatch}
	}
	return nil
}

type RegistryEntry struct {
	Bucket  Bucket `csv:"bucket" json:"bucket" bson:"bucket"`
	Folder  string `csv:"folder" json:"folder" bson:"folder"`
	Name    string `csv:"name" json:"name" bson:"name"`
	Account string `csv:"account" json:"account" bson:"account"`
	Detail  string `csv:"detail,omitempty" json:"detail,omitempty" bson:"detail,omitempty"`
}

// Registry records, per bucket, the customer folders whose artifacts were not created.
type Registry struct {
	entries []RegistryEntry
	index   map[Bucket]map[string]int
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[Bucket]map[string]int)}
}

// RegistryFromEntries rebuilds a registry, e.g. from a persisted ledger.
func RegistryFromEntries(entries []RegistryEntry) *Registry {
	r := NewRegistry()
	for _, e := range entries {
		r.add(e)
	}
	return r
}

// Add records folder under bucket. Repeated adds keep the first entry.
func (r *Registry) Add(bucket Bucket, folder, name, account, detail string) {
	r.add(RegistryEntry{Bucket: bucket, Folder: folder, Name: name, Account: account, Detail: detail})
}

func (r *Registry) add(e RegistryEntry) {
	folders, ok := r.index[e.Bucket]
	if !ok {
		folders = make(map[string]int)
		r.index[e.Bucket] = folders
	}
	if _, dup := folders[e.Folder]; dup {
		return
	}
	folders[e.Folder] = len(r.entries)
	r.entries = append(r.entries, e)
}

func (r *Registry) Has(bucket Bucket, folder string) bool {
	if r == nil {
		return false
	}
	_, ok := r.index[bucket][folder]
	return ok
}

// Forget drops the folder from the given buckets so a repair can register it again.
func (r *Registry) Forget(folder string, buckets ...Bucket) {
	drop := make(map[Bucket]bool, len(buckets))
	for _, b := range buckets {
		drop[b] = true
	}
	kept := r.entries[:0]
	for _, e := range r.entries {
		if e.Folder == folder && drop[e.Bucket] {
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	r.reindex()
}

func (r *Registry) reindex() {
	r.index = make(map[Bucket]map[string]int)
	for i, e := range r.entries {
		if r.index[e.Bucket] == nil {
			r.index[e.Bucket] = make(map[string]int)
		}
		r.index[e.Bucket][e.Folder] = i
	}
}

// Names lists the customer names recorded under bucket, in insertion order.
func (r *Registry) Names(bucket Bucket) []string {
	var names []string
	for _, e := range r.entries {
		if e.Bucket == bucket {
			names = append(names, e.Name)
		}
	}
	return names
}

func (r *Registry) Entries() []RegistryEntry {
	return append([]RegistryEntry(nil), r.entries...)
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// Counts returns the number of entries per bucket, every bucket present.
func (r *Registry) Counts() map[Bucket]int {
	counts := make(map[Bucket]int, len(Buckets))
	for _, b := range Buckets {
		counts[b] = 0
	}
	for _, e := range r.entries {
		counts[e.Bucket]++
	}
	return counts
}

// Folders returns the distinct folders with at least one entry, sorted.
func (r *Registry) Folders() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range r.entries {
		if !seen[e.Folder] {
			seen[e.Folder] = true
			out = append(out, e.Folder)
		}
	}
	sort.Strings(out)
	return out
}
