// Package reconcile combines the channel set of the customer table with a secondary source
// ("nuevos datos") keyed by account.
package reconcile

import (
	"strings"

	"excelEvidence/internal/channel"
	"excelEvidence/internal/dataset"
)

// Status explains how a merge ended. Every status other than StatusMerged returns the
// primary set unchanged.
type Status int

const (
	StatusMerged Status = iota
	StatusNoSource
	StatusColumnsUnresolved
	StatusNoMatch
)

func (s Status) String() string {
	switch s {
	case StatusMerged:
		return "merged"
	case StatusNoSource:
		return "no secondary source"
	case StatusColumnsUnresolved:
		return "secondary columns unresolved"
	case StatusNoMatch:
		return "account not in secondary source"
	}
	return "unknown"
}

// Source is the secondary table with its resolved join and channel columns.
// Empty column names mean they could not be resolved.
type Source struct {
	Table         *dataset.Table
	JoinColumn    string
	ChannelColumn string
}

// Secondary source column predicates.
var (
	JoinColumn    = []dataset.ColumnPredicate{dataset.Contains("CUENTA")}
	ChannelColumn = []dataset.ColumnPredicate{dataset.Contains("TIPO DE GESTION"), dataset.Contains("TIPO GESTION")}
)

type Result struct {
	Channels channel.Set
	Status   Status
	// Added holds the tags the secondary source contributed.
	Added channel.Set
}

// Merge unions primary with every channel listed for account in the secondary source and
// reorders the result by channel.PreferenceOrder.
func Merge(primary channel.Set, account string, src Source) Result {
	if src.Table == nil {
		return Result{Channels: primary, Status: StatusNoSource}
	}
	if src.JoinColumn == "" || src.ChannelColumn == "" {
		return Result{Channels: primary, Status: StatusColumnsUnresolved}
	}
	rows, err := dataset.FindRows(src.Table, src.JoinColumn, account, dataset.Filter{})
	if err != nil {
		return Result{Channels: primary, Status: StatusColumnsUnresolved}
	}
	if rows.Len() == 0 {
		return Result{Channels: primary, Status: StatusNoMatch}
	}

	var secondary channel.Set
	for i := range rows.Rows {
		secondary = secondary.Union(channel.Normalize(cell(rows.Value(i, src.ChannelColumn))))
	}

	merged := primary.Union(secondary)
	var added channel.Set
	for _, c := range merged {
		if !primary.Has(c) {
			added = append(added, c)
		}
	}
	return Result{Channels: merged.Ordered(), Status: StatusMerged, Added: added}
}

// cell blanks the textual null markers spreadsheets export.
func cell(v string) string {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "NAN", "NONE":
		return ""
	}
	return v
}
