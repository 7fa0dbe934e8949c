// Package channel holds the static knowledge about outreach channels: which tags exist, how raw
// "gestion efectiva" values normalize into them, and which evidence artifacts each one implies.
package channel

import (
	"sort"
	"strings"
)

type Channel string

const (
	IVR      Channel = "IVR"
	SMS      Channel = "SMS"
	CALL     Channel = "CALL"
	WhatsApp Channel = "WHATSAPP"
	Email    Channel = "EMAIL"
	Others   Channel = "OTROS"
)

// ProcessingOrder is the order artifacts are produced in, whatever order the set carries.
var ProcessingOrder = []Channel{IVR, SMS, CALL}

// PreferenceOrder ranks tags in merged sets; anything else follows alphabetically.
var PreferenceOrder = []Channel{IVR, SMS, CALL, WhatsApp, Email, Others}

// Known reports whether the channel produces artifacts.
func Known(c Channel) bool {
	switch c {
	case IVR, SMS, CALL:
		return true
	}
	return false
}

// Set is an ordered list of unique channel tags.
type Set []Channel

func (s Set) Has(c Channel) bool {
	for _, v := range s {
		if strings.EqualFold(string(v), string(c)) {
			return true
		}
	}
	return false
}

func (s Set) Strings() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = string(c)
	}
	return out
}

func (s Set) String() string {
	if len(s) == 0 {
		return "NINGUNA"
	}
	return strings.Join(s.Strings(), ", ")
}

// Equal compares membership, ignoring order.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for _, c := range s {
		if !other.Has(c) {
			return false
		}
	}
	return true
}

// Union appends the tags of other that s does not already hold, keeping first occurrences.
func (s Set) Union(other Set) Set {
	out := make(Set, 0, len(s)+len(other))
	for _, c := range s {
		if !out.Has(c) {
			out = append(out, Channel(strings.ToUpper(string(c))))
		}
	}
	for _, c := range other {
		if !out.Has(c) {
			out = append(out, Channel(strings.ToUpper(string(c))))
		}
	}
	return out
}

// Ordered returns the set sorted by PreferenceOrder, then lexicographically.
func (s Set) Ordered() Set {
	rank := make(map[Channel]int, len(PreferenceOrder))
	for i, c := range PreferenceOrder {
		rank[c] = i
	}
	out := append(Set(nil), s...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, iok := rank[out[i]]
		rj, jok := rank[out[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		case jok:
			return false
		}
		return out[i] < out[j]
	})
	return out
}
