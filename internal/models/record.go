package models

import (
	"errors"
	"strings"

	"excelEvidence/internal/channel"
)

// ErrMissingColumns is returned when the customer table lacks a required column.
var ErrMissingColumns = errors.New("customer table is missing required columns")

// CustomerRecord is one row of the source customer table.
type CustomerRecord struct {
	Index               int               `json:"index" bson:"index"`
	Name                string            `json:"name" bson:"name"`
	Account             string            `json:"account" bson:"account"`
	Phone               string            `json:"phone,omitempty" bson:"phone,omitempty"`
	EffectiveManagement string            `json:"effective_management" bson:"effective_management"`
	Fields              map[string]string `json:"-" bson:"-"`
}

// Field returns the trimmed raw value of any customer-side column.
func (c CustomerRecord) Field(column string) string {
	return strings.TrimSpace(c.Fields[column])
}

// Channels is the plain normalization of the effective management value.
func (c CustomerRecord) Channels() channel.Set {
	return channel.Normalize(c.EffectiveManagement)
}

// FindByAccount returns the first customer whose account matches.
func FindByAccount(customers []CustomerRecord, account string) (CustomerRecord, bool) {
	account = strings.TrimSpace(account)
	for _, c := range customers {
		if c.Account == account {
			return c, true
		}
	}
	return CustomerRecord{}, false
}
