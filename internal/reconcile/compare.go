package reconcile

import (
	"excelEvidence/internal/channel"
	"excelEvidence/internal/dataset"
	"excelEvidence/internal/models"
)

// Mismatch is a customer whose channels differ between the customer table and the
// secondary source.
type Mismatch struct {
	ID        int    `json:"id"`
	Account   string `json:"account"`
	Name      string `json:"name"`
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// Compare checks every customer present in the secondary source against the first
// matching row there. Customers absent from the source are not reported.
func Compare(customers []models.CustomerRecord, src Source) []Mismatch {
	if src.Table == nil || src.JoinColumn == "" || src.ChannelColumn == "" {
		return nil
	}

	var out []Mismatch
	for _, c := range customers {
		row, ok := dataset.First(src.Table, src.JoinColumn, c.Account)
		if !ok {
			continue
		}
		raw := row[src.ChannelColumn]
		if c.Channels().Equal(channel.Normalize(cell(raw))) {
			continue
		}
		out = append(out, Mismatch{
			ID:        len(out) + 1,
			Account:   c.Account,
			Name:      c.Name,
			Primary:   c.EffectiveManagement,
			Secondary: raw,
		})
	}
	return out
}
