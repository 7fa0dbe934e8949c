package dataset

import (
	"fmt"
	"strings"

	"excelEvidence/internal/models"
)

const defaultCustomerName = "Sin nombre"

// Customer table column predicates, in priority order.
var (
	NameColumn       = []ColumnPredicate{EqualFold("NOMBRE"), EqualFold("CLIENTE"), Contains("NOMBRE"), Contains("CLIENTE")}
	AccountColumn    = []ColumnPredicate{EqualFold("CUENTA"), Contains("CUENTA")}
	ManagementColumn = []ColumnPredicate{Contains("GESTION EFECTIVA"), Contains("GESTIÓN EFECTIVA")}
	PhoneColumn      = []ColumnPredicate{EqualFold("TELEFONO"), EqualFold("TELÉFONO"), Contains("TELEFONO"), Contains("CELULAR")}
)

// Customers maps the rows of the source table to customer records. A table without a name,
// account or effective management column is a structural failure.
func Customers(t *Table) ([]models.CustomerRecord, error) {
	nameCol, hasName := ResolveColumn(t, NameColumn...)
	accountCol, hasAccount := ResolveColumn(t, AccountColumn...)
	managementCol, hasManagement := ResolveColumn(t, ManagementColumn...)
	phoneCol, _ := ResolveColumn(t, PhoneColumn...)

	var missing []string
	if !hasName {
		missing = append(missing, "NOMBRE/CLIENTE")
	}
	if !hasAccount {
		missing = append(missing, "CUENTA")
	}
	if !hasManagement {
		missing = append(missing, "GESTION EFECTIVA")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrMissingColumns, strings.Join(missing, ", "))
	}

	customers := make([]models.CustomerRecord, 0, t.Len())
	for i := range t.Rows {
		name := t.Value(i, nameCol)
		if name == "" {
			name = defaultCustomerName
		}
		customers = append(customers, models.CustomerRecord{
			Index:               i,
			Name:                name,
			Account:             t.Value(i, accountCol),
			Phone:               t.Value(i, phoneCol),
			EffectiveManagement: t.Value(i, managementCol),
			Fields:              t.Record(i),
		})
	}
	return customers, nil
}

// LoadCustomers reads the customer table from path.
func LoadCustomers(path string) ([]models.CustomerRecord, error) {
	t, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer table: %w", err)
	}
	return Customers(t)
}
