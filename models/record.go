package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Record types understood by the external store (the "tipo" parameter).
const (
	RecordTypeCase     = "Processo"
	RecordTypeClient   = "Cliente"
	RecordTypeOffice   = "Escritorio"
	RecordTypeEmployee = "Funcionario"
	RecordTypeDraft    = "Historico_Peticao"
)

// Practice areas offered by the office forms.
const (
	AreaCivil          = "Cível"
	AreaCriminal       = "Criminal"
	AreaLabor          = "Trabalhista"
	AreaSocialSecurity = "Previdenciário"
	AreaTax            = "Tributário"

	// AllAreas grants every practice area.
	AllAreas = "Todas"
	// DefaultOffice is assigned to employees registered without an office.
	DefaultOffice = "Global"
)

// PracticeAreas lists the selectable areas in display order.
var PracticeAreas = []string{AreaCivil, AreaCriminal, AreaLabor, AreaSocialSecurity, AreaTax}

// ErrMissingFields is returned when a form omits required fields.
var ErrMissingFields = errors.New("required fields are missing")

// Scoped is implemented by records that belong to an office and, optionally, practice areas.
// A nil area list means the record is scoped by office only.
type Scoped interface {
	ScopeOffice() string
	ScopeAreas() []string
}

// AreaList is a set of practice areas stored comma-joined in the external store.
type AreaList []string

// ParseAreaList splits a comma-joined area string, dropping blanks.
func ParseAreaList(s string) AreaList {
	var areas AreaList
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			areas = append(areas, p)
		}
	}
	return areas
}

func (a AreaList) String() string {
	return strings.Join(a, ", ")
}

func (a AreaList) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts the comma-joined wire form or a JSON array.
func (a *AreaList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*a = ParseAreaList(strings.Join(list, ","))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("area list must be a string or an array: %w", err)
	}
	*a = ParseAreaList(s)
	return nil
}

// Contains reports whether area is in the list. AllAreas matches anything.
func (a AreaList) Contains(area string) bool {
	for _, v := range a {
		if v == AllAreas || strings.EqualFold(v, area) {
			return true
		}
	}
	return false
}

func missing(fields map[string]string) error {
	var names []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(names, ", "))
}
