package services

import (
	"sort"

	"law_office_desk/services/status"
)

// AllFilter is the filter option meaning "no restriction".
const AllFilter = "Todos"

// DashboardFilter is the exact-match selection offered on the dashboard.
// Empty values and AllFilter do not restrict.
type DashboardFilter struct {
	Area   string
	Status string
	Office string
}

// Dashboard is the case overview for one identity.
type Dashboard struct {
	Cases   []status.Annotated
	Summary status.Summary
	Areas   []string
	Offices []string
}

func selected(v string) bool {
	return v != "" && v != AllFilter
}

// BuildDashboard filters annotated cases and computes the per-status counts of the result.
// Area and office options come from the unfiltered set so the selection can be widened again.
func BuildDashboard(cases []status.Annotated, f DashboardFilter) Dashboard {
	d := Dashboard{
		Areas:   distinct(cases, func(c status.Annotated) string { return c.Area }),
		Offices: distinct(cases, func(c status.Annotated) string { return c.Office }),
	}

	for _, c := range cases {
		if selected(f.Area) && c.Area != f.Area {
			continue
		}
		if selected(f.Status) && string(c.Status) != f.Status {
			continue
		}
		if selected(f.Office) && c.Office != f.Office {
			continue
		}
		d.Cases = append(d.Cases, c)
	}
	d.Summary = status.Summarize(d.Cases)
	return d
}

func distinct(cases []status.Annotated, key func(status.Annotated) string) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range cases {
		v := key(c)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
