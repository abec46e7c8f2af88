package access

import (
	"law_office_desk/models"
)

// CanSee reports whether id may see rec.
//
//	owner              everything
//	manager            records of the same office
//	lawyer, assistant  records of the same office in one of the identity's areas
//	anything else      nothing
//
// Records without an area (clients, offices, draft history) are scoped by office only.
func CanSee(id models.Identity, rec models.Scoped) bool {
	switch {
	case id.Role == models.RoleOwner:
		return true
	case id.Role == models.RoleManager:
		return rec.ScopeOffice() == id.Office
	case id.Role.IsStaff():
		if rec.ScopeOffice() != id.Office {
			return false
		}
		areas := rec.ScopeAreas()
		if areas == nil {
			return true
		}
		for _, a := range areas {
			if id.HasArea(a) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Visible returns the records id may see, in input order. Owners get the input back unchanged.
func Visible[T models.Scoped](id models.Identity, records []T) []T {
	if id.Role == models.RoleOwner {
		return records
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		if CanSee(id, r) {
			out = append(out, r)
		}
	}
	return out
}

func VisibleCases(id models.Identity, cases []models.Case) []models.Case {
	return Visible(id, cases)
}

func VisibleClients(id models.Identity, clients []models.Client) []models.Client {
	return Visible(id, clients)
}

func VisibleEmployees(id models.Identity, employees []models.Employee) []models.Employee {
	return Visible(id, employees)
}

func VisibleDrafts(id models.Identity, drafts []models.DraftRecord) []models.DraftRecord {
	return Visible(id, drafts)
}

func VisibleOffices(id models.Identity, offices []models.Office) []models.Office {
	return Visible(id, offices)
}
