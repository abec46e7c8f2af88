package pages

import (
	"law_office_desk/models"
	"law_office_desk/services"
)

// DashboardView holds the data for the dashboard
type DashboardView struct {
	Identity *models.Identity
	Filter   services.DashboardFilter
	Data     services.Dashboard
	Warning  string
}
