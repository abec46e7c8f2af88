package models

// Employee represents a staff member and login account (a "Funcionario" row).
type Employee struct {
	Name      string    `json:"nome"`
	Email     string    `json:"email"`
	Phone     string    `json:"telefone"`
	Username  string    `json:"usuario"`
	Secret    string    `json:"senha"`
	Office    string    `json:"escritorio"`
	Area      AreaList  `json:"area"`
	Role      Role      `json:"papel"`
	CreatedAt Timestamp `json:"data_cadastro"`
	CreatedBy string    `json:"cadastrado_por"`
}

func (e Employee) ScopeOffice() string { return e.Office }

// ScopeAreas returns the employee's areas, or nil for employees working in every area.
func (e Employee) ScopeAreas() []string {
	if len(e.Area) == 0 || e.Area.Contains(AllAreas) {
		return nil
	}
	return e.Area
}

// Identity projects the employee onto the identity used for access checks.
func (e Employee) Identity() Identity {
	return Identity{
		Username: e.Username,
		Name:     e.Name,
		Role:     e.Role,
		Office:   e.Office,
		Areas:    e.Area,
	}
}

func (e Employee) Validate() error {
	return missing(map[string]string{
		"nome":     e.Name,
		"email":    e.Email,
		"telefone": e.Phone,
		"usuario":  e.Username,
		"senha":    e.Secret,
	})
}

// PermissionUpdate reassigns an employee's practice areas in the external store.
type PermissionUpdate struct {
	Name   string   `json:"nome"`
	Area   AreaList `json:"area"`
	Update bool     `json:"atualizar"`
}
