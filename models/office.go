package models

// TechnicalContact is the person technically responsible for an office.
type TechnicalContact struct {
	Name  string `json:"responsavel_tecnico"`
	Phone string `json:"telefone_tecnico"`
	Email string `json:"email_tecnico"`
}

// Office represents a branch of the law office (an "Escritorio" row).
// The technical contact is flattened into the same row on the wire.
type Office struct {
	Name    string `json:"nome"`
	Address string `json:"endereco"`
	Phone   string `json:"telefone"`
	Email   string `json:"email"`
	TaxID   string `json:"cnpj"`

	TechnicalContact

	Areas     AreaList  `json:"area_atuacao"`
	CreatedAt Timestamp `json:"data_cadastro"`
}

func (o Office) ScopeOffice() string  { return o.Name }
func (o Office) ScopeAreas() []string { return nil }

func (o Office) Validate() error {
	return missing(map[string]string{
		"nome":                o.Name,
		"endereco":            o.Address,
		"telefone":            o.Phone,
		"email":               o.Email,
		"cnpj":                o.TaxID,
		"responsavel_tecnico": o.TechnicalContact.Name,
		"telefone_tecnico":    o.TechnicalContact.Phone,
		"email_tecnico":       o.TechnicalContact.Email,
	})
}
