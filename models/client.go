package models

// Client represents a client of the office (a "Cliente" row)
type Client struct {
	Name      string    `json:"nome"`
	Email     string    `json:"email"`
	Phone     string    `json:"telefone"`
	BirthDate Date      `json:"aniversario"`
	Address   string    `json:"endereco"`
	Notes     string    `json:"observacoes"`
	Office    string    `json:"escritorio"`
	CreatedBy string    `json:"responsavel"`
	CreatedAt Timestamp `json:"cadastro"`
}

func (c Client) ScopeOffice() string  { return c.Office }
func (c Client) ScopeAreas() []string { return nil }

func (c Client) Validate() error {
	return missing(map[string]string{
		"nome":     c.Name,
		"email":    c.Email,
		"telefone": c.Phone,
		"endereco": c.Address,
	})
}
