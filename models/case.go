package models

// Contract types offered when registering a case.
const (
	ContractFixed       = "Fixo"
	ContractPerAct      = "Por Ato"
	ContractContingency = "Contingência"
)

// Case represents a legal case (a "Processo" row in the external store)
type Case struct {
	Number       string `json:"numero"`
	ClientName   string `json:"cliente"`
	ContractType string `json:"contrato"`
	Description  string `json:"descricao"`

	TotalValue float64 `json:"valor_total"`
	MovedValue float64 `json:"valor_movimentado"`

	StartDate Date `json:"prazo_inicial"`
	Deadline  Date `json:"prazo"`

	RecentActivity bool `json:"houve_movimentacao"`
	Closed         bool `json:"encerrado"`

	Responsible  string    `json:"responsavel"`
	Area         string    `json:"area"`
	Office       string    `json:"escritorio"`
	MaterialLink string    `json:"link_material"`
	CreatedAt    Timestamp `json:"data_cadastro"`
}

func (c Case) ScopeOffice() string  { return c.Office }
func (c Case) ScopeAreas() []string { return []string{c.Area} }

// Validate checks the fields the registration form marks as required.
func (c Case) Validate() error {
	return missing(map[string]string{
		"cliente":   c.ClientName,
		"numero":    c.Number,
		"descricao": c.Description,
	})
}
