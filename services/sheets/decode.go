package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"law_office_desk/models"
)

// Cases fetches and decodes every case.
func (g *Gateway) Cases(ctx context.Context) ([]models.Case, error) {
	records, err := g.Fetch(ctx, models.RecordTypeCase)
	return DecodeCases(records, g.now()), err
}

// Clients fetches and decodes every client.
func (g *Gateway) Clients(ctx context.Context) ([]models.Client, error) {
	records, err := g.Fetch(ctx, models.RecordTypeClient)
	return DecodeClients(records, g.now()), err
}

// Offices fetches and decodes every office.
func (g *Gateway) Offices(ctx context.Context) ([]models.Office, error) {
	records, err := g.Fetch(ctx, models.RecordTypeOffice)
	return DecodeOffices(records), err
}

// Employees fetches and decodes the employee roster.
func (g *Gateway) Employees(ctx context.Context) ([]models.Employee, error) {
	records, err := g.Fetch(ctx, models.RecordTypeEmployee)
	return DecodeEmployees(records), err
}

// Drafts fetches and decodes the generated-document history.
func (g *Gateway) Drafts(ctx context.Context) ([]models.DraftRecord, error) {
	records, err := g.Fetch(ctx, models.RecordTypeDraft)
	return DecodeDrafts(records), err
}

// DecodeCases converts raw rows into cases. Missing or unparseable deadlines become today.
func DecodeCases(records []Record, today time.Time) []models.Case {
	out := make([]models.Case, 0, len(records))
	for _, r := range records {
		out = append(out, models.Case{
			Number:         str(r, "numero"),
			ClientName:     str(r, "cliente"),
			ContractType:   str(r, "contrato"),
			Description:    str(r, "descricao"),
			TotalValue:     number(r, "valor_total"),
			MovedValue:     number(r, "valor_movimentado"),
			StartDate:      models.NewDate(models.NormalizeDate(str(r, "prazo_inicial"), today)),
			Deadline:       models.NewDate(models.NormalizeDate(str(r, "prazo"), today)),
			RecentActivity: boolean(r, "houve_movimentacao"),
			Closed:         boolean(r, "encerrado"),
			Responsible:    str(r, "responsavel"),
			Area:           str(r, "area"),
			Office:         str(r, "escritorio"),
			MaterialLink:   str(r, "link_material"),
			CreatedAt:      timestamp(r, "data_cadastro"),
		})
	}
	return out
}

// DecodeClients converts raw rows into clients.
func DecodeClients(records []Record, today time.Time) []models.Client {
	out := make([]models.Client, 0, len(records))
	for _, r := range records {
		c := models.Client{
			Name:      str(r, "nome"),
			Email:     str(r, "email"),
			Phone:     str(r, "telefone"),
			Address:   str(r, "endereco"),
			Notes:     str(r, "observacoes"),
			Office:    str(r, "escritorio"),
			CreatedBy: str(r, "responsavel"),
			CreatedAt: timestamp(r, "cadastro"),
		}
		if birth := str(r, "aniversario"); birth != "" {
			c.BirthDate = models.NewDate(models.NormalizeDate(birth, today))
		}
		out = append(out, c)
	}
	return out
}

// DecodeOffices converts raw rows into offices.
func DecodeOffices(records []Record) []models.Office {
	out := make([]models.Office, 0, len(records))
	for _, r := range records {
		out = append(out, models.Office{
			Name:    str(r, "nome"),
			Address: str(r, "endereco"),
			Phone:   str(r, "telefone"),
			Email:   str(r, "email"),
			TaxID:   str(r, "cnpj"),
			TechnicalContact: models.TechnicalContact{
				Name:  str(r, "responsavel_tecnico"),
				Phone: str(r, "telefone_tecnico"),
				Email: str(r, "email_tecnico"),
			},
			Areas:     models.ParseAreaList(str(r, "area_atuacao")),
			CreatedAt: timestamp(r, "data_cadastro"),
		})
	}
	return out
}

// DecodeEmployees converts raw rows into employees, applying the roster defaults:
// role assistant, office Global and area Todas.
func DecodeEmployees(records []Record) []models.Employee {
	out := make([]models.Employee, 0, len(records))
	for _, r := range records {
		e := models.Employee{
			Name:      str(r, "nome"),
			Email:     str(r, "email"),
			Phone:     str(r, "telefone"),
			Username:  str(r, "usuario"),
			Secret:    raw(r, "senha"),
			Office:    str(r, "escritorio"),
			Area:      models.ParseAreaList(str(r, "area")),
			Role:      models.ParseRole(str(r, "papel")),
			CreatedAt: timestamp(r, "data_cadastro"),
			CreatedBy: str(r, "cadastrado_por"),
		}
		if e.Role == "" {
			e.Role = models.RoleAssistant
		}
		if e.Office == "" {
			e.Office = models.DefaultOffice
		}
		if len(e.Area) == 0 {
			e.Area = models.AreaList{models.AllAreas}
		}
		out = append(out, e)
	}
	return out
}

// DecodeDrafts converts raw rows into draft history entries.
func DecodeDrafts(records []Record) []models.DraftRecord {
	out := make([]models.DraftRecord, 0, len(records))
	for _, r := range records {
		kind := str(r, "tipo_peticao")
		if kind == "" && str(r, "tipo") != models.RecordTypeDraft {
			kind = str(r, "tipo")
		}
		out = append(out, models.DraftRecord{
			Kind:        kind,
			GeneratedAt: timestamp(r, "data"),
			Author:      str(r, "responsavel"),
			Office:      str(r, "escritorio"),
			Client:      str(r, "cliente_associado"),
			CaseNumber:  str(r, "numero"),
			Content:     str(r, "conteudo"),
		})
	}
	return out
}

// str reads key as a string. Numbers are formatted without a trailing ".0" so
// numeric case numbers and phone columns survive.
func str(r Record, key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// raw reads key without trimming. Secrets are compared byte for byte.
func raw(r Record, key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return str(r, key)
	}
}

func boolean(r Record, key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "sim", "s", "yes":
			return true
		}
	}
	return false
}

func number(r Record, key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case string:
		s := strings.TrimSpace(v)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		// Brazilian notation: 1.234,56
		s = strings.ReplaceAll(s, ".", "")
		if f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); err == nil {
			return f
		}
	}
	return 0
}

func timestamp(r Record, key string) models.Timestamp {
	s := str(r, key)
	if s == "" {
		return models.Timestamp{}
	}
	t, err := models.ParseTimestamp(s)
	if err != nil {
		return models.Timestamp{}
	}
	return models.Timestamp{Time: t}
}
