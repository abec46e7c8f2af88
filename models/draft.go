package models

import "time"

// DraftContentLimit is the number of characters of generated text kept in the history.
const DraftContentLimit = 1000

// Petition kinds offered by the drafting form.
var PetitionKinds = []string{"Inicial Cível", "Resposta", "Recurso", "Memorial", "Contestação"}

// DraftRecord is one entry of the generated-document history (a "Historico_Peticao" row).
type DraftRecord struct {
	Kind        string    `json:"tipo_peticao"` // "tipo" is the record-type discriminator on the wire
	GeneratedAt Timestamp `json:"data"`
	Author      string    `json:"responsavel"`
	Office      string    `json:"escritorio"`
	Client      string    `json:"cliente_associado"`
	CaseNumber  string    `json:"numero"`
	Content     string    `json:"conteudo"`
}

func (d DraftRecord) ScopeOffice() string  { return d.Office }
func (d DraftRecord) ScopeAreas() []string { return nil }

// NewDraftRecord builds a history entry, truncating the generated content.
func NewDraftRecord(kind string, author Identity, client, caseNumber, content string, at time.Time) DraftRecord {
	office := author.Office
	if office == "" {
		office = DefaultOffice
	}
	return DraftRecord{
		Kind:        kind,
		GeneratedAt: Timestamp{Time: at},
		Author:      author.Username,
		Office:      office,
		Client:      client,
		CaseNumber:  caseNumber,
		Content:     TruncateContent(content, DraftContentLimit),
	}
}

// TruncateContent cuts s to limit characters and appends "..." when it was longer.
func TruncateContent(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
