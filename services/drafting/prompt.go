package drafting

import (
	"fmt"
	"strings"
)

// Writing styles offered by the petition form.
var Styles = []string{"Objetivo", "Persuasivo", "Técnico", "Detalhado"}

// BaseTokens is the token budget at full detail.
const BaseTokens = 2000

// Petition describes a petition the user wants drafted.
type Petition struct {
	Kind    string
	Context string
	Style   string
	Detail  float64 // 0.1 to 1.0; also used as temperature
}

// Validate checks the required petition fields.
func (p Petition) Validate() error {
	if strings.TrimSpace(p.Kind) == "" || strings.TrimSpace(p.Context) == "" {
		return fmt.Errorf("%w: petition kind and case description are required", ErrInvalidRequest)
	}
	return nil
}

// TokenLimit is the token budget announced in the prompt.
func (p Petition) TokenLimit() int {
	return int(BaseTokens * p.Detail)
}

// Request turns the petition into a drafting request.
func (p Petition) Request() Request {
	return Request{
		Prompt:      BuildPetitionPrompt(p),
		Temperature: p.Detail,
		MaxTokens:   BaseTokens,
	}
}

// BuildPetitionPrompt renders the drafting instructions for a petition.
func BuildPetitionPrompt(p Petition) string {
	style := p.Style
	if style == "" {
		style = Styles[0]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Gere uma petição jurídica do tipo %s com os seguintes detalhes:\n\n", p.Kind)
	b.WriteString("**Contexto do Caso:**\n")
	b.WriteString(strings.TrimSpace(p.Context))
	b.WriteString("\n\n**Requisitos:**\n")
	fmt.Fprintf(&b, "- Estilo: %s\n", style)
	b.WriteString("- Linguagem jurídica formal brasileira\n")
	b.WriteString("- Estruturada com: 1. Preâmbulo 2. Fatos 3. Fundamentação Jurídica 4. Pedido\n")
	b.WriteString("- Cite artigos de lei e jurisprudência quando aplicável\n")
	b.WriteString("- Inclua fecho padrão (Nestes termos, pede deferimento)\n")
	fmt.Fprintf(&b, "- Limite de %d tokens\n", p.TokenLimit())
	return b.String()
}
