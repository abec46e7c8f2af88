package judicial

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

var EsajBaseURL = "https://esaj.tjsp.jus.br"

// movementRowClass marks docket rows on the e-SAJ case page.
const movementRowClass = "fundocinza1"

// EsajService implements Provider for the São Paulo court e-SAJ portal
type EsajService struct {
	BaseService
	baseURL string
}

// NewEsajService creates a new instance
func NewEsajService(opts Options) *EsajService {
	base := opts.BaseURL
	if base == "" {
		base = EsajBaseURL
	}
	return &EsajService{
		BaseService: NewBaseService(opts.Timeout),
		baseURL:     strings.TrimRight(base, "/"),
	}
}

// GetMovements implements Provider
func (s *EsajService) GetMovements(ctx context.Context, caseNumber string) ([]Movement, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("processo.codigo", caseNumber).
		Get(s.baseURL + "/cpopg/show.do")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("court returned status: %d", resp.StatusCode())
	}

	return ParseMovements(resp.Body())
}

// ParseMovements extracts up to MaxMovements docket rows from an e-SAJ case page.
func ParseMovements(page []byte) ([]Movement, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	var movements []Movement
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(movements) >= MaxMovements {
			return
		}
		if n.Type == html.ElementNode && n.Data == "tr" && hasClass(n, movementRowClass) {
			if text := nodeText(n); text != "" {
				movements = append(movements, Movement{Text: text})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return movements, nil
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// nodeText joins the trimmed text fragments under n with single spaces.
func nodeText(n *html.Node) string {
	var parts []string
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.Join(strings.Fields(n.Data), " "); s != "" {
				parts = append(parts, s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(parts, " ")
}
