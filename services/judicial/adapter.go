package judicial

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	// MaxMovements is the number of most recent movements shown for a case.
	MaxMovements = 5

	NoMovementsMessage  = "Nenhuma movimentação encontrada"
	LookupFailedMessage = "Erro ao consultar movimentações"

	DefaultTimeout = 10 * time.Second
)

// Provider defines the interface for all court-specific implementations
type Provider interface {
	// GetMovements returns the latest docket movements of a case, newest first.
	GetMovements(ctx context.Context, caseNumber string) ([]Movement, error)
}

// Movement is one docket entry as published by the court.
type Movement struct {
	Text string `json:"text"`
}

// BaseService provides common functionality like HTTP client
type BaseService struct {
	client *resty.Client
}

// NewBaseService creates a configured base service
func NewBaseService(timeout time.Duration) BaseService {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return BaseService{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", "Mozilla/5.0 (compatible; law-office-desk)"),
	}
}

// Options configures a provider.
type Options struct {
	BaseURL string
	Timeout time.Duration
}

// GetProvider returns the correct implementation for a court system
func GetProvider(court string, opts Options) (Provider, error) {
	switch strings.ToUpper(strings.TrimSpace(court)) {
	case "", "TJSP", "SP", "ESAJ":
		return NewEsajService(opts), nil
	default:
		return nil, fmt.Errorf("judicial provider not implemented for court: %s", court)
	}
}

// RecentMovements returns display lines for a case: the movement texts, or a
// single fallback message when there are none or the lookup fails.
func RecentMovements(ctx context.Context, p Provider, caseNumber string) []string {
	movements, err := p.GetMovements(ctx, caseNumber)
	if err != nil {
		log.Warn().Err(err).Str("case", caseNumber).Msg("Court lookup failed")
		return []string{LookupFailedMessage}
	}
	if len(movements) == 0 {
		return []string{NoMovementsMessage}
	}

	lines := make([]string, 0, len(movements))
	for _, m := range movements {
		lines = append(lines, m.Text)
	}
	return lines
}
