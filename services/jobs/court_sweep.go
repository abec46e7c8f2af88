package jobs

import (
	"context"
	"strings"
	"time"

	"law_office_desk/models"
	"law_office_desk/services/judicial"

	"github.com/rs/zerolog/log"
)

// DefaultSweepPause is the wait between two court lookups.
const DefaultSweepPause = time.Second

// CourtCheck holds the latest movements found for one case.
type CourtCheck struct {
	Number    string   `json:"numero"`
	Client    string   `json:"cliente"`
	Movements []string `json:"movimentacoes"`
}

// SweepOpenCases looks up the recent movements of every open case with a
// number, one case at a time. It stops early when ctx is cancelled and returns
// what was checked so far.
func SweepOpenCases(ctx context.Context, cases []models.Case, provider judicial.Provider, pause time.Duration) []CourtCheck {
	var pending []models.Case
	for _, c := range cases {
		if !c.Closed && strings.TrimSpace(c.Number) != "" {
			pending = append(pending, c)
		}
	}
	log.Info().Int("cases", len(pending)).Msg("Starting court sweep")

	checks := make([]CourtCheck, 0, len(pending))
	for i, c := range pending {
		if i > 0 && pause > 0 {
			select {
			case <-ctx.Done():
				log.Warn().Int("checked", len(checks)).Msg("Court sweep cancelled")
				return checks
			case <-time.After(pause):
			}
		}
		if ctx.Err() != nil {
			return checks
		}
		checks = append(checks, CourtCheck{
			Number:    c.Number,
			Client:    c.ClientName,
			Movements: judicial.RecentMovements(ctx, provider, c.Number),
		})
		log.Debug().Str("case", c.Number).Msg("Checked court movements")
	}

	log.Info().Int("checked", len(checks)).Msg("Court sweep completed")
	return checks
}
