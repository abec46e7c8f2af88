package jobs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"law_office_desk/models"
	"law_office_desk/services"
	"law_office_desk/services/status"

	"github.com/rs/zerolog/log"
)

// DigestSource is the part of the store the digest reads.
type DigestSource interface {
	Cases(ctx context.Context) ([]models.Case, error)
	Employees(ctx context.Context) ([]models.Employee, error)
}

// Mailer delivers a built email. *services.Mailer satisfies it.
type Mailer interface {
	Send(email *services.Email) error
}

// DigestResult describes what happened to one office's digest.
type DigestResult struct {
	Office     string
	Recipients []string
	Pending    int // overdue and due-soon cases
	Email      *services.Email
	Sent       bool
	Err        error
}

// DigestOptions controls a digest run.
type DigestOptions struct {
	Lang   string
	DryRun bool // build every email but send none
}

// SendDeadlineDigests emails each office's managers and the owners the list of
// overdue and due-soon cases. Offices with nothing pending or nobody to notify
// are skipped. A failed send is recorded in its result and does not stop the run.
func SendDeadlineDigests(ctx context.Context, src DigestSource, classifier *status.Classifier, mailer Mailer, opts DigestOptions) ([]DigestResult, error) {
	log.Info().Bool("dry_run", opts.DryRun).Msg("Starting deadline digest job")

	cases, err := src.Cases(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch cases: %w", err)
	}
	employees, err := src.Employees(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch employees: %w", err)
	}

	today := time.Now()
	if classifier != nil && classifier.Now != nil {
		today = classifier.Now()
	}

	groups := services.GroupByOffice(classifier.Annotate(cases))
	offices := make([]string, 0, len(groups))
	for office := range groups {
		offices = append(offices, office)
	}
	sort.Strings(offices)
	recipients := services.DigestRecipients(employees, offices)

	var results []DigestResult
	for _, office := range offices {
		pending := 0
		for _, c := range groups[office] {
			if services.NeedsAttention(c) {
				pending++
			}
		}
		if pending == 0 {
			log.Debug().Str("office", office).Msg("No pending deadlines")
			continue
		}
		to := recipients[office]
		if len(to) == 0 {
			log.Warn().Str("office", office).Int("pending", pending).Msg("No digest recipients for office")
			continue
		}

		res := DigestResult{Office: office, Recipients: to, Pending: pending}
		res.Email, res.Err = services.BuildDeadlineDigest(opts.Lang, office, to, groups[office], today)
		if res.Err == nil && !opts.DryRun {
			if res.Err = mailer.Send(res.Email); res.Err == nil {
				res.Sent = true
			}
		}
		if res.Err != nil {
			log.Error().Err(res.Err).Str("office", office).Msg("Failed to send deadline digest")
		} else {
			log.Info().Str("office", office).Int("pending", pending).Bool("sent", res.Sent).Msg("Deadline digest prepared")
		}
		results = append(results, res)
	}

	log.Info().Int("offices", len(results)).Msg("Deadline digest job completed")
	return results, nil
}
