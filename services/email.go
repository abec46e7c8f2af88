package services

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"sort"
	"strings"
	texttemplate "text/template"
	"time"

	"law_office_desk/config"
	"law_office_desk/models"
	"law_office_desk/services/i18n"
	"law_office_desk/services/status"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"
)

//go:embed emails/*
var emailTemplates embed.FS

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// renderTemplate executes emails/<name>.html and emails/<name>.txt with data.
func renderTemplate(name string, data interface{}) (html string, text string, err error) {
	htmlTmpl, err := htmltemplate.ParseFS(emailTemplates, "emails/"+name+".html")
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s.html: %w", name, err)
	}
	textTmpl, err := texttemplate.ParseFS(emailTemplates, "emails/"+name+".txt")
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s.txt: %w", name, err)
	}

	var hb, tb bytes.Buffer
	if err := htmlTmpl.Execute(&hb, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s.html: %w", name, err)
	}
	if err := textTmpl.Execute(&tb, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s.txt: %w", name, err)
	}
	return hb.String(), tb.String(), nil
}

// EmailSender delivers a prepared message. It returns the provider message ID.
type EmailSender interface {
	Send(params *resend.SendEmailRequest) (string, error)
}

type resendSender struct {
	client *resend.Client
}

func (s resendSender) Send(params *resend.SendEmailRequest) (string, error) {
	sent, err := s.client.Emails.Send(params)
	if err != nil {
		return "", err
	}
	return sent.Id, nil
}

// Mailer sends email through Resend, or logs it when test mode is on.
type Mailer struct {
	cfg    *config.Config
	sender EmailSender
}

// NewMailer creates a mailer from configuration.
func NewMailer(cfg *config.Config) *Mailer {
	m := &Mailer{cfg: cfg}
	if cfg.ResendAPIKey != "" {
		m.sender = resendSender{client: resend.NewClient(cfg.ResendAPIKey)}
	}
	return m
}

// Send sends one email.
func (m *Mailer) Send(email *Email) error {
	if m.cfg.EmailTestMode {
		logEmail(email)
		return nil
	}

	if m.sender == nil {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", m.cfg.EmailFromName, m.cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}
	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	id, err := m.sender.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	log.Info().Str("id", id).Strs("to", email.To).Msg("Email sent via Resend")
	return nil
}

// logEmail records an email that test mode kept from being sent.
func logEmail(email *Email) {
	log.Info().
		Strs("to", email.To).
		Str("subject", email.Subject).
		Str("text", email.TextBody).
		Msg("Email logged (test mode - not sent)")
}

// DigestCase is one row of the deadline digest.
type DigestCase struct {
	Number      string
	Client      string
	Deadline    string
	Responsible string
	Status      string
}

// DigestData feeds the deadline_digest templates.
type DigestData struct {
	Subject string
	Intro   string
	None    string
	Headers []string
	Cases   []DigestCase
}

// NeedsAttention reports whether a case belongs in the deadline digest.
func NeedsAttention(c status.Annotated) bool {
	return c.Status == status.Overdue || c.Status == status.DueSoon
}

// BuildDeadlineDigest creates the digest of overdue and due-soon cases for one office.
func BuildDeadlineDigest(lang, office string, recipients []string, cases []status.Annotated, today time.Time) (*Email, error) {
	data := DigestData{
		Subject: i18n.Translate(lang, "digest.subject", map[string]interface{}{"office": office}),
		Intro:   i18n.Translate(lang, "digest.intro", map[string]interface{}{"date": today.Format(models.DateLayout)}),
		None:    i18n.Translate(lang, "digest.none"),
		Headers: []string{
			i18n.Translate(lang, "table.number"),
			i18n.Translate(lang, "table.client"),
			i18n.Translate(lang, "table.deadline"),
			i18n.Translate(lang, "table.responsible"),
			i18n.Translate(lang, "table.status"),
		},
	}
	for _, c := range cases {
		if !NeedsAttention(c) {
			continue
		}
		data.Cases = append(data.Cases, DigestCase{
			Number:      c.Number,
			Client:      c.ClientName,
			Deadline:    c.Deadline.String(),
			Responsible: c.Responsible,
			Status:      i18n.Translate(lang, "status."+string(c.Status)),
		})
	}

	html, text, err := renderTemplate("deadline_digest", data)
	if err != nil {
		return nil, err
	}
	return &Email{
		To:       recipients,
		Subject:  data.Subject,
		HTMLBody: html,
		TextBody: text,
	}, nil
}

// DigestRecipients maps each office to the addresses that receive its digest:
// the office managers plus every owner.
func DigestRecipients(employees []models.Employee, offices []string) map[string][]string {
	var owners []string
	managers := map[string][]string{}
	for _, e := range employees {
		email := strings.TrimSpace(e.Email)
		if email == "" {
			continue
		}
		switch e.Role {
		case models.RoleOwner:
			owners = append(owners, email)
		case models.RoleManager:
			managers[e.Office] = append(managers[e.Office], email)
		}
	}

	out := make(map[string][]string, len(offices))
	for _, office := range offices {
		to := append(append([]string{}, managers[office]...), owners...)
		if len(to) > 0 {
			sort.Strings(to)
			out[office] = to
		}
	}
	return out
}

// GroupByOffice splits annotated cases by their office.
func GroupByOffice(cases []status.Annotated) map[string][]status.Annotated {
	out := map[string][]status.Annotated{}
	for _, c := range cases {
		office := c.Office
		if office == "" {
			office = models.DefaultOffice
		}
		out[office] = append(out[office], c)
	}
	return out
}
