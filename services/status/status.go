// Package status derives the display status of a case from its deadline and flags.
package status

import (
	"sort"
	"time"

	"law_office_desk/models"
)

// Tag is the urgency state of a case.
type Tag string

const (
	Closed  Tag = "closed"
	Active  Tag = "active"
	Overdue Tag = "overdue"
	DueSoon Tag = "due_soon"
	Normal  Tag = "normal"
)

// DueSoonDays is the largest number of remaining days still reported as DueSoon.
const DueSoonDays = 10

// Tags lists every tag in display order: most urgent first, then settled cases.
var Tags = []Tag{Overdue, DueSoon, Normal, Active, Closed}

// Classify returns the status of a case. Conditions are checked in priority order
// and the first match wins. deadline and today are compared as calendar dates.
func Classify(deadline time.Time, recentActivity, closed bool, today time.Time) Tag {
	if closed {
		return Closed
	}
	if recentActivity {
		return Active
	}
	remaining := DaysBetween(today, deadline)
	if remaining < 0 {
		return Overdue
	}
	if remaining <= DueSoonDays {
		return DueSoon
	}
	return Normal
}

// DaysBetween returns the number of calendar days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	da := models.CivilDate(a)
	db := models.CivilDate(b)
	return int(db.Sub(da).Hours() / 24)
}

// ParseTag maps a tag string back to a Tag. ok is false for unknown values.
func ParseTag(s string) (Tag, bool) {
	for _, t := range Tags {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Rank is the position of t in display order.
func (t Tag) Rank() int {
	for i, v := range Tags {
		if v == t {
			return i
		}
	}
	return len(Tags)
}

// Classifier binds Classify to a clock so callers never read the wall clock directly.
type Classifier struct {
	Now func() time.Time
}

// NewClassifier returns a classifier using the system clock.
func NewClassifier() *Classifier {
	return &Classifier{Now: time.Now}
}

func (c *Classifier) today() time.Time {
	if c == nil || c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Case classifies a case record.
func (c *Classifier) Case(rec models.Case) Tag {
	return Classify(rec.Deadline.Time, rec.RecentActivity, rec.Closed, c.today())
}

// Annotated pairs a case with its computed status.
type Annotated struct {
	models.Case
	Status        Tag `json:"status"`
	DaysRemaining int `json:"days_remaining"`
}

// Annotate classifies every case and sorts the result in display order.
// Cases with the same status keep their input order.
func (c *Classifier) Annotate(cases []models.Case) []Annotated {
	today := c.today()
	out := make([]Annotated, 0, len(cases))
	for _, rec := range cases {
		out = append(out, Annotated{
			Case:          rec,
			Status:        Classify(rec.Deadline.Time, rec.RecentActivity, rec.Closed, today),
			DaysRemaining: DaysBetween(today, rec.Deadline.Time),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Status.Rank() < out[j].Status.Rank()
	})
	return out
}

// Summary counts cases per status for the dashboard.
type Summary struct {
	Total  int         `json:"total"`
	Counts map[Tag]int `json:"counts"`
}

// Summarize counts annotated cases per status. Every tag is present in Counts.
func Summarize(cases []Annotated) Summary {
	s := Summary{Total: len(cases), Counts: make(map[Tag]int, len(Tags))}
	for _, t := range Tags {
		s.Counts[t] = 0
	}
	for _, c := range cases {
		s.Counts[c.Status]++
	}
	return s
}
