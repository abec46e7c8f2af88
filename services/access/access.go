// Package access authenticates staff against the employee roster and decides
// which records each identity may see.
package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"law_office_desk/models"

	"github.com/rs/zerolog/log"
)

// Bootstrap credentials used when the roster is empty or cannot be loaded.
const (
	BootstrapUsername = "dono"
	BootstrapSecret   = "dono123"
)

var (
	// ErrEmployeeNotFound is returned when a permission update names an unknown employee.
	ErrEmployeeNotFound = errors.New("employee not found")
	// ErrInvalidArea is returned when a permission update names an unknown practice area.
	ErrInvalidArea = errors.New("invalid practice area")
)

// Store is the part of the remote data gateway access control needs.
type Store interface {
	Employees(ctx context.Context) ([]models.Employee, error)
	Submit(ctx context.Context, recordType string, record any) error
	Invalidate(ctx context.Context, recordType string)
}

// Service authenticates users and applies permission updates.
type Service struct {
	store Store
}

// NewService creates an access service backed by store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// BootstrapEmployee is the single owner account available when no roster exists.
func BootstrapEmployee() models.Employee {
	return models.Employee{
		Name:     "Dono",
		Username: BootstrapUsername,
		Secret:   BootstrapSecret,
		Role:     models.RoleOwner,
		Office:   models.DefaultOffice,
		Area:     models.AreaList{models.AllAreas},
	}
}

// Roster returns the usable employee accounts keyed by username. Rows without a
// username are skipped; on duplicates the last row wins. When the store fails or
// has no usable rows the roster holds only the bootstrap account, and the store
// error (if any) is returned alongside it.
func (s *Service) Roster(ctx context.Context) (map[string]models.Employee, error) {
	employees, err := s.store.Employees(ctx)

	roster := make(map[string]models.Employee, len(employees))
	for _, e := range employees {
		if e.Username == "" {
			continue
		}
		roster[e.Username] = e
	}
	if len(roster) == 0 {
		b := BootstrapEmployee()
		roster[b.Username] = b
	}
	return roster, err
}

// Authenticate returns the identity for username if secret matches exactly.
func (s *Service) Authenticate(ctx context.Context, username, secret string) (*models.Identity, bool) {
	roster, err := s.Roster(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Roster unavailable, using bootstrap account")
	}

	e, ok := roster[username]
	if !ok || e.Secret != secret {
		log.Warn().Str("event", "security").Str("username", username).Msg("Login failed")
		return nil, false
	}

	id := e.Identity()
	log.Info().Str("event", "security").Str("username", username).Str("role", string(id.Role)).Msg("Login succeeded")
	return &id, true
}

// UpdateAreas reassigns the practice areas of the employee named employeeName.
// The external store is authoritative: the update is submitted first and the
// cached roster is dropped only after the store accepts it.
func (s *Service) UpdateAreas(ctx context.Context, employeeName string, areas models.AreaList) error {
	if len(areas) == 0 {
		return fmt.Errorf("%w: at least one area is required", ErrInvalidArea)
	}
	if err := ValidateAreas(areas); err != nil {
		return err
	}

	employees, err := s.store.Employees(ctx)
	if err != nil {
		return err
	}
	found := false
	for _, e := range employees {
		if e.Name == employeeName {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrEmployeeNotFound, employeeName)
	}

	update := models.PermissionUpdate{Name: employeeName, Area: areas, Update: true}
	if err := s.store.Submit(ctx, models.RecordTypeEmployee, update); err != nil {
		log.Error().Err(err).Str("employee", employeeName).Msg("Permission update rejected")
		return err
	}

	s.store.Invalidate(ctx, models.RecordTypeEmployee)
	log.Info().Str("event", "security").Str("employee", employeeName).Str("areas", areas.String()).Msg("Permissions updated")
	return nil
}

// ValidateAreas checks that every entry is a practice area or AllAreas.
func ValidateAreas(areas models.AreaList) error {
	for _, a := range areas {
		if !isPracticeArea(a) {
			return fmt.Errorf("%w: %q", ErrInvalidArea, a)
		}
	}
	return nil
}

func isPracticeArea(area string) bool {
	if area == models.AllAreas {
		return true
	}
	for _, a := range models.PracticeAreas {
		if strings.EqualFold(a, area) {
			return true
		}
	}
	return false
}
