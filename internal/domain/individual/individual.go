// Package individual holds the Individual aggregate and its embedded Encounters.
package individual

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/gumby/internal/domain"
	"github.com/kailas-cloud/gumby/internal/domain/enum"
	"github.com/kailas-cloud/gumby/internal/domain/geo"
)

// Encounter is a single observation event. It is embedded in its owning
// Individual and is not addressable on its own.
type Encounter struct {
	ID            uuid.UUID
	Point         geo.Point
	AnimateStatus enum.LivingStatus
	Sex           enum.Sex
	SubmitterID   string
	DateOccurred  time.Time
	Taxonomy      string
	HasAnnotation bool
}

// Individual is a distinct cataloged animal.
type Individual struct {
	ID       uuid.UUID
	Name     string
	Alias    string
	Taxonomy string
	// LastSighting is nil when the individual has no encounters.
	LastSighting *time.Time
	Sex          enum.Sex
	Birth        *time.Time
	Death        *time.Time
	Encounters   []Encounter
}

// New builds an Individual and derives LastSighting from the most recent
// encounter. This is the only place LastSighting is computed; later edits
// to Encounters leave it untouched.
func New(ind Individual) (*Individual, error) {
	if len(ind.Encounters) == 0 {
		ind.Encounters = nil
	}
	ind.LastSighting = LatestSighting(ind.Encounters)
	if err := ind.Validate(); err != nil {
		return nil, err
	}
	return &ind, nil
}

// LatestSighting returns the newest DateOccurred, or nil for no encounters.
func LatestSighting(encounters []Encounter) *time.Time {
	var latest *time.Time
	for i := range encounters {
		d := encounters[i].DateOccurred
		if latest == nil || d.After(*latest) {
			latest = &d
		}
	}
	return latest
}

// Validate checks identities and enumerations.
func (ind *Individual) Validate() error {
	if ind.ID == uuid.Nil {
		return domain.NewValidationError("id", "", "not a valid UUID")
	}
	if _, err := enum.ParseSex("sex", string(ind.Sex)); err != nil {
		return err
	}
	for i := range ind.Encounters {
		if err := ind.Encounters[i].validate(fmt.Sprintf("encounters[%d].", i)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encounter) validate(prefix string) error {
	if e.ID == uuid.Nil {
		return domain.NewValidationError(prefix+"id", "", "not a valid UUID")
	}
	if _, err := enum.ParseSex(prefix+"sex", string(e.Sex)); err != nil {
		return err
	}
	if _, err := enum.ParseLivingStatus(prefix+"animate_status", string(e.AnimateStatus)); err != nil {
		return err
	}
	if !geo.ValidateCoordinates(e.Point.Lat, e.Point.Lon) {
		return domain.NewValidationError(prefix+"point", e.Point.String(), "coordinates out of range")
	}
	return nil
}
