// Package sighting holds the standalone Sighting document. Its fields
// overlap an embedded Encounter but nothing keeps the two consistent.
package sighting

import (
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/gumby/internal/domain"
	"github.com/kailas-cloud/gumby/internal/domain/enum"
	"github.com/kailas-cloud/gumby/internal/domain/geo"
)

// Sighting is an observation indexed on its own.
type Sighting struct {
	ID uuid.UUID
	// IndividualID is uuid.Nil when the animal has not been identified.
	IndividualID  uuid.UUID
	Point         geo.Point
	Viewpoint     enum.Viewpoint
	AnimateStatus enum.LivingStatus
	Sex           enum.Sex
	SubmitterID   string
	DateOccurred  time.Time
	Taxonomy      string
	HasAnnotation bool
}

// Validate checks the identity and enumerations.
func (s *Sighting) Validate() error {
	if s.ID == uuid.Nil {
		return domain.NewValidationError("id", "", "not a valid UUID")
	}
	if _, err := enum.ParseViewpoint("viewpoint", string(s.Viewpoint)); err != nil {
		return err
	}
	if _, err := enum.ParseLivingStatus("animate_status", string(s.AnimateStatus)); err != nil {
		return err
	}
	if _, err := enum.ParseSex("sex", string(s.Sex)); err != nil {
		return err
	}
	if !geo.ValidateCoordinates(s.Point.Lat, s.Point.Lon) {
		return domain.NewValidationError("point", s.Point.String(), "coordinates out of range")
	}
	return nil
}
