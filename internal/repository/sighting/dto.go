package sighting

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/kailas-cloud/gumby/internal/domain"
	"github.com/kailas-cloud/gumby/internal/domain/enum"
	"github.com/kailas-cloud/gumby/internal/domain/geo"
	domsighting "github.com/kailas-cloud/gumby/internal/domain/sighting"
	"github.com/kailas-cloud/gumby/internal/repository/document"
)

type storedSighting struct {
	ID             string    `json:"id"`
	IndividualID   *string   `json:"individual_id"`
	Point          geo.Point `json:"point"`
	Location       string    `json:"location,omitempty"`
	Viewpoint      string    `json:"viewpoint,omitempty"`
	AnimateStatus  string    `json:"animate_status,omitempty"`
	Sex            string    `json:"sex,omitempty"`
	SubmitterID    string    `json:"submitter_id"`
	DateOccurred   string    `json:"date_occurred"`
	DateOccurredTS int64     `json:"date_occurred_ts,omitempty"`
	Taxonomy       string    `json:"taxonomy"`
	HasAnnotation  bool      `json:"has_annotation"`
}

// Codec converts sightings to and from their stored JSON form.
type Codec struct{}

// ID returns the document id of s.
func (Codec) ID(s domsighting.Sighting) string { return s.ID.String() }

// Encode renders s with its index shadow fields.
func (Codec) Encode(s domsighting.Sighting) ([]byte, error) {
	out := storedSighting{
		ID:             s.ID.String(),
		Point:          s.Point,
		Location:       s.Point.Location(),
		Viewpoint:      string(s.Viewpoint),
		AnimateStatus:  string(s.AnimateStatus),
		Sex:            string(s.Sex),
		SubmitterID:    s.SubmitterID,
		DateOccurred:   document.FormatTime(s.DateOccurred),
		DateOccurredTS: document.EpochMillis(s.DateOccurred),
		Taxonomy:       s.Taxonomy,
		HasAnnotation:  s.HasAnnotation,
	}
	if s.IndividualID != uuid.Nil {
		id := s.IndividualID.String()
		out.IndividualID = &id
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal sighting: %w", err)
	}
	return data, nil
}

// Decode parses a stored or public sighting and validates it.
func (Codec) Decode(data []byte) (domsighting.Sighting, error) {
	var in storedSighting
	if err := json.Unmarshal(data, &in); err != nil {
		return domsighting.Sighting{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	id, err := uuid.Parse(in.ID)
	if err != nil {
		return domsighting.Sighting{}, domain.NewValidationError("id", in.ID, "not a valid UUID")
	}
	individualID := uuid.Nil
	if in.IndividualID != nil && *in.IndividualID != "" {
		if individualID, err = uuid.Parse(*in.IndividualID); err != nil {
			return domsighting.Sighting{}, domain.NewValidationError("individual_id", *in.IndividualID, "not a valid UUID")
		}
	}
	occurred, err := document.ParseTime(in.DateOccurred)
	if err != nil {
		return domsighting.Sighting{}, domain.NewValidationError("date_occurred", in.DateOccurred, "not a valid timestamp")
	}

	s := domsighting.Sighting{
		ID:            id,
		IndividualID:  individualID,
		Point:         in.Point,
		Viewpoint:     enum.Viewpoint(in.Viewpoint),
		AnimateStatus: enum.LivingStatus(in.AnimateStatus),
		Sex:           enum.Sex(in.Sex),
		SubmitterID:   in.SubmitterID,
		DateOccurred:  occurred,
		Taxonomy:      in.Taxonomy,
		HasAnnotation: in.HasAnnotation,
	}
	if err := s.Validate(); err != nil {
		return domsighting.Sighting{}, err
	}
	return s, nil
}
