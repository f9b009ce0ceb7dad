package individual

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/gumby/internal/domain"
	"github.com/kailas-cloud/gumby/internal/domain/enum"
	"github.com/kailas-cloud/gumby/internal/domain/geo"
	domind "github.com/kailas-cloud/gumby/internal/domain/individual"
	"github.com/kailas-cloud/gumby/internal/repository/document"
)

// storedIndividual is the JSON layout of an individual, including the
// *_ts and location fields the index reads.
type storedIndividual struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Alias          string            `json:"alias"`
	Taxonomy       string            `json:"taxonomy"`
	LastSighting   *string           `json:"last_sighting"`
	LastSightingTS *int64            `json:"last_sighting_ts,omitempty"`
	Sex            string            `json:"sex,omitempty"`
	Birth          *string           `json:"birth"`
	BirthTS        *int64            `json:"birth_ts,omitempty"`
	Death          *string           `json:"death"`
	DeathTS        *int64            `json:"death_ts,omitempty"`
	Encounters     []storedEncounter `json:"encounters"`
}

type storedEncounter struct {
	ID             string    `json:"id"`
	Point          geo.Point `json:"point"`
	Location       string    `json:"location,omitempty"`
	AnimateStatus  string    `json:"animate_status,omitempty"`
	Sex            string    `json:"sex,omitempty"`
	SubmitterID    string    `json:"submitter_id"`
	DateOccurred   string    `json:"date_occurred"`
	DateOccurredTS int64     `json:"date_occurred_ts,omitempty"`
	Taxonomy       string    `json:"taxonomy"`
	HasAnnotation  bool      `json:"has_annotation"`
}

// Codec converts individuals to and from their stored JSON form.
type Codec struct{}

// ID returns the document id of ind.
func (Codec) ID(ind *domind.Individual) string { return ind.ID.String() }

// Encode renders ind with its index shadow fields.
func (Codec) Encode(ind *domind.Individual) ([]byte, error) {
	s := storedIndividual{
		ID:         ind.ID.String(),
		Name:       ind.Name,
		Alias:      ind.Alias,
		Taxonomy:   ind.Taxonomy,
		Sex:        string(ind.Sex),
		Encounters: make([]storedEncounter, len(ind.Encounters)),
	}
	s.LastSighting, s.LastSightingTS = encodeTime(ind.LastSighting)
	s.Birth, s.BirthTS = encodeTime(ind.Birth)
	s.Death, s.DeathTS = encodeTime(ind.Death)

	for i, e := range ind.Encounters {
		s.Encounters[i] = storedEncounter{
			ID:             e.ID.String(),
			Point:          e.Point,
			Location:       e.Point.Location(),
			AnimateStatus:  string(e.AnimateStatus),
			Sex:            string(e.Sex),
			SubmitterID:    e.SubmitterID,
			DateOccurred:   document.FormatTime(e.DateOccurred),
			DateOccurredTS: document.EpochMillis(e.DateOccurred),
			Taxonomy:       e.Taxonomy,
			HasAnnotation:  e.HasAnnotation,
		}
	}

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal individual: %w", err)
	}
	return data, nil
}

// Decode parses a stored or public individual, validating identities,
// enumerations and timestamps. last_sighting is taken as stored.
func (Codec) Decode(data []byte) (*domind.Individual, error) {
	var s storedIndividual
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	id, err := parseID("id", s.ID)
	if err != nil {
		return nil, err
	}
	sex, err := enum.ParseSex("sex", s.Sex)
	if err != nil {
		return nil, err
	}

	ind := &domind.Individual{
		ID:       id,
		Name:     s.Name,
		Alias:    s.Alias,
		Taxonomy: s.Taxonomy,
		Sex:      sex,
	}
	if len(s.Encounters) > 0 {
		ind.Encounters = make([]domind.Encounter, len(s.Encounters))
	}
	if ind.LastSighting, err = decodeTime("last_sighting", s.LastSighting); err != nil {
		return nil, err
	}
	if ind.Birth, err = decodeTime("birth", s.Birth); err != nil {
		return nil, err
	}
	if ind.Death, err = decodeTime("death", s.Death); err != nil {
		return nil, err
	}

	for i, se := range s.Encounters {
		e, err := decodeEncounter(se)
		if err != nil {
			return nil, err
		}
		ind.Encounters[i] = e
	}

	if err := ind.Validate(); err != nil {
		return nil, err
	}
	return ind, nil
}

func decodeEncounter(s storedEncounter) (domind.Encounter, error) {
	id, err := parseID("encounters.id", s.ID)
	if err != nil {
		return domind.Encounter{}, err
	}
	status, err := enum.ParseLivingStatus("encounters.animate_status", s.AnimateStatus)
	if err != nil {
		return domind.Encounter{}, err
	}
	sex, err := enum.ParseSex("encounters.sex", s.Sex)
	if err != nil {
		return domind.Encounter{}, err
	}
	occurred, err := document.ParseTime(s.DateOccurred)
	if err != nil {
		return domind.Encounter{}, domain.NewValidationError("encounters.date_occurred", s.DateOccurred, "not a valid timestamp")
	}
	return domind.Encounter{
		ID:            id,
		Point:         s.Point,
		AnimateStatus: status,
		Sex:           sex,
		SubmitterID:   s.SubmitterID,
		DateOccurred:  occurred,
		Taxonomy:      s.Taxonomy,
		HasAnnotation: s.HasAnnotation,
	}, nil
}

func parseID(field, v string) (uuid.UUID, error) {
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(field, v, "not a valid UUID")
	}
	return id, nil
}

func encodeTime(t *time.Time) (*string, *int64) {
	if t == nil {
		return nil, nil
	}
	s := document.FormatTime(*t)
	ms := document.EpochMillis(*t)
	return &s, &ms
}

func decodeTime(field string, v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := document.ParseTime(*v)
	if err != nil {
		return nil, domain.NewValidationError(field, *v, "not a valid timestamp")
	}
	return &t, nil
}
