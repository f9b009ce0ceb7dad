// Package factory generates realistic synthetic individuals, encounters and
// sightings for loading test indexes.
package factory

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/gumby/internal/domain/enum"
	"github.com/kailas-cloud/gumby/internal/domain/geo"
	"github.com/kailas-cloud/gumby/internal/domain/individual"
	"github.com/kailas-cloud/gumby/internal/domain/sighting"
)

// Submitters are the user names encounters are attributed to.
var Submitters = []string{
	"julia", "alice", "henry", "josh", "fen",
	"margo", "kady", "penny", "eliot", "quentin",
}

// Aliases are the nicknames given to individuals.
var Aliases = []string{"destiny", "amanda", "brook", "alex", "zoe", "naomi", "rick"}

// Nomenclature maps a genus to its species.
var Nomenclature = map[string][]string{
	"balaenoptera": {
		"acutorostrata",
		"borealis",
		"brydei",
		"edeni",
		"musculus",
		"physalus",
	},
}

const (
	day            = 24 * time.Hour
	twoYears       = 365 * 2
	hundredFortyYr = 365 * 140
)

// Factory produces random documents. It is not safe for concurrent use.
type Factory struct {
	rng *rand.Rand
	now func() time.Time
}

// New returns a Factory seeded with seed; the same seed yields the same
// documents for the same clock.
func New(seed uint64) *Factory {
	return &Factory{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock fixes the reference time random dates are derived from.
func (f *Factory) WithClock(now func() time.Time) *Factory {
	f.now = now
	return f
}

// Taxonomy returns a random "genus species" name.
func (f *Factory) Taxonomy() string {
	genera := make([]string, 0, len(Nomenclature))
	for g := range Nomenclature {
		genera = append(genera, g)
	}
	// map order is random; sort for seed stability
	slices.Sort(genera)
	genus := pick(f.rng, genera)
	return genus + " " + pick(f.rng, Nomenclature[genus])
}

// Sex returns a random sex, or absent.
func (f *Factory) Sex() enum.Sex {
	choices := append(enum.Sexes(), "")
	return pick(f.rng, choices)
}

// Point returns a uniform random point with 6-decimal precision.
func (f *Factory) Point() geo.Point {
	lat := float64(f.rng.IntN(180_000_001)-90_000_000) / 1e6
	lon := float64(f.rng.IntN(360_000_001)-180_000_000) / 1e6
	return geo.Point{Lat: round6(lat), Lon: round6(lon)}
}

// DaysAgo returns now minus a random number of days in [lower, upper].
func (f *Factory) DaysAgo(lower, upper int) time.Time {
	days := lower + f.rng.IntN(upper-lower+1)
	return f.now().Add(-time.Duration(days) * day)
}

// Lifespan returns a birth within 140 years and a death within two years,
// each present with probability 1/3.
func (f *Factory) Lifespan() (birth, death *time.Time) {
	possibleBirth := f.DaysAgo(1, hundredFortyYr)
	possibleDeath := f.DaysAgo(1, twoYears)
	if f.rng.IntN(3) == 0 {
		birth = &possibleBirth
	}
	if f.rng.IntN(3) == 0 {
		death = &possibleDeath
	}
	return birth, death
}

// EncounterOption overrides a generated encounter field.
type EncounterOption func(*individual.Encounter)

// Encounter generates a random encounter.
func (f *Factory) Encounter(opts ...EncounterOption) individual.Encounter {
	e := individual.Encounter{
		ID:            f.newID(),
		Point:         f.Point(),
		Sex:           f.Sex(),
		SubmitterID:   pick(f.rng, Submitters),
		DateOccurred:  f.DaysAgo(1, twoYears),
		Taxonomy:      f.Taxonomy(),
		HasAnnotation: f.rng.IntN(3) != 0,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// IndividualOption overrides a generated individual field before
// LastSighting is derived.
type IndividualOption func(*individual.Individual)

// Individual generates a random individual. Without WithEncounters it has
// no encounters and therefore no LastSighting.
func (f *Factory) Individual(opts ...IndividualOption) *individual.Individual {
	birth, death := f.Lifespan()
	ind := individual.Individual{
		ID:       f.newID(),
		Name:     fmt.Sprintf("TI-%05d", f.rng.IntN(100_000)),
		Alias:    pick(f.rng, Aliases),
		Taxonomy: f.Taxonomy(),
		Sex:      f.Sex(),
		Birth:    birth,
		Death:    death,
	}
	for _, opt := range opts {
		opt(&ind)
	}
	out, err := individual.New(ind)
	if err != nil {
		// generated values are always valid; overrides are the caller's bug
		panic(fmt.Sprintf("factory: invalid individual: %v", err))
	}
	return out
}

// IndividualWithEncounters generates an individual with n random encounters.
func (f *Factory) IndividualWithEncounters(n int, opts ...IndividualOption) *individual.Individual {
	encounters := make([]individual.Encounter, n)
	for i := range encounters {
		encounters[i] = f.Encounter()
	}
	return f.Individual(append([]IndividualOption{WithEncounters(encounters...)}, opts...)...)
}

// Batch generates count individuals with between minEnc and maxEnc
// encounters each.
func (f *Factory) Batch(count, minEnc, maxEnc int) []*individual.Individual {
	out := make([]*individual.Individual, count)
	for i := range out {
		n := minEnc
		if maxEnc > minEnc {
			n += f.rng.IntN(maxEnc - minEnc + 1)
		}
		out[i] = f.IndividualWithEncounters(n)
	}
	return out
}

// SightingOption overrides a generated sighting field.
type SightingOption func(*sighting.Sighting)

// Sighting generates a random standalone sighting.
func (f *Factory) Sighting(opts ...SightingOption) sighting.Sighting {
	viewpoints := append(enum.Viewpoints(), "")
	s := sighting.Sighting{
		ID:            f.newID(),
		Point:         f.Point(),
		Viewpoint:     pick(f.rng, viewpoints),
		Sex:           f.Sex(),
		SubmitterID:   pick(f.rng, Submitters),
		DateOccurred:  f.DaysAgo(1, twoYears),
		Taxonomy:      f.Taxonomy(),
		HasAnnotation: f.rng.IntN(3) != 0,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithEncounters sets the embedded encounters.
func WithEncounters(encounters ...individual.Encounter) IndividualOption {
	return func(ind *individual.Individual) { ind.Encounters = encounters }
}

// WithName sets the individual's name.
func WithName(name string) IndividualOption {
	return func(ind *individual.Individual) { ind.Name = name }
}

// WithSex sets the individual's sex.
func WithSex(sex enum.Sex) IndividualOption {
	return func(ind *individual.Individual) { ind.Sex = sex }
}

// WithTaxonomy sets the encounter's taxonomy.
func WithTaxonomy(taxonomy string) EncounterOption {
	return func(e *individual.Encounter) { e.Taxonomy = taxonomy }
}

// WithAnnotation sets the encounter's annotation flag.
func WithAnnotation(has bool) EncounterOption {
	return func(e *individual.Encounter) { e.HasAnnotation = has }
}

// WithSubmitter sets the encounter's submitter.
func WithSubmitter(id string) EncounterOption {
	return func(e *individual.Encounter) { e.SubmitterID = id }
}

// WithDate sets the encounter's occurrence time.
func WithDate(d time.Time) EncounterOption {
	return func(e *individual.Encounter) { e.DateOccurred = d }
}

// newID draws a version 4 UUID from the seeded generator.
func (f *Factory) newID() uuid.UUID {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[:8], f.rng.Uint64())
	binary.LittleEndian.PutUint64(b[8:], f.rng.Uint64())
	id, err := uuid.NewRandomFromReader(bytes.NewReader(b[:]))
	if err != nil {
		panic(fmt.Sprintf("factory: uuid: %v", err))
	}
	return id
}

func pick[T any](rng *rand.Rand, values []T) T {
	return values[rng.IntN(len(values))]
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
