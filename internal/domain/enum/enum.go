// Package enum holds the closed string enumerations of the catalog.
// The empty string stands for an absent optional value in every enumeration.
package enum

import "github.com/kailas-cloud/gumby/internal/domain"

// Sex of an individual or of the animal seen in an encounter.
type Sex string

// Sex values.
const (
	SexUnknown   Sex = "unknown"
	SexNonBinary Sex = "non-binary"
	SexFemale    Sex = "female"
	SexMale      Sex = "male"
)

// Sexes returns every Sex value in declaration order.
func Sexes() []Sex {
	return []Sex{SexUnknown, SexNonBinary, SexFemale, SexMale}
}

// ParseSex validates v against the Sex enumeration; field names the
// document path for the error message.
func ParseSex(field, v string) (Sex, error) {
	return parse(field, v, Sexes())
}

// LivingStatus of the animal at the time of an encounter.
type LivingStatus string

// LivingStatus values.
const (
	LivingStatusAlive LivingStatus = "alive"
	LivingStatusDead  LivingStatus = "dead"
)

// LivingStatuses returns every LivingStatus value in declaration order.
func LivingStatuses() []LivingStatus {
	return []LivingStatus{LivingStatusAlive, LivingStatusDead}
}

// ParseLivingStatus validates v against the LivingStatus enumeration.
func ParseLivingStatus(field, v string) (LivingStatus, error) {
	return parse(field, v, LivingStatuses())
}

// Viewpoint of the camera relative to the animal.
type Viewpoint string

// Viewpoint values.
const (
	ViewpointUp         Viewpoint = "up"
	ViewpointDown       Viewpoint = "down"
	ViewpointFront      Viewpoint = "front"
	ViewpointBack       Viewpoint = "back"
	ViewpointLeft       Viewpoint = "left"
	ViewpointRight      Viewpoint = "right"
	ViewpointFrontLeft  Viewpoint = "frontleft"
	ViewpointFrontRight Viewpoint = "frontright"
	ViewpointBackLeft   Viewpoint = "backleft"
	ViewpointBackRight  Viewpoint = "backright"
)

// Viewpoints returns every Viewpoint value in declaration order.
func Viewpoints() []Viewpoint {
	return []Viewpoint{
		ViewpointUp, ViewpointDown, ViewpointFront, ViewpointBack,
		ViewpointLeft, ViewpointRight,
		ViewpointFrontLeft, ViewpointFrontRight, ViewpointBackLeft, ViewpointBackRight,
	}
}

// ParseViewpoint validates v against the Viewpoint enumeration.
func ParseViewpoint(field, v string) (Viewpoint, error) {
	return parse(field, v, Viewpoints())
}

// Strings renders enumeration values as plain strings.
func Strings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func parse[T ~string](field, v string, all []T) (T, error) {
	if v == "" {
		return "", nil
	}
	for _, candidate := range all {
		if string(candidate) == v {
			return candidate, nil
		}
	}
	return "", domain.NewEnumError(field, v, Strings(all))
}
