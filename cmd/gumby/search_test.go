package main

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/gumby/internal/domain"
	"github.com/kailas-cloud/gumby/internal/domain/enum"
	"github.com/kailas-cloud/gumby/internal/domain/geo"
	domind "github.com/kailas-cloud/gumby/internal/domain/individual"
)

func resetSearchFlags(t *testing.T) {
	t.Helper()
	searchSex, searchTaxonomy, searchSubmitter = "", "", ""
	searchSince, searchNear, searchSort = "", "", ""
	searchAnnotated = false
	searchRadius = DefaultRadiusMeters
	searchLimit, searchOffset = 20, 0
	searchCmd.Flags().Lookup("annotated").Changed = false
}

func TestSearchCriteria(t *testing.T) {
	resetSearchFlags(t)
	t.Cleanup(func() { resetSearchFlags(t) })

	if err := searchCmd.Flags().Set("annotated", "true"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	searchTaxonomy = "balaenoptera musculus"
	searchSince = "2024-01-01"
	searchNear = "-33.9,18.4"

	c, err := searchCriteria(searchCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Annotated == nil || !*c.Annotated {
		t.Fatal("expected annotated=true")
	}
	if c.Since == nil || !c.Since.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected since: %v", c.Since)
	}
	if c.Near == nil || c.Near.Center.Lat != -33.9 || c.Near.Meters != DefaultRadiusMeters {
		t.Fatalf("unexpected near: %+v", c.Near)
	}
}

func TestSearchCriteria_AnnotatedUnset(t *testing.T) {
	resetSearchFlags(t)

	c, err := searchCriteria(searchCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Annotated != nil {
		t.Fatal("annotated should be absent when the flag is not given")
	}
}

func TestSearchCriteria_BadInput(t *testing.T) {
	resetSearchFlags(t)
	t.Cleanup(func() { resetSearchFlags(t) })

	searchSince = "last tuesday"
	if _, err := searchCriteria(searchCmd); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for since, got %v", err)
	}

	searchSince = ""
	searchNear = "north"
	if _, err := searchCriteria(searchCmd); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for near, got %v", err)
	}
}

func TestPublicIndividual_DropsShadowFields(t *testing.T) {
	ind := &domind.Individual{
		ID:  uuid.New(),
		Sex: enum.SexFemale,
		Encounters: []domind.Encounter{{
			ID:           uuid.New(),
			Point:        geo.Point{Lat: 1, Lon: 2},
			DateOccurred: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
		}},
	}
	doc, err := publicIndividual(ind)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc["id"] != ind.ID.String() {
		t.Fatalf("unexpected id %v", doc["id"])
	}
	enc := doc["encounters"].([]any)[0].(map[string]any)
	if _, ok := enc["location"]; ok {
		t.Fatal("geo shadow should be stripped")
	}
	if _, ok := enc["date_occurred_ts"]; ok {
		t.Fatal("date shadow should be stripped")
	}
	if enc["date_occurred"] != "2023-05-01T00:00:00Z" {
		t.Fatalf("unexpected date %v", enc["date_occurred"])
	}
}
