package individual

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/gumby/internal/domain"
	domind "github.com/kailas-cloud/gumby/internal/domain/individual"
	"github.com/kailas-cloud/gumby/internal/factory"
)

var fixedNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func TestCodec_RoundTrip(t *testing.T) {
	f := factory.New(7).WithClock(func() time.Time { return fixedNow })
	var c Codec

	for _, ind := range f.Batch(10, 0, 5) {
		data, err := c.Encode(ind)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		got, err := c.Decode(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !reflect.DeepEqual(ind, got) {
			t.Errorf("round trip mismatch:\nwant %+v\n got %+v", ind, got)
		}
	}
}

func TestCodec_RoundTripWithoutEncounters(t *testing.T) {
	ind, err := domind.New(domind.Individual{ID: uuid.New(), Name: "TI-00001"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	var c Codec

	data, err := c.Encode(ind)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(data), `"encounters":[]`) {
		t.Errorf("encounters should be stored as an empty array: %s", data)
	}
	got, err := c.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(ind, got) {
		t.Errorf("round trip mismatch:\nwant %+v\n got %+v", ind, got)
	}
}

func TestCodec_EncodeWritesShadowFields(t *testing.T) {
	f := factory.New(1).WithClock(func() time.Time { return fixedNow })
	ind := f.IndividualWithEncounters(1)

	data, err := Codec{}.Encode(ind)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["last_sighting_ts"] == nil {
		t.Error("expected last_sighting_ts")
	}
	enc := m["encounters"].([]any)[0].(map[string]any)
	if enc["location"] != ind.Encounters[0].Point.Location() {
		t.Errorf("unexpected location: %v", enc["location"])
	}
	if enc["date_occurred_ts"] != float64(ind.Encounters[0].DateOccurred.UnixMilli()) {
		t.Errorf("unexpected date_occurred_ts: %v", enc["date_occurred_ts"])
	}
}

func TestCodec_DecodeRejectsEnumViolation(t *testing.T) {
	doc := `{"id":"6f1c3f5e-8e7a-4f6b-9a55-0c8f3c2e9d11","name":"TI-00001","encounters":[
		{"id":"0d7f1f0e-3c1b-4c52-8d9e-5e0f9a7b6c44","point":{"lat":1,"lon":2},
		 "sex":"hermaphrodite","date_occurred":"2024-01-01T00:00:00Z"}]}`

	_, err := Codec{}.Decode([]byte(doc))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	want := `invalid encounters.sex "hermaphrodite": must be one of [unknown non-binary female male]`
	if err.Error() != want {
		t.Errorf("unexpected message: %s", err)
	}
}

func TestCodec_DecodeRejectsBadUUID(t *testing.T) {
	_, err := Codec{}.Decode([]byte(`{"id":"x","encounters":[]}`))
	if err == nil || err.Error() != `invalid id "x": not a valid UUID` {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCodec_DecodeAcceptsLegacyForms(t *testing.T) {
	// point as "lat,lon" and timestamps without a zone
	doc := `{"id":"6f1c3f5e-8e7a-4f6b-9a55-0c8f3c2e9d11","name":"TI-00001","alias":null,
		"last_sighting":"2023-05-17T08:30:00.123456","birth":null,"death":null,"encounters":[
		{"id":"0d7f1f0e-3c1b-4c52-8d9e-5e0f9a7b6c44","point":"-12.5,45.25","animate_status":"alive",
		 "date_occurred":"2023-05-17T08:30:00.123456","taxonomy":"balaenoptera musculus","has_annotation":true}]}`

	ind, err := Codec{}.Decode([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ind.Encounters[0].Point.Lat != -12.5 || ind.Encounters[0].Point.Lon != 45.25 {
		t.Errorf("unexpected point: %+v", ind.Encounters[0].Point)
	}
	want := time.Date(2023, 5, 17, 8, 30, 0, 123456000, time.UTC)
	if ind.LastSighting == nil || !ind.LastSighting.Equal(want) {
		t.Errorf("unexpected last_sighting: %v", ind.LastSighting)
	}
	if ind.Birth != nil || ind.Alias != "" {
		t.Errorf("expected absent birth and alias: %+v", ind)
	}
}

func TestCodec_DecodeKeepsStoredLastSighting(t *testing.T) {
	doc := `{"id":"6f1c3f5e-8e7a-4f6b-9a55-0c8f3c2e9d11","last_sighting":"2020-01-01T00:00:00Z","encounters":[
		{"id":"0d7f1f0e-3c1b-4c52-8d9e-5e0f9a7b6c44","point":{"lat":0,"lon":0},"date_occurred":"2024-01-01T00:00:00Z"}]}`

	ind, err := Codec{}.Decode([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ind.LastSighting.Year(); got != 2020 {
		t.Errorf("last_sighting must not be recomputed, got year %d", got)
	}
}

func TestCodec_DecodeMalformedJSON(t *testing.T) {
	_, err := Codec{}.Decode([]byte(`{"id":`))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("unexpected message: %s", err)
	}
}
