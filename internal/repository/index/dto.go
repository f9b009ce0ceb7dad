package index

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/gumby/internal/db"
	"github.com/kailas-cloud/gumby/internal/schema"
)

// fieldRow is the JSON-serializable representation of a field for HSET.
type fieldRow struct {
	Path  string `json:"path"`
	Alias string `json:"alias"`
	Type  string `json:"type"`
}

// metaToHash converts a model's index metadata to a map for HSET.
func metaToHash(m schema.Model, def *db.IndexDefinition, createdAt time.Time) (map[string]string, error) {
	rows := make([]fieldRow, len(def.Fields))
	for i, f := range def.Fields {
		rows[i] = fieldRow{Path: f.Name, Alias: f.Alias, Type: f.Type.String()}
	}
	fieldsJSON, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}
	return map[string]string{
		"model":      m.Name,
		"index":      def.Name,
		"fields":     string(fieldsJSON),
		"created_at": strconv.FormatInt(createdAt.UnixMilli(), 10),
	}, nil
}

func createdAtFromHash(h map[string]string) (time.Time, error) {
	ms, err := strconv.ParseInt(h["created_at"], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid created_at: %w", err)
	}
	return time.UnixMilli(ms).UTC(), nil
}
