package main

import (
	"encoding/json"
	"io"
)

// outputJSON writes a value as formatted JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// InitResponse is the output of init.
type InitResponse struct {
	Initialized []string `json:"initialized"`
	Warnings    []string `json:"warnings,omitempty"`
}

// LoadResponse is the output of the load commands.
type LoadResponse struct {
	Model       string `json:"model,omitempty"`
	Documents   int    `json:"documents,omitempty"`
	Individuals int    `json:"individuals,omitempty"`
	Encounters  int    `json:"encounters,omitempty"`
	Sightings   int    `json:"sightings,omitempty"`
}

// MigrateResponse is the output of migrate.
type MigrateResponse struct {
	Model    string `json:"model"`
	Script   string `json:"script"`
	Migrated int    `json:"migrated"`
	Failed   int    `json:"failed"`
}

// SearchResponse is the output of search.
type SearchResponse struct {
	Total int              `json:"total"`
	Hits  []map[string]any `json:"hits"`
}

// CountResponse is the output of search --count.
type CountResponse struct {
	Total int `json:"total"`
}

// IndexStatus is one index in the output of status.
type IndexStatus struct {
	Model     string `json:"model"`
	Index     string `json:"index"`
	Exists    bool   `json:"exists"`
	Docs      int    `json:"docs"`
	Indexing  bool   `json:"indexing,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// StatusResponse is the output of status.
type StatusResponse struct {
	Health  string            `json:"health"`
	Checks  map[string]string `json:"checks"`
	Indexes []IndexStatus     `json:"indexes"`
}
