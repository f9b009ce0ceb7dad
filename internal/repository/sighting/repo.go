// Package sighting stores standalone Sighting documents.
package sighting

import (
	domsighting "github.com/kailas-cloud/gumby/internal/domain/sighting"
	"github.com/kailas-cloud/gumby/internal/repository/document"
	"github.com/kailas-cloud/gumby/internal/schema"
)

// Repo is the sightings repository.
type Repo = document.Repo[domsighting.Sighting]

// New creates a sightings repository under the key prefix.
func New(s document.Store, prefix string) *Repo {
	return document.New[domsighting.Sighting](s, schema.Sightings, prefix, Codec{})
}
