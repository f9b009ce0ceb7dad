// Package individual stores Individual documents in the individuals index.
package individual

import (
	domind "github.com/kailas-cloud/gumby/internal/domain/individual"
	"github.com/kailas-cloud/gumby/internal/repository/document"
	"github.com/kailas-cloud/gumby/internal/schema"
)

// Repo is the individuals repository.
type Repo = document.Repo[*domind.Individual]

// New creates an individuals repository under the key prefix.
func New(s document.Store, prefix string) *Repo {
	return document.New[*domind.Individual](s, schema.Individuals, prefix, Codec{})
}
