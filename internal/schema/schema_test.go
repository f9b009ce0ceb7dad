package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/gumby/internal/db"
	"github.com/kailas-cloud/gumby/internal/domain"
)

func TestIndividuals_IndexDefinition(t *testing.T) {
	def, err := Individuals.IndexDefinition("gumby:")
	require.NoError(t, err)

	assert.Equal(t, "gumby:individuals:idx", def.Name)
	assert.Equal(t, db.StorageJSON, def.StorageType)
	assert.Equal(t, []string{"gumby:individuals:"}, def.Prefixes)

	byAlias := map[string]db.IndexField{}
	for _, f := range def.Fields {
		byAlias[f.Key()] = f
	}

	assert.Equal(t, "$.last_sighting_ts", byAlias["last_sighting"].Name)
	assert.Equal(t, db.IndexFieldNumeric, byAlias["last_sighting"].Type)
	assert.True(t, byAlias["last_sighting"].Sortable)

	assert.Equal(t, "$.encounters[*].taxonomy", byAlias["encounters_taxonomy"].Name)
	assert.Equal(t, db.IndexFieldTag, byAlias["encounters_taxonomy"].Type)
	assert.True(t, byAlias["encounters_taxonomy"].TagCaseSensitive)
	assert.True(t, byAlias["sex"].TagCaseSensitive)

	assert.Equal(t, "$.encounters[*].location", byAlias["encounters_point"].Name)
	assert.Equal(t, db.IndexFieldGeo, byAlias["encounters_point"].Type)

	assert.Equal(t, "$.encounters[*].has_annotation", byAlias["encounters_has_annotation"].Name)
	assert.Equal(t, db.IndexFieldTag, byAlias["encounters_has_annotation"].Type)
	assert.False(t, byAlias["encounters_has_annotation"].TagCaseSensitive)

	assert.Equal(t, db.IndexFieldText, byAlias["name"].Type)
	_, hasContainer := byAlias["encounters"]
	assert.False(t, hasContainer, "the nested container itself is not indexed")
}

func TestSightings_IndexDefinition(t *testing.T) {
	def, err := Sightings.IndexDefinition("test-")
	require.NoError(t, err)
	assert.Equal(t, "test-sightings:idx", def.Name)
	assert.Len(t, def.Fields, len(Sightings.Fields))
}

func TestModel_Field(t *testing.T) {
	f, ok := Individuals.Field("encounters.has_annotation")
	require.True(t, ok)
	assert.Equal(t, Boolean, f.Type)

	f, ok = Individuals.Field("birth")
	require.True(t, ok)
	assert.Equal(t, "birth_ts", f.Shadow())

	_, ok = Individuals.Field("name.first")
	assert.False(t, ok, "only nested fields have children")
	_, ok = Individuals.Field("encounters.nope")
	assert.False(t, ok)
}

func TestModel_Alias(t *testing.T) {
	assert.Equal(t, "sex", Individuals.Alias("sex"))
	assert.Equal(t, "encounters_date_occurred", Individuals.Alias("encounters.date_occurred"))
}

func TestModel_CheckEnum(t *testing.T) {
	require.NoError(t, Individuals.CheckEnum("sex", "female"))
	require.NoError(t, Individuals.CheckEnum("sex", ""))
	require.NoError(t, Individuals.CheckEnum("alias", "anything"))

	err := Individuals.CheckEnum("encounters.sex", "both")
	require.True(t, errors.Is(err, domain.ErrValidation))
	assert.Equal(t, `invalid encounters.sex "both": must be one of [unknown non-binary female male]`, err.Error())

	err = Sightings.CheckEnum("viewpoint", "sideways")
	require.ErrorIs(t, err, domain.ErrValidation)

	err = Individuals.CheckEnum("colour", "blue")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestLookup(t *testing.T) {
	all, err := Lookup()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	models, err := Lookup("sightings")
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "sightings", models[0].Name)

	_, err = Lookup("whales")
	require.ErrorIs(t, err, domain.ErrUnknownModel)
}

func TestModel_Keys(t *testing.T) {
	assert.Equal(t, "gumby:individuals:abc", Individuals.Key("gumby:", "abc"))
}
