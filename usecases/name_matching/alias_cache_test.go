package name_matching

import (
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkmarble/marble-screening/models"
	"github.com/checkmarble/marble-screening/pure_utils"
)

func TestAliasCacheGet(t *testing.T) {
	cache := NewAliasCache(pure_utils.NameNormalizationOptions{MinTokenLength: 2})
	entity := models.ScreeningEntity{
		Id:      "sdn-1",
		Name:    "Vladimir Vladimirovich PUTIN",
		Aliases: []string{"Владимир Путин", "V. Putin"},
	}

	names, err := cache.Get(entity)
	require.NoError(t, err)
	assert.Equal(t, "sdn-1", names.EntityId)
	require.Len(t, names.Names, 3)
	assert.Equal(t, []string{"vladimir", "vladimirovich", "putin"}, names.Names[0].Tokens)
	assert.Equal(t, []string{"vladimir", "putin"}, names.Names[1].Tokens)
	assert.Equal(t, []string{"putin"}, names.Names[2].Tokens)

	again, err := cache.Get(entity)
	require.NoError(t, err)
	assert.Equal(t, names, again)
	assert.Equal(t, 1, cache.Len())
}

func TestAliasCacheConflict(t *testing.T) {
	cache := NewAliasCache(pure_utils.NameNormalizationOptions{})

	_, err := cache.Get(models.ScreeningEntity{Id: "1", Name: "John Smith"})
	require.NoError(t, err)

	_, err = cache.Get(models.ScreeningEntity{Id: "1", Name: "Jane Doe"})
	assert.True(t, errors.Is(err, models.ErrEntityConflict))

	_, err = cache.Get(models.ScreeningEntity{Id: "1", Name: "John Smith", Aliases: []string{"Johnny"}})
	assert.True(t, errors.Is(err, models.DataIntegrityError))
}

func TestAliasCacheAliasChanged(t *testing.T) {
	cache := NewAliasCache(pure_utils.NameNormalizationOptions{MinTokenLength: 2})

	names, err := cache.Get(models.ScreeningEntity{Id: "42", Name: "Ocean Trade LLC", Aliases: []string{"Blue Falcon Shipping"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ocean Trade LLC", "Blue Falcon Shipping"}, names.RawNames)

	tests := []struct {
		name    string
		aliases []string
	}{
		{"same count, different text", []string{"Red Horizon Holdings"}},
		{"alias added", []string{"Blue Falcon Shipping", "Ocean Trade"}},
		{"aliases removed", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cache.Get(models.ScreeningEntity{Id: "42", Name: "Ocean Trade LLC", Aliases: tt.aliases})
			assert.True(t, errors.Is(err, models.ErrEntityConflict))
			assert.True(t, errors.Is(err, models.DataIntegrityError))
		})
	}

	again, err := cache.Get(models.ScreeningEntity{Id: "42", Name: "Ocean Trade LLC", Aliases: []string{"Blue Falcon Shipping"}})
	require.NoError(t, err)
	assert.Equal(t, names, again)
}

func TestAliasCacheConcurrentGet(t *testing.T) {
	cache := NewAliasCache(pure_utils.NameNormalizationOptions{MinTokenLength: 2})
	entities := []models.ScreeningEntity{
		{Id: "1", Name: "John Smith", Aliases: []string{"J. Smith"}},
		{Id: "2", Name: "Banco Nacional de Cuba", Aliases: []string{"BNC"}},
		{Id: "3", Name: "KIM Jong Un"},
	}

	var wg sync.WaitGroup
	results := make([][]NormalizedEntityNames, 50)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, e := range entities {
				names, err := cache.Get(e)
				assert.NoError(t, err)
				results[i] = append(results[i], names)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, len(entities), cache.Len())
	for _, r := range results[1:] {
		assert.Equal(t, results[0], r)
	}
}
