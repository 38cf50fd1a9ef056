package name_matching

import (
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"

	"github.com/checkmarble/marble-screening/models"
	"github.com/checkmarble/marble-screening/pure_utils"
)

// NormalizedEntityNames holds the normalized form of every name of an entity, canonical
// name first, in the order of models.ScreeningEntity.AllNames. RawNames[i] is the name
// Names[i] was computed from.
type NormalizedEntityNames struct {
	EntityId      string
	CanonicalName string
	RawNames      []string
	Names         []models.NormalizedName
}

// AliasCache memoizes the normalized names of entities, keyed by entity id. Each entry is
// written once and then only read: concurrent first lookups of the same entity share a
// single computation and the first stored value wins.
type AliasCache struct {
	opts    pure_utils.NameNormalizationOptions
	entries sync.Map
	group   singleflight.Group
}

func NewAliasCache(opts pure_utils.NameNormalizationOptions) *AliasCache {
	return &AliasCache{opts: opts}
}

// Get returns the normalized names of the entity, normalizing them on first access.
// An entity id already cached with a different canonical name or different aliases is a
// data integrity error.
func (c *AliasCache) Get(entity models.ScreeningEntity) (NormalizedEntityNames, error) {
	if cached, ok := c.entries.Load(entity.Id); ok {
		return checkSameEntity(cached.(NormalizedEntityNames), entity)
	}

	v, _, _ := c.group.Do(entity.Id, func() (any, error) {
		rawNames := entity.AllNames()
		computed := NormalizedEntityNames{
			EntityId:      entity.Id,
			CanonicalName: entity.Name,
			RawNames:      rawNames,
			Names: pure_utils.Map(rawNames, func(name string) models.NormalizedName {
				return pure_utils.NormalizeName(name, c.opts)
			}),
		}
		actual, _ := c.entries.LoadOrStore(entity.Id, computed)
		return actual, nil
	})

	return checkSameEntity(v.(NormalizedEntityNames), entity)
}

func (c *AliasCache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func checkSameEntity(cached NormalizedEntityNames, entity models.ScreeningEntity) (NormalizedEntityNames, error) {
	if cached.CanonicalName != entity.Name {
		return NormalizedEntityNames{}, errors.Wrapf(models.ErrEntityConflict,
			"entity %s: cached as %q, received as %q", entity.Id, cached.CanonicalName, entity.Name)
	}
	if !slices.Equal(cached.RawNames, entity.AllNames()) {
		return NormalizedEntityNames{}, errors.Wrapf(models.ErrEntityConflict,
			"entity %s: cached with aliases %q, received with %q", entity.Id, cached.RawNames[1:], entity.Aliases)
	}
	return cached, nil
}
