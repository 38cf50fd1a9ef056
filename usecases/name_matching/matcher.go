package name_matching

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/checkmarble/marble-screening/models"
	"github.com/checkmarble/marble-screening/pure_utils"
	"github.com/checkmarble/marble-screening/utils"
)

// Matcher scores a query name against sanctioned entities and ranks the entities that
// reach the configured floor. It holds no state besides the alias cache, and is safe for
// concurrent use.
type Matcher struct {
	config        models.NameMatchingConfig
	normalization pure_utils.NameNormalizationOptions
	aliases       *AliasCache
}

func NewMatcher(config models.ScreeningConfig) (*Matcher, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration for the name matcher")
	}
	normalization := pure_utils.NameNormalizationOptionsFrom(config.Matching)
	return &Matcher{
		config:        config.Matching,
		normalization: normalization,
		aliases:       NewAliasCache(normalization),
	}, nil
}

func (m *Matcher) NormalizeName(raw string) models.NormalizedName {
	return pure_utils.NormalizeName(raw, m.normalization)
}

// Match returns the candidates scoring at or above the floor, with their explanation,
// ordered by decreasing score then canonical name. An empty query scores 0 against every
// candidate. A malformed candidate fails the whole call with a models.DataIntegrityError.
func (m *Matcher) Match(
	ctx context.Context,
	queryName string,
	candidates []models.ScreeningEntity,
	countryFilter string,
) ([]models.ScreeningNameMatch, error) {
	logger := utils.LoggerFromContext(ctx)
	start := time.Now()

	query := m.NormalizeName(queryName)

	if err := validateCandidates(candidates); err != nil {
		return nil, err
	}

	eligible := make([]models.ScreeningEntity, 0, len(candidates))
	for _, c := range candidates {
		if pure_utils.MatchesCountryFilter(countryFilter, c) {
			eligible = append(eligible, c)
		}
	}

	scored := make([]*models.ScreeningNameMatch, len(eligible))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(m.config.MaxConcurrency)

	for i, entity := range eligible {
		group.Go(func() error {
			select {
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), fmt.Sprintf(
					"context cancelled before scoring entity %s", entity.Id))
			default:
			}

			names, err := m.aliases.Get(entity)
			if err != nil {
				return err
			}
			match, ok := m.scoreEntity(query, entity, names)
			if ok {
				scored[i] = &match
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	matches := make([]models.ScreeningNameMatch, 0, len(scored))
	for _, match := range scored {
		if match != nil {
			matches = append(matches, *match)
		}
	}
	models.SortMatches(matches)
	if m.config.MaxResults > 0 && len(matches) > m.config.MaxResults {
		matches = matches[:m.config.MaxResults]
	}

	logger.DebugContext(ctx, fmt.Sprintf("matched name against %d entities in %dms",
		len(candidates), time.Since(start).Milliseconds()),
		"candidates", len(candidates),
		"eligible", len(eligible),
		"matches", len(matches),
		"empty_query", query.IsEmpty(),
	)

	return matches, nil
}

type nameScore struct {
	nameIdx    int
	measure    models.SimilarityMeasure
	similarity pure_utils.Similarity
}

// The best score over (name x measure) wins. Ties keep the first one found: canonical
// name before aliases, token set before partial.
func bestNameScore(query models.NormalizedName, names []models.NormalizedName) nameScore {
	best := nameScore{similarity: pure_utils.Similarity{Score: -1}}
	for idx, name := range names {
		tokenSet := pure_utils.TokenSetRatio(query.Tokens, name.Tokens)
		if tokenSet.Score > best.similarity.Score {
			best = nameScore{nameIdx: idx, measure: models.SimilarityMeasureTokenSet, similarity: tokenSet}
		}
		partial := pure_utils.PartialRatio(query.String(), name.String())
		if partial.Score > best.similarity.Score {
			best = nameScore{nameIdx: idx, measure: models.SimilarityMeasurePartial, similarity: partial}
		}
	}
	return best
}

func (m *Matcher) scoreEntity(
	query models.NormalizedName,
	entity models.ScreeningEntity,
	names NormalizedEntityNames,
) (models.ScreeningNameMatch, bool) {
	best := bestNameScore(query, names.Names)
	if best.similarity.Score < m.config.Floor {
		return models.ScreeningNameMatch{}, false
	}

	matchedName := entity.AllNames()[best.nameIdx]
	return models.ScreeningNameMatch{
		Candidate: models.MatchCandidate{
			Entity:             entity,
			MatchedName:        matchedName,
			MatchedNameIsAlias: best.nameIdx > 0,
			Score:              best.similarity.Score,
			Measure:            best.measure,
			Band:               m.config.Band(best.similarity.Score),
		},
		Explanation: Explain(query, names.Names[best.nameIdx], matchedName, best.measure, best.similarity.Detail),
	}, true
}

func validateCandidates(candidates []models.ScreeningEntity) error {
	names := make(map[string]string, len(candidates))
	for i, c := range candidates {
		if strings.TrimSpace(c.Id) == "" {
			return errors.Wrapf(models.ErrEntityMissingId, "candidate at index %d (%q)", i, c.Name)
		}
		if strings.TrimSpace(c.Name) == "" {
			return errors.Wrapf(models.ErrEntityMissingName, "candidate at index %d (id %s)", i, c.Id)
		}
		if seen, ok := names[c.Id]; ok && seen != c.Name {
			return errors.Wrapf(models.ErrEntityConflict,
				"candidate at index %d (id %s): %q and %q", i, c.Id, seen, c.Name)
		}
		names[c.Id] = c.Name
	}
	return nil
}
