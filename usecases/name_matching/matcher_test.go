package name_matching

import (
	"context"
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkmarble/marble-screening/models"
)

func newTestMatcher(t *testing.T, mutate func(c *models.ScreeningConfig)) *Matcher {
	t.Helper()
	config := models.DefaultScreeningConfig()
	if mutate != nil {
		mutate(&config)
	}
	matcher, err := NewMatcher(config)
	require.NoError(t, err)
	return matcher
}

func smithEntities() []models.ScreeningEntity {
	return []models.ScreeningEntity{
		{Id: "4", Name: "Aaron Smith", Country: "GB"},
		{Id: "2", Name: "John Smith", Country: "US"},
		{Id: "3", Name: "Johnny Smith", Country: "US"},
		{Id: "1", Name: "John Smith", Country: "GB"},
		{Id: "5", Name: "Maria Garcia", Country: "ES"},
	}
}

func assertOrdered(t *testing.T, matches []models.ScreeningNameMatch) {
	t.Helper()
	for i := 1; i < len(matches); i++ {
		prev, cur := matches[i-1].Candidate, matches[i].Candidate
		require.GreaterOrEqual(t, prev.Score, cur.Score)
		if prev.Score == cur.Score {
			require.LessOrEqual(t, prev.Entity.Name, cur.Entity.Name)
			if prev.Entity.Name == cur.Entity.Name {
				require.Less(t, prev.Entity.Id, cur.Entity.Id)
			}
		}
	}
}

func matchIds(matches []models.ScreeningNameMatch) []string {
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.Candidate.Entity.Id)
	}
	return ids
}

func TestMatchPutin(t *testing.T) {
	matcher := newTestMatcher(t, nil)

	matches, err := matcher.Match(context.Background(), "Putin Vladimir", []models.ScreeningEntity{
		{
			Id:      "sdn-1",
			Name:    "Vladimir Vladimirovich PUTIN",
			Aliases: []string{"Владимир Путин"},
			Country: "RU",
		},
	}, "")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	match := matches[0]
	assert.GreaterOrEqual(t, match.Candidate.Score, 80)
	assert.Equal(t, models.ConfidenceBandHigh, match.Candidate.Band)
	assert.Equal(t, "Vladimir Vladimirovich PUTIN", match.Candidate.MatchedName)
	assert.False(t, match.Candidate.MatchedNameIsAlias)
	assert.Subset(t, match.Explanation.MatchedTokens, []string{"putin", "vladimir"})
	assert.Empty(t, match.Explanation.QueryOnlyTokens)
	assert.Equal(t, []string{"vladimirovich"}, match.Explanation.EntityOnlyTokens)
	assert.Equal(t, models.SimilarityMeasureTokenSet, match.Explanation.Measure)
}

func TestMatchTransliteratedQuery(t *testing.T) {
	matcher := newTestMatcher(t, nil)

	matches, err := matcher.Match(context.Background(), "Владимир Путин", []models.ScreeningEntity{
		{Id: "sdn-1", Name: "Vladimir Vladimirovich PUTIN"},
	}, "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 100, matches[0].Candidate.Score)
	assert.Contains(t, matches[0].Explanation.QueryNotes, models.NormalizationNoteTransliterated)
}

func TestMatchOnAlias(t *testing.T) {
	matcher := newTestMatcher(t, nil)

	matches, err := matcher.Match(context.Background(), "BNC", []models.ScreeningEntity{
		{Id: "sdn-2", Name: "Banco Nacional de Cuba", Aliases: []string{"BNC"}, Country: "CU"},
	}, "")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	assert.Equal(t, 100, matches[0].Candidate.Score)
	assert.Equal(t, "BNC", matches[0].Candidate.MatchedName)
	assert.True(t, matches[0].Candidate.MatchedNameIsAlias)
	assert.Equal(t, "BNC", matches[0].Explanation.MatchedName)
	assert.Equal(t, []string{"bnc"}, matches[0].Explanation.MatchedTokens)
}

func TestMatchOrdering(t *testing.T) {
	matcher := newTestMatcher(t, nil)

	matches, err := matcher.Match(context.Background(), "John Smith", smithEntities(), "")
	require.NoError(t, err)

	assertOrdered(t, matches)
	assert.Equal(t, []string{"1", "2", "3", "4"}, matchIds(matches))
	assert.Equal(t, 100, matches[0].Candidate.Score)
	for _, m := range matches {
		assert.GreaterOrEqual(t, m.Candidate.Score, 70)
	}
}

func TestMatchFloor(t *testing.T) {
	matcher := newTestMatcher(t, func(c *models.ScreeningConfig) { c.Matching.Floor = 95 })

	matches, err := matcher.Match(context.Background(), "John Smith", smithEntities(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, matchIds(matches))
}

func TestMatchMaxResults(t *testing.T) {
	matcher := newTestMatcher(t, func(c *models.ScreeningConfig) { c.Matching.MaxResults = 3 })

	matches, err := matcher.Match(context.Background(), "John Smith", smithEntities(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, matchIds(matches))
}

func TestMatchCountryFilter(t *testing.T) {
	matcher := newTestMatcher(t, nil)

	tests := []struct {
		filter string
		ids    []string
	}{
		{"", []string{"1", "2", "3", "4"}},
		{"ANY", []string{"1", "2", "3", "4"}},
		{"US", []string{"2", "3"}},
		{"United Kingdom", []string{"1", "4"}},
		{"FR", []string{}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("filter %q", tt.filter), func(t *testing.T) {
			matches, err := matcher.Match(context.Background(), "John Smith", smithEntities(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.ids, matchIds(matches))
		})
	}
}

func TestMatchEntityWithoutCountryIsNeverFiltered(t *testing.T) {
	matcher := newTestMatcher(t, nil)

	matches, err := matcher.Match(context.Background(), "John Smith", []models.ScreeningEntity{
		{Id: "1", Name: "John Smith"},
	}, "FR")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestMatchEmptyQuery(t *testing.T) {
	matcher := newTestMatcher(t, nil)

	for _, query := range []string{"", "   ", "!!!"} {
		matches, err := matcher.Match(context.Background(), query, smithEntities(), "")
		require.NoError(t, err)
		assert.Empty(t, matches, "query %q", query)
	}

	// with a zero floor, every candidate is reported with a zero score
	matcher = newTestMatcher(t, func(c *models.ScreeningConfig) {
		c.Matching.Floor = 0
		c.Matching.MediumConfidence = 0
		c.Matching.HighConfidence = 0
	})
	matches, err := matcher.Match(context.Background(), "", smithEntities(), "")
	require.NoError(t, err)
	require.Len(t, matches, len(smithEntities()))
	for _, m := range matches {
		assert.Equal(t, 0, m.Candidate.Score)
	}
	assertOrdered(t, matches)
}

func TestMatchNoCandidates(t *testing.T) {
	matcher := newTestMatcher(t, nil)

	matches, err := matcher.Match(context.Background(), "John Smith", nil, "")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMatchDataIntegrityErrors(t *testing.T) {
	tests := []struct {
		name       string
		candidates []models.ScreeningEntity
		sentinel   error
	}{
		{
			name:       "missing id",
			candidates: []models.ScreeningEntity{{Id: "", Name: "John Smith"}},
			sentinel:   models.ErrEntityMissingId,
		},
		{
			name:       "missing name",
			candidates: []models.ScreeningEntity{{Id: "1", Name: " "}},
			sentinel:   models.ErrEntityMissingName,
		},
		{
			name: "conflicting names for the same id",
			candidates: []models.ScreeningEntity{
				{Id: "1", Name: "John Smith"},
				{Id: "1", Name: "Jane Smith"},
			},
			sentinel: models.ErrEntityConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matcher := newTestMatcher(t, nil)
			matches, err := matcher.Match(context.Background(), "John Smith", tt.candidates, "")
			require.Error(t, err)
			assert.Nil(t, matches)
			assert.True(t, errors.Is(err, tt.sentinel))
			assert.True(t, errors.Is(err, models.DataIntegrityError))
		})
	}
}

func TestMatchConflictAcrossCalls(t *testing.T) {
	matcher := newTestMatcher(t, nil)

	_, err := matcher.Match(context.Background(), "John Smith", []models.ScreeningEntity{{Id: "1", Name: "John Smith"}}, "")
	require.NoError(t, err)

	_, err = matcher.Match(context.Background(), "John Smith", []models.ScreeningEntity{{Id: "1", Name: "Jane Doe"}}, "")
	assert.True(t, errors.Is(err, models.ErrEntityConflict))
}

func TestMatchAliasChangedAcrossCalls(t *testing.T) {
	matcher := newTestMatcher(t, nil)

	first := []models.ScreeningEntity{{Id: "42", Name: "Ocean Trade LLC", Aliases: []string{"Blue Falcon Shipping"}}}
	matches, err := matcher.Match(context.Background(), "Blue Falcon Shipping", first, "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Blue Falcon Shipping", matches[0].Candidate.MatchedName)

	second := []models.ScreeningEntity{{Id: "42", Name: "Ocean Trade LLC", Aliases: []string{"Red Horizon Holdings"}}}
	for _, query := range []string{"Blue Falcon Shipping", "Red Horizon Holdings"} {
		matches, err = matcher.Match(context.Background(), query, second, "")
		assert.True(t, errors.Is(err, models.ErrEntityConflict), query)
		assert.Nil(t, matches, query)
	}
}

func TestMatchIsDeterministicUnderConcurrency(t *testing.T) {
	entities := make([]models.ScreeningEntity, 0, 300)
	for i := range 300 {
		entities = append(entities, models.ScreeningEntity{
			Id:   fmt.Sprintf("id-%03d", i),
			Name: fmt.Sprintf("John Smith %d", i%7),
		})
	}

	sequential := newTestMatcher(t, func(c *models.ScreeningConfig) { c.Matching.MaxConcurrency = 1 })
	parallel := newTestMatcher(t, func(c *models.ScreeningConfig) { c.Matching.MaxConcurrency = 16 })

	expected, err := sequential.Match(context.Background(), "John Smith", entities, "")
	require.NoError(t, err)
	require.NotEmpty(t, expected)

	for range 5 {
		got, err := parallel.Match(context.Background(), "John Smith", entities, "")
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	}
	assertOrdered(t, expected)
}

func TestMatchCancelledContext(t *testing.T) {
	matcher := newTestMatcher(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	matches, err := matcher.Match(ctx, "John Smith", smithEntities(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, matches)
}

func TestNewMatcherInvalidConfig(t *testing.T) {
	config := models.DefaultScreeningConfig()
	config.Matching.Floor = 150

	_, err := NewMatcher(config)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ConfigurationError))
}
