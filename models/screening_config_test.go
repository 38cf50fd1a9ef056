package models

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScreeningConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultScreeningConfig().Validate())
}

func TestDefaultScreeningConfigIsNotShared(t *testing.T) {
	a := DefaultScreeningConfig()
	a.Scoring.TagWeights[MediaTagPep] = 0
	a.Matching.StopTokens[0] = "changed"

	b := DefaultScreeningConfig()
	assert.Equal(t, 50.0, b.Scoring.TagWeights[MediaTagPep])
	assert.Equal(t, "mr", b.Matching.StopTokens[0])
}

func TestScreeningConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *ScreeningConfig)
		field  string
	}{
		{"floor below 0", func(c *ScreeningConfig) { c.Matching.Floor = -1 }, "matching.floor"},
		{"floor above 100", func(c *ScreeningConfig) { c.Matching.Floor = 101 }, "matching.floor"},
		{"min token length", func(c *ScreeningConfig) { c.Matching.MinTokenLength = 0 }, "matching.min_token_length"},
		{"bands inverted", func(c *ScreeningConfig) { c.Matching.MediumConfidence = 95 }, "matching.confidence"},
		{"concurrency", func(c *ScreeningConfig) { c.Matching.MaxConcurrency = 0 }, "matching.max_concurrency"},
		{"max results", func(c *ScreeningConfig) { c.Matching.MaxResults = -3 }, "matching.max_results"},
		{"weight above 1", func(c *ScreeningConfig) { c.Scoring.Weights.Pep = 1.1 }, "scoring.weights.pep"},
		{"weight NaN", func(c *ScreeningConfig) { c.Scoring.Weights.Media = math.NaN() }, "scoring.weights.media"},
		{"weights sum", func(c *ScreeningConfig) { c.Scoring.Weights.Sanctions = 0.5 }, "scoring.weights"},
		{"thresholds equal", func(c *ScreeningConfig) { c.Scoring.Thresholds.Medium = 75 }, "scoring.thresholds"},
		{"threshold above 100", func(c *ScreeningConfig) { c.Scoring.Thresholds.High = 101 }, "scoring.thresholds"},
		{"negative decay", func(c *ScreeningConfig) { c.Scoring.DecayRate = -0.01 }, "scoring.decay_rate"},
		{"infinite decay", func(c *ScreeningConfig) { c.Scoring.DecayRate = math.Inf(1) }, "scoring.decay_rate"},
		{"unmentioned factor", func(c *ScreeningConfig) { c.Scoring.UnmentionedFactor = 2 }, "scoring.unmentioned_factor"},
		{"missing tag weight", func(c *ScreeningConfig) { delete(c.Scoring.TagWeights, MediaTagCrime) }, "scoring.tag_weights.crime"},
		{"tag weight out of range", func(c *ScreeningConfig) { c.Scoring.TagWeights[MediaTagFraud] = 150 }, "scoring.tag_weights.fraud"},
		{"unknown tag weight", func(c *ScreeningConfig) { c.Scoring.TagWeights[MediaTagUnknown] = 10 }, "scoring.tag_weights"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultScreeningConfig()
			tt.mutate(&config)

			err := config.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ConfigurationError))

			var fieldErrors ConfigurationFieldErrors
			require.True(t, errors.As(err, &fieldErrors))
			assert.Contains(t, fieldErrors, tt.field)
		})
	}
}

func TestScreeningConfigValidateWeightsSumTolerance(t *testing.T) {
	config := DefaultScreeningConfig()
	config.Scoring.Weights = RiskWeights{Sanctions: 0.1, Media: 0.2, Pep: 0.7}
	assert.NoError(t, config.Validate())

	config.Scoring.Weights = RiskWeights{Sanctions: 1, Media: 0, Pep: 0}
	assert.NoError(t, config.Validate())
}

func TestScreeningConfigValidateReportsEveryField(t *testing.T) {
	config := DefaultScreeningConfig()
	config.Matching.Floor = 200
	config.Scoring.DecayRate = -1

	err := config.Validate()
	var fieldErrors ConfigurationFieldErrors
	require.True(t, errors.As(err, &fieldErrors))
	assert.Len(t, fieldErrors, 2)
}

func TestNameMatchingConfigBand(t *testing.T) {
	config := DefaultScreeningConfig().Matching
	tests := []struct {
		score int
		want  ConfidenceBand
	}{
		{100, ConfidenceBandHigh},
		{90, ConfidenceBandHigh},
		{89, ConfidenceBandMedium},
		{80, ConfidenceBandMedium},
		{79, ConfidenceBandLow},
		{0, ConfidenceBandLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, config.Band(tt.score), "score %d", tt.score)
	}
}
