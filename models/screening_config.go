package models

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// NameMatchingConfig drives the name normalization and the matcher.
type NameMatchingConfig struct {
	// Candidates whose best score is under the floor are not reported at all.
	Floor            int
	MinTokenLength   int
	StopTokens       []string
	HighConfidence   int
	MediumConfidence int
	MaxConcurrency   int
	// 0 reports every candidate above the floor
	MaxResults int
}

func (c NameMatchingConfig) Band(score int) ConfidenceBand {
	switch {
	case score >= c.HighConfidence:
		return ConfidenceBandHigh
	case score >= c.MediumConfidence:
		return ConfidenceBandMedium
	default:
		return ConfidenceBandLow
	}
}

type RiskWeights struct {
	Sanctions float64
	Media     float64
	Pep       float64
}

type RiskThresholds struct {
	High   float64
	Medium float64
}

// Level maps a composite score to exactly one risk level.
func (t RiskThresholds) Level(composite decimal.Decimal) RiskLevel {
	switch {
	case composite.GreaterThanOrEqual(decimal.NewFromFloat(t.High)):
		return RiskLevelHigh
	case composite.GreaterThanOrEqual(decimal.NewFromFloat(t.Medium)):
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

type RiskScoringConfig struct {
	Weights    RiskWeights
	Thresholds RiskThresholds
	// Per day exponential decay rate applied to adverse media contributions.
	DecayRate  float64
	TagWeights map[MediaTag]float64
	// Multiplier applied to articles that do not mention the subject by name.
	UnmentionedFactor float64
}

type ScreeningConfig struct {
	Matching NameMatchingConfig
	Scoring  RiskScoringConfig
}

const (
	DefaultMatchingFloor     = 70
	DefaultMinTokenLength    = 2
	DefaultHighConfidence    = 90
	DefaultMediumConfidence  = 80
	DefaultMaxConcurrency    = 8
	DefaultHighRiskThreshold = 75
	DefaultMedRiskThreshold  = 40
	// 30 days half-life
	DefaultMediaHalfLifeDays = 30
)

var DefaultStopTokens = []string{"mr", "mrs", "ms", "miss", "dr", "sir", "mme"}

func DefaultTagWeights() map[MediaTag]float64 {
	return map[MediaTag]float64{
		MediaTagSanctions: 100,
		MediaTagFraud:     80,
		MediaTagCrime:     80,
		MediaTagPep:       50,
		MediaTagOther:     25,
	}
}

func DefaultScreeningConfig() ScreeningConfig {
	return ScreeningConfig{
		Matching: NameMatchingConfig{
			Floor:            DefaultMatchingFloor,
			MinTokenLength:   DefaultMinTokenLength,
			StopTokens:       append([]string(nil), DefaultStopTokens...),
			HighConfidence:   DefaultHighConfidence,
			MediumConfidence: DefaultMediumConfidence,
			MaxConcurrency:   DefaultMaxConcurrency,
		},
		Scoring: RiskScoringConfig{
			Weights: RiskWeights{
				Sanctions: 0.6,
				Media:     0.3,
				Pep:       0.1,
			},
			Thresholds: RiskThresholds{
				High:   DefaultHighRiskThreshold,
				Medium: DefaultMedRiskThreshold,
			},
			DecayRate:  math.Ln2 / DefaultMediaHalfLifeDays,
			TagWeights: DefaultTagWeights(),
		},
	}
}

// Validate checks the whole configuration and reports every invalid field at once.
// The returned error matches ConfigurationError.
func (c ScreeningConfig) Validate() error {
	fieldErrors := ConfigurationFieldErrors{}

	m := c.Matching
	if m.Floor < 0 || m.Floor > 100 {
		fieldErrors["matching.floor"] = fmt.Sprintf("must be between 0 and 100, got %d", m.Floor)
	}
	if m.MinTokenLength < 1 {
		fieldErrors["matching.min_token_length"] = fmt.Sprintf("must be at least 1, got %d", m.MinTokenLength)
	}
	if m.MediumConfidence < 0 || m.HighConfidence > 100 || m.MediumConfidence > m.HighConfidence {
		fieldErrors["matching.confidence"] = fmt.Sprintf(
			"bands must satisfy 0 <= medium <= high <= 100, got medium=%d high=%d",
			m.MediumConfidence, m.HighConfidence)
	}
	if m.MaxConcurrency < 1 {
		fieldErrors["matching.max_concurrency"] = fmt.Sprintf("must be at least 1, got %d", m.MaxConcurrency)
	}
	if m.MaxResults < 0 {
		fieldErrors["matching.max_results"] = fmt.Sprintf("must not be negative, got %d", m.MaxResults)
	}

	s := c.Scoring
	weights := map[string]float64{
		"scoring.weights.sanctions": s.Weights.Sanctions,
		"scoring.weights.media":     s.Weights.Media,
		"scoring.weights.pep":       s.Weights.Pep,
	}
	weightsInRange := true
	for field, w := range weights {
		if math.IsNaN(w) || w < 0 || w > 1 {
			fieldErrors[field] = fmt.Sprintf("must be between 0 and 1, got %v", w)
			weightsInRange = false
		}
	}
	if weightsInRange {
		sum := decimal.Sum(
			decimal.NewFromFloat(s.Weights.Sanctions),
			decimal.NewFromFloat(s.Weights.Media),
			decimal.NewFromFloat(s.Weights.Pep),
		)
		if !sum.Round(9).Equal(decimal.NewFromInt(1)) {
			fieldErrors["scoring.weights"] = fmt.Sprintf("must sum to 1, got %s", sum.String())
		}
	}

	t := s.Thresholds
	if math.IsNaN(t.High) || math.IsNaN(t.Medium) || t.Medium < 0 || t.High > 100 || t.Medium >= t.High {
		fieldErrors["scoring.thresholds"] = fmt.Sprintf(
			"must satisfy 0 <= medium < high <= 100, got medium=%v high=%v", t.Medium, t.High)
	}
	if math.IsNaN(s.DecayRate) || math.IsInf(s.DecayRate, 0) || s.DecayRate < 0 {
		fieldErrors["scoring.decay_rate"] = fmt.Sprintf("must be a finite non negative number, got %v", s.DecayRate)
	}
	if math.IsNaN(s.UnmentionedFactor) || s.UnmentionedFactor < 0 || s.UnmentionedFactor > 1 {
		fieldErrors["scoring.unmentioned_factor"] = fmt.Sprintf("must be between 0 and 1, got %v", s.UnmentionedFactor)
	}
	for _, tag := range MediaTags {
		w, ok := s.TagWeights[tag]
		field := "scoring.tag_weights." + tag.String()
		switch {
		case !ok:
			fieldErrors[field] = "is missing"
		case math.IsNaN(w) || w < 0 || w > 100:
			fieldErrors[field] = fmt.Sprintf("must be between 0 and 100, got %v", w)
		}
	}
	for tag := range s.TagWeights {
		if tag == MediaTagUnknown || tag < 0 || tag > MediaTagUnknown {
			fieldErrors["scoring.tag_weights"] = "contains an unknown tag"
		}
	}

	if len(fieldErrors) > 0 {
		return fieldErrors
	}
	return nil
}
