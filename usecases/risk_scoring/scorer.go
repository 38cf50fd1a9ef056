package risk_scoring

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/checkmarble/marble-screening/models"
)

const hoursPerDay = 24

var pepScore = decimal.NewFromInt(100)

// Scorer combines the best sanctions match, adverse media and the PEP flag into a
// composite risk score. The configuration is validated once, in NewScorer.
type Scorer struct {
	config models.RiskScoringConfig
	floor  int

	sanctionsWeight decimal.Decimal
	mediaWeight     decimal.Decimal
	pepWeight       decimal.Decimal
}

func NewScorer(config models.ScreeningConfig) (Scorer, error) {
	if err := config.Validate(); err != nil {
		return Scorer{}, errors.Wrap(err, "invalid configuration for the risk scorer")
	}
	return Scorer{
		config:          config.Scoring,
		floor:           config.Matching.Floor,
		sanctionsWeight: decimal.NewFromFloat(config.Scoring.Weights.Sanctions),
		mediaWeight:     decimal.NewFromFloat(config.Scoring.Weights.Media),
		pepWeight:       decimal.NewFromFloat(config.Scoring.Weights.Pep),
	}, nil
}

// Score computes the risk breakdown of one screening. The result only depends on its
// arguments: now is the reference time for the media recency decay.
func (s Scorer) Score(
	matches []models.ScreeningNameMatch,
	mediaSignals []models.MediaSignal,
	pepFlag bool,
	now time.Time,
) (models.RiskBreakdown, error) {
	retained, sanctionsScore, err := s.sanctionsComponent(matches)
	if err != nil {
		return models.RiskBreakdown{}, err
	}

	summaries, mediaScore, err := s.mediaComponent(mediaSignals, now)
	if err != nil {
		return models.RiskBreakdown{}, err
	}

	pep := decimal.Zero
	if pepFlag {
		pep = pepScore
	}

	breakdown := models.RiskBreakdown{
		Sanctions:    models.NewRiskComponent(sanctionsScore, s.sanctionsWeight),
		Media:        models.NewRiskComponent(mediaScore, s.mediaWeight),
		Pep:          models.NewRiskComponent(pep, s.pepWeight),
		Matches:      retained,
		MediaSignals: summaries,
		ScoredAt:     now,
	}
	breakdown.CompositeScore = breakdown.RecomputeComposite()
	breakdown.RiskLevel = s.config.Thresholds.Level(breakdown.CompositeScore)

	return breakdown, nil
}

// Only matches at or above the floor count; the component is the best of them. The
// retained matches are ranked so that the first one is the match the component comes from.
func (s Scorer) sanctionsComponent(matches []models.ScreeningNameMatch) ([]models.ScreeningNameMatch, decimal.Decimal, error) {
	retained := make([]models.ScreeningNameMatch, 0, len(matches))
	best := 0
	for _, m := range matches {
		score := m.Candidate.Score
		if score < 0 || score > 100 {
			return nil, decimal.Zero, errors.Wrapf(models.DataIntegrityError,
				"match on entity %s has a score of %d, outside of [0, 100]", m.Candidate.Entity.Id, score)
		}
		if score < s.floor {
			continue
		}
		retained = append(retained, m)
		best = max(best, score)
	}
	models.SortMatches(retained)
	return retained, decimal.NewFromInt(int64(best)), nil
}

// The media component is the single highest article contribution: republished copies of
// the same story do not add up.
func (s Scorer) mediaComponent(signals []models.MediaSignal, now time.Time) ([]models.MediaSignalSummary, decimal.Decimal, error) {
	summaries := make([]models.MediaSignalSummary, 0, len(signals))
	best := decimal.Zero
	for _, signal := range signals {
		summary, err := s.scoreMediaSignal(signal, now)
		if err != nil {
			return nil, decimal.Zero, err
		}
		best = decimal.Max(best, summary.Contribution)
		summaries = append(summaries, summary)
	}

	slices.SortStableFunc(summaries, func(a, b models.MediaSignalSummary) int {
		return cmp.Or(
			b.Contribution.Cmp(a.Contribution),
			b.PublishedAt.Compare(a.PublishedAt),
			strings.Compare(a.ArticleId, b.ArticleId),
		)
	})
	if len(summaries) > 0 && best.IsPositive() {
		summaries[0].Decisive = true
	}

	return summaries, models.ClampScore(best), nil
}

func (s Scorer) scoreMediaSignal(signal models.MediaSignal, now time.Time) (models.MediaSignalSummary, error) {
	if strings.TrimSpace(signal.ArticleId) == "" {
		return models.MediaSignalSummary{}, errors.Wrapf(models.ErrMediaSignalMissingId,
			"signal titled %q", signal.Title)
	}
	if signal.PublishedAt.IsZero() {
		return models.MediaSignalSummary{}, errors.Wrapf(models.ErrMediaSignalMissingDate,
			"article %s", signal.ArticleId)
	}

	categoryWeight, err := s.categoryWeight(signal)
	if err != nil {
		return models.MediaSignalSummary{}, err
	}

	// articles dated after now count as fresh, never as fresher than fresh
	ageDays := max(0, now.Sub(signal.PublishedAt).Hours()/hoursPerDay)
	decay := math.Exp(-s.config.DecayRate * ageDays)

	mentionFactor := 1.0
	if !signal.NameMentioned {
		mentionFactor = s.config.UnmentionedFactor
	}

	return models.MediaSignalSummary{
		ArticleId:      signal.ArticleId,
		Source:         signal.Source,
		Title:          signal.Title,
		PublishedAt:    signal.PublishedAt,
		Tags:           slices.Clone(signal.Tags),
		NameMentioned:  signal.NameMentioned,
		AgeDays:        ageDays,
		CategoryWeight: categoryWeight,
		DecayFactor:    decay,
		Contribution:   models.ClampScore(decimal.NewFromFloat(categoryWeight * mentionFactor * decay)),
	}, nil
}

// Highest weight among the article tags; an untagged article weighs as "other".
func (s Scorer) categoryWeight(signal models.MediaSignal) (float64, error) {
	if len(signal.Tags) == 0 {
		return s.config.TagWeights[models.MediaTagOther], nil
	}
	weight := 0.0
	for _, tag := range signal.Tags {
		w, ok := s.config.TagWeights[tag]
		if !ok {
			return 0, errors.Wrapf(models.ErrMediaSignalUnknownTag,
				"article %s has tag %s", signal.ArticleId, tag)
		}
		weight = max(weight, w)
	}
	return weight, nil
}
