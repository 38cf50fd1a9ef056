package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Number of decimal places kept on component and composite scores.
const ScorePrecision = 2

var (
	MinScore = decimal.Zero
	MaxScore = decimal.NewFromInt(100)
)

type RiskLevel int

const (
	RiskLevelHigh RiskLevel = iota
	RiskLevelMedium
	RiskLevelLow
	RiskLevelUnknown
)

func RiskLevelFrom(s string) RiskLevel {
	switch s {
	case "HIGH":
		return RiskLevelHigh
	case "MEDIUM":
		return RiskLevelMedium
	case "LOW":
		return RiskLevelLow
	}

	return RiskLevelUnknown
}

func (l RiskLevel) String() string {
	switch l {
	case RiskLevelHigh:
		return "HIGH"
	case RiskLevelMedium:
		return "MEDIUM"
	case RiskLevelLow:
		return "LOW"
	}

	return "UNKNOWN"
}

func (l RiskLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l RiskLevel) Recommendation() string {
	switch l {
	case RiskLevelHigh:
		return "Immediate escalation recommended."
	case RiskLevelMedium:
		return "Further investigation advised."
	}

	return "Screening completed."
}

// RiskComponent is one input of the composite score: its raw score on a 0-100 scale,
// the configured weight and the weighted contribution.
type RiskComponent struct {
	Score        decimal.Decimal
	Weight       decimal.Decimal
	Contribution decimal.Decimal
}

func NewRiskComponent(score decimal.Decimal, weight decimal.Decimal) RiskComponent {
	return RiskComponent{
		Score:        score,
		Weight:       weight,
		Contribution: score.Mul(weight),
	}
}

// ClampScore rounds a score to ScorePrecision and bounds it to [0, 100].
func ClampScore(score decimal.Decimal) decimal.Decimal {
	return decimal.Min(decimal.Max(score.Round(ScorePrecision), MinScore), MaxScore)
}

// ComposeRiskScore sums the weighted contributions of the components. The scorer and the
// audit replay both go through this function, so a recorded breakdown always reproduces
// its composite score.
func ComposeRiskScore(components ...RiskComponent) decimal.Decimal {
	total := decimal.Zero
	for _, c := range components {
		total = total.Add(c.Score.Mul(c.Weight))
	}
	return ClampScore(total)
}

type MediaSignalSummary struct {
	ArticleId      string
	Source         string
	Title          string
	PublishedAt    time.Time
	Tags           []MediaTag
	NameMentioned  bool
	AgeDays        float64
	CategoryWeight float64
	DecayFactor    float64
	Contribution   decimal.Decimal
	// Set on the article that gives its value to the media component.
	Decisive bool
}

// RiskBreakdown is the terminal output of a screening. It is built once by the scorer
// and only read afterwards.
type RiskBreakdown struct {
	Sanctions      RiskComponent
	Media          RiskComponent
	Pep            RiskComponent
	CompositeScore decimal.Decimal
	RiskLevel      RiskLevel
	Matches        []ScreeningNameMatch
	MediaSignals   []MediaSignalSummary
	ScoredAt       time.Time
}

// RecomputeComposite replays the recorded components through the recorded weights.
func (b RiskBreakdown) RecomputeComposite() decimal.Decimal {
	return ComposeRiskScore(b.Sanctions, b.Media, b.Pep)
}

// BestMatch returns the highest ranked sanctions match, if any.
func (b RiskBreakdown) BestMatch() (ScreeningNameMatch, bool) {
	if len(b.Matches) == 0 {
		return ScreeningNameMatch{}, false
	}
	return b.Matches[0], true
}

func (b RiskBreakdown) Summary() string {
	var label string
	switch b.RiskLevel {
	case RiskLevelHigh:
		label = "High-risk profile"
	case RiskLevelMedium:
		label = "Medium-risk profile"
	default:
		label = "Low-risk profile"
	}
	return fmt.Sprintf("%s (score: %s/100). %s",
		label, b.CompositeScore.StringFixed(ScorePrecision), b.RiskLevel.Recommendation())
}
