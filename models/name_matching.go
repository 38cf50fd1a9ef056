package models

import (
	"cmp"
	"slices"
	"strings"
)

type NormalizationNote string

const (
	NormalizationNoteTransliterated     NormalizationNote = "transliterated"
	NormalizationNoteDiacriticsStripped NormalizationNote = "diacritics_stripped"
	NormalizationNoteCaseFolded         NormalizationNote = "case_folded"
	NormalizationNotePunctuationRemoved NormalizationNote = "punctuation_removed"
	NormalizationNoteStopTokensRemoved  NormalizationNote = "stop_tokens_removed"
	NormalizationNoteShortTokensDropped NormalizationNote = "short_tokens_dropped"
)

// NormalizedName is the comparable form of a raw name: lowercase tokens without
// whitespace, in their original order. Notes lists the normalization steps that
// changed the raw text.
type NormalizedName struct {
	Tokens []string
	Notes  []NormalizationNote
}

func (n NormalizedName) String() string {
	return strings.Join(n.Tokens, " ")
}

func (n NormalizedName) IsEmpty() bool {
	return len(n.Tokens) == 0
}

type SimilarityMeasure int

const (
	SimilarityMeasureTokenSet SimilarityMeasure = iota
	SimilarityMeasurePartial
	SimilarityMeasureUnknown
)

func SimilarityMeasureFrom(s string) SimilarityMeasure {
	switch s {
	case "token_set":
		return SimilarityMeasureTokenSet
	case "partial":
		return SimilarityMeasurePartial
	}

	return SimilarityMeasureUnknown
}

func (m SimilarityMeasure) String() string {
	switch m {
	case SimilarityMeasureTokenSet:
		return "token_set"
	case SimilarityMeasurePartial:
		return "partial"
	}

	return "unknown"
}

func (m SimilarityMeasure) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *SimilarityMeasure) UnmarshalText(text []byte) error {
	*m = SimilarityMeasureFrom(string(text))
	return nil
}

type ConfidenceBand int

const (
	ConfidenceBandHigh ConfidenceBand = iota
	ConfidenceBandMedium
	ConfidenceBandLow
)

func ConfidenceBandFrom(s string) ConfidenceBand {
	switch s {
	case "high":
		return ConfidenceBandHigh
	case "medium":
		return ConfidenceBandMedium
	}

	return ConfidenceBandLow
}

func (b ConfidenceBand) String() string {
	switch b {
	case ConfidenceBandHigh:
		return "high"
	case ConfidenceBandMedium:
		return "medium"
	}

	return "low"
}

func (b ConfidenceBand) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *ConfidenceBand) UnmarshalText(text []byte) error {
	*b = ConfidenceBandFrom(string(text))
	return nil
}

// MatchCandidate is an entity that scored at or above the matching floor for one query.
type MatchCandidate struct {
	Entity             ScreeningEntity
	MatchedName        string
	MatchedNameIsAlias bool
	Score              int
	Measure            SimilarityMeasure
	Band               ConfidenceBand
}

type TokenSetComparison string

const (
	TokenSetComparisonIntersectionVsQuery TokenSetComparison = "intersection_vs_query"
	TokenSetComparisonIntersectionVsName  TokenSetComparison = "intersection_vs_name"
	TokenSetComparisonQueryVsName         TokenSetComparison = "query_vs_name"
)

// MatchExplanation describes the computation that produced a MatchCandidate score.
// Comparison is set for the token set measure, AlignedSegment for the partial measure.
type MatchExplanation struct {
	MatchedTokens    []string
	QueryOnlyTokens  []string
	EntityOnlyTokens []string
	Measure          SimilarityMeasure
	MatchedName      string
	QueryNotes       []NormalizationNote
	NameNotes        []NormalizationNote

	Comparison     TokenSetComparison
	AlignedSegment string
}

type ScreeningNameMatch struct {
	Candidate   MatchCandidate
	Explanation MatchExplanation
}

// SortMatches orders matches by decreasing score, then canonical name, then entity id.
func SortMatches(matches []ScreeningNameMatch) {
	slices.SortStableFunc(matches, func(a, b ScreeningNameMatch) int {
		return cmp.Or(
			cmp.Compare(b.Candidate.Score, a.Candidate.Score),
			strings.Compare(a.Candidate.Entity.Name, b.Candidate.Entity.Name),
			strings.Compare(a.Candidate.Entity.Id, b.Candidate.Entity.Id),
		)
	})
}
