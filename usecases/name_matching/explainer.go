package name_matching

import (
	"slices"

	"github.com/hashicorp/go-set/v2"

	"github.com/checkmarble/marble-screening/models"
	"github.com/checkmarble/marble-screening/pure_utils"
)

// Explain describes the comparison between a query and the entity name that produced a
// match score: shared tokens, tokens found on one side only, and the detail recorded by
// the winning measure. It does not score anything itself.
func Explain(
	query models.NormalizedName,
	name models.NormalizedName,
	matchedName string,
	measure models.SimilarityMeasure,
	detail pure_utils.SimilarityDetail,
) models.MatchExplanation {
	queryTokens := set.From(query.Tokens)
	nameTokens := set.From(name.Tokens)

	explanation := models.MatchExplanation{
		MatchedTokens:    sorted(queryTokens.Intersect(nameTokens)),
		QueryOnlyTokens:  sorted(queryTokens.Difference(nameTokens)),
		EntityOnlyTokens: sorted(nameTokens.Difference(queryTokens)),
		Measure:          measure,
		MatchedName:      matchedName,
		QueryNotes:       slices.Clone(query.Notes),
		NameNotes:        slices.Clone(name.Notes),
	}

	switch measure {
	case models.SimilarityMeasureTokenSet:
		explanation.Comparison = detail.Comparison
	case models.SimilarityMeasurePartial:
		explanation.AlignedSegment = detail.AlignedSegment
	}

	return explanation
}

func sorted(c set.Collection[string]) []string {
	items := c.Slice()
	slices.Sort(items)
	return items
}
