package pure_utils

import (
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/adrg/strutil/metrics"
	"github.com/hashicorp/go-set/v2"

	"github.com/checkmarble/marble-screening/models"
)

// SimilarityDetail records how a similarity measure reached its score, so that the score
// can be explained without being computed again.
type SimilarityDetail struct {
	Comparison     models.TokenSetComparison
	AlignedSegment string
}

type Similarity struct {
	Score  int
	Detail SimilarityDetail
}

// indel distance: a replacement costs a deletion plus an insertion
func newIndelMetric() *metrics.Levenshtein {
	lev := metrics.NewLevenshtein()
	lev.CaseSensitive = true
	lev.InsertCost = 1
	lev.DeleteCost = 1
	lev.ReplaceCost = 2
	return lev
}

// similarityRatio returns 100 * (1 - indel(s1, s2) / (len(s1) + len(s2))), 0 if either side is empty.
func similarityRatio(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0
	}
	lensum := utf8.RuneCountInString(s1) + utf8.RuneCountInString(s2)
	distance := newIndelMetric().Distance(s1, s2)
	return 100 * float64(lensum-distance) / float64(lensum)
}

func roundScore(ratio float64) int {
	return int(math.Round(ratio))
}

// TokenSetRatio compares two token sequences regardless of token order and repetition.
// With I the sorted intersection of both token sets and D1, D2 the sorted remainders,
// it returns the best ratio among (I, I+D1), (I, I+D2) and (I+D1, I+D2).
func TokenSetRatio(tokens1, tokens2 []string) Similarity {
	set1 := set.From(tokens1)
	set2 := set.From(tokens2)
	if set1.Empty() || set2.Empty() {
		return Similarity{}
	}

	intersection := sortedItems(set1.Intersect(set2))
	diff1 := sortedItems(set1.Difference(set2))
	diff2 := sortedItems(set2.Difference(set1))

	t0 := strings.Join(intersection, " ")
	t1 := strings.TrimSpace(t0 + " " + strings.Join(diff1, " "))
	t2 := strings.TrimSpace(t0 + " " + strings.Join(diff2, " "))

	comparisons := []struct {
		comparison models.TokenSetComparison
		left       string
		right      string
	}{
		{models.TokenSetComparisonIntersectionVsQuery, t0, t1},
		{models.TokenSetComparisonIntersectionVsName, t0, t2},
		{models.TokenSetComparisonQueryVsName, t1, t2},
	}

	best := -1.0
	var bestComparison models.TokenSetComparison
	for _, c := range comparisons {
		if ratio := similarityRatio(c.left, c.right); ratio > best {
			best = ratio
			bestComparison = c.comparison
		}
	}

	return Similarity{
		Score:  roundScore(best),
		Detail: SimilarityDetail{Comparison: bestComparison},
	}
}

// PartialRatio slides the shorter string over the longer one and returns the best
// ratio between the shorter string and a window of the same length.
func PartialRatio(s1, s2 string) Similarity {
	if s1 == "" || s2 == "" {
		return Similarity{}
	}

	shorter, longer := []rune(s1), []rune(s2)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	short := string(shorter)

	best := -1.0
	var bestSegment string
	for start := 0; start+len(shorter) <= len(longer); start++ {
		window := string(longer[start : start+len(shorter)])
		if ratio := similarityRatio(short, window); ratio > best {
			best = ratio
			bestSegment = window
			if ratio == 100 {
				break
			}
		}
	}

	return Similarity{
		Score:  roundScore(best),
		Detail: SimilarityDetail{AlignedSegment: bestSegment},
	}
}

func sortedItems(c set.Collection[string]) []string {
	items := c.Slice()
	slices.Sort(items)
	return items
}
