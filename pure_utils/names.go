package pure_utils

import (
	"slices"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/checkmarble/marble-screening/models"
)

type NameNormalizationOptions struct {
	MinTokenLength int
	StopTokens     []string
}

// NameNormalizationOptionsFrom puts the configured stop tokens through the same
// transliteration, folding and stripping as names, so that "Señor" or "Mme." remove the
// tokens "senor" and "mme". A stop token that splits into several tokens adds each of them.
func NameNormalizationOptionsFrom(config models.NameMatchingConfig) NameNormalizationOptions {
	stopTokens := make([]string, 0, len(config.StopTokens))
	for _, raw := range config.StopTokens {
		for _, t := range baseTokens(raw, func(bool, models.NormalizationNote) {}) {
			if !slices.Contains(stopTokens, t) {
				stopTokens = append(stopTokens, t)
			}
		}
	}
	return NameNormalizationOptions{
		MinTokenLength: config.MinTokenLength,
		StopTokens:     stopTokens,
	}
}

// NormalizeName turns a raw name into comparable tokens. It never fails: characters
// that cannot be transliterated or that are not letters or digits are dropped.
//
// Steps, in order:
//   - transliterate to base latin (strip diacritics, then transliterate the rest)
//   - fold case
//   - replace every non letter, non digit rune by a separator
//   - split on whitespace
//   - remove stop tokens, unless every token is one
//   - drop tokens shorter than MinTokenLength, unless that would drop every token
//
// NormalizeName(NormalizeName(x).String()) yields the same tokens as NormalizeName(x).
func NormalizeName(raw string, opts NameNormalizationOptions) models.NormalizedName {
	notes := make([]models.NormalizationNote, 0, 6)
	note := func(changed bool, n models.NormalizationNote) {
		if changed {
			notes = append(notes, n)
		}
	}

	tokens := baseTokens(raw, note)

	if len(opts.StopTokens) > 0 {
		kept := slices.DeleteFunc(slices.Clone(tokens), func(t string) bool {
			return slices.Contains(opts.StopTokens, t)
		})
		if len(kept) > 0 && len(kept) < len(tokens) {
			tokens = kept
			note(true, models.NormalizationNoteStopTokensRemoved)
		}
	}

	if opts.MinTokenLength > 1 && len(tokens) > 1 {
		kept := slices.DeleteFunc(slices.Clone(tokens), func(t string) bool {
			return len([]rune(t)) < opts.MinTokenLength
		})
		if len(kept) > 0 && len(kept) < len(tokens) {
			tokens = kept
			note(true, models.NormalizationNoteShortTokensDropped)
		}
	}

	if tokens == nil {
		tokens = []string{}
	}
	return models.NormalizedName{Tokens: tokens, Notes: slices.Clip(notes)}
}

// baseTokens runs the character level steps of NormalizeName and splits the result.
func baseTokens(raw string, note func(changed bool, n models.NormalizationNote)) []string {
	s := removeDiacritics(raw)
	note(s != raw, models.NormalizationNoteDiacriticsStripped)

	ascii := s
	if !isASCII(s) {
		ascii = unidecode.Unidecode(s)
	}
	note(ascii != s, models.NormalizationNoteTransliterated)

	folded := cases.Fold().String(ascii)
	note(folded != ascii, models.NormalizationNoteCaseFolded)

	stripped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, folded)
	note(stripped != folded, models.NormalizationNotePunctuationRemoved)

	return strings.Fields(stripped)
}

func removeDiacritics(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}
