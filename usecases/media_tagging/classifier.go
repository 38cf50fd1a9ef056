package media_tagging

import (
	"regexp"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/marble-screening/models"
	"github.com/checkmarble/marble-screening/pure_utils"
)

// TagClassifier maps an article text to tag categories. The risk scorer only ever sees
// the resulting tags, never the text.
type TagClassifier interface {
	Classify(text string) []models.MediaTag
}

var DefaultKeywords = map[models.MediaTag][]string{
	models.MediaTagSanctions: {"sanctions", "embargo", "blocked", "sdn", "ofac", "restricted"},
	models.MediaTagPep:       {"government", "official", "minister", "diplomat", "president"},
	models.MediaTagFraud:     {"fraud", "embezzlement", "forgery", "scheme", "scam"},
	models.MediaTagCrime:     {"arrest", "convicted", "charged", "indictment", "crime", "criminal"},
}

// KeywordClassifier tags a text with every category having at least one keyword present
// as a whole word, case insensitively. A text with no keyword is tagged "other".
type KeywordClassifier struct {
	patterns map[models.MediaTag]*regexp.Regexp
}

func NewKeywordClassifier(keywords map[models.MediaTag][]string) (KeywordClassifier, error) {
	patterns := make(map[models.MediaTag]*regexp.Regexp, len(keywords))
	for tag, words := range keywords {
		if tag == models.MediaTagUnknown || tag == models.MediaTagOther {
			return KeywordClassifier{}, errors.Wrapf(models.ConfigurationError,
				"keywords cannot be declared for the %s tag", tag)
		}
		quoted := make([]string, 0, len(words))
		for _, w := range words {
			if w = strings.TrimSpace(w); w != "" {
				quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(w)))
			}
		}
		if len(quoted) == 0 {
			continue
		}
		patterns[tag] = regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	return KeywordClassifier{patterns: patterns}, nil
}

func (c KeywordClassifier) Classify(text string) []models.MediaTag {
	tags := make([]models.MediaTag, 0, len(c.patterns))
	for _, tag := range models.MediaTags {
		if pattern, ok := c.patterns[tag]; ok && pattern.MatchString(text) {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return []models.MediaTag{models.MediaTagOther}
	}
	return tags
}

// MentionsName tells whether the normalized tokens of name appear contiguously, in
// order, in the normalized text.
func MentionsName(text string, name string, opts pure_utils.NameNormalizationOptions) bool {
	nameTokens := pure_utils.NormalizeName(name, opts).Tokens
	if len(nameTokens) == 0 {
		return false
	}
	// the text is tokenized without dropping anything
	textTokens := pure_utils.NormalizeName(text, pure_utils.NameNormalizationOptions{}).Tokens
	for start := 0; start+len(nameTokens) <= len(textTokens); start++ {
		if slices.Equal(textTokens[start:start+len(nameTokens)], nameTokens) {
			return true
		}
	}
	return false
}

// BuildMediaSignal tags a raw article for the screening of subjectName.
func BuildMediaSignal(
	article models.MediaArticle,
	subjectName string,
	classifier TagClassifier,
	opts pure_utils.NameNormalizationOptions,
) (models.MediaSignal, error) {
	if strings.TrimSpace(article.Id) == "" {
		return models.MediaSignal{}, errors.Wrapf(models.ErrMediaSignalMissingId, "article titled %q", article.Title)
	}
	if article.PublishedAt.IsZero() {
		return models.MediaSignal{}, errors.Wrapf(models.ErrMediaSignalMissingDate, "article %s", article.Id)
	}

	text := article.Title + " " + article.Content
	return models.MediaSignal{
		ArticleId:     article.Id,
		Source:        article.Source,
		Title:         article.Title,
		PublishedAt:   article.PublishedAt,
		Tags:          classifier.Classify(text),
		NameMentioned: MentionsName(text, subjectName, opts),
	}, nil
}
