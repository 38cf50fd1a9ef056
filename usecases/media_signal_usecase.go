package usecases

import (
	"context"

	"github.com/checkmarble/marble-screening/models"
	"github.com/checkmarble/marble-screening/pure_utils"
	"github.com/checkmarble/marble-screening/usecases/media_tagging"
	"github.com/checkmarble/marble-screening/utils"
)

type MediaSignalUsecase struct {
	classifier media_tagging.TagClassifier
	config     models.NameMatchingConfig
}

// BuildMediaSignals tags raw articles for the screening of subjectName. Any malformed
// article fails the call.
func (usecase MediaSignalUsecase) BuildMediaSignals(
	ctx context.Context,
	articles []models.MediaArticle,
	subjectName string,
) ([]models.MediaSignal, error) {
	opts := pure_utils.NameNormalizationOptionsFrom(usecase.config)
	signals := make([]models.MediaSignal, 0, len(articles))
	mentioned := 0
	for _, article := range articles {
		signal, err := media_tagging.BuildMediaSignal(article, subjectName, usecase.classifier, opts)
		if err != nil {
			return nil, err
		}
		if signal.NameMentioned {
			mentioned++
		}
		signals = append(signals, signal)
	}

	utils.LoggerFromContext(ctx).DebugContext(ctx, "built media signals",
		"articles", len(articles),
		"name_mentioned", mentioned,
	)
	return signals, nil
}
