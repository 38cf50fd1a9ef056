package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/checkmarble/marble-screening/models"
	"github.com/checkmarble/marble-screening/usecases/name_matching"
	"github.com/checkmarble/marble-screening/usecases/risk_scoring"
	"github.com/checkmarble/marble-screening/utils"
)

// ScreeningAuditLogger receives one record per completed screening. Storage is up to the
// implementation.
type ScreeningAuditLogger interface {
	LogScreening(ctx context.Context, record models.ScreeningAuditRecord) error
}

type NoopScreeningAuditLogger struct{}

func (NoopScreeningAuditLogger) LogScreening(context.Context, models.ScreeningAuditRecord) error {
	return nil
}

type ScreeningUsecase struct {
	matcher        *name_matching.Matcher
	scorer         risk_scoring.Scorer
	auditLogger    ScreeningAuditLogger
	clock          func() time.Time
	maxConcurrency int
}

// Screen matches the request name against the entities, scores the result and hands the
// audit record to the audit logger. A screening that cannot be audited is returned as an
// error.
func (usecase ScreeningUsecase) Screen(
	ctx context.Context,
	entities []models.ScreeningEntity,
	req models.ScreeningRequest,
) (models.ScreeningResult, error) {
	tracer := utils.OpenTelemetryTracerFromContext(ctx)
	ctx, span := tracer.Start(ctx, "ScreeningUsecase.Screen",
		trace.WithAttributes(
			attribute.Int("candidates", len(entities)),
			attribute.Int("media_signals", len(req.MediaSignals)),
			attribute.String("country_filter", req.Country),
		))
	defer span.End()

	logger := utils.LoggerFromContext(ctx)
	start := time.Now()

	matches, err := usecase.matcher.Match(ctx, req.Name, entities, req.Country)
	if err != nil {
		return models.ScreeningResult{}, errors.Wrap(err, "error matching the screened name")
	}

	breakdown, err := usecase.scorer.Score(matches, req.MediaSignals, req.PepFlag, usecase.clock())
	if err != nil {
		return models.ScreeningResult{}, errors.Wrap(err, "error scoring the screening")
	}

	record := models.NewScreeningAuditRecord(req, breakdown)
	if err := usecase.auditLogger.LogScreening(ctx, record); err != nil {
		return models.ScreeningResult{}, errors.Wrapf(err, "could not audit screening %s", record.Id)
	}

	span.SetAttributes(
		attribute.String("risk_level", breakdown.RiskLevel.String()),
		attribute.Int("matches", len(breakdown.Matches)),
	)
	utils.MetricScreeningCount.WithLabelValues(breakdown.RiskLevel.String()).Inc()
	utils.MetricScreeningLatency.Observe(time.Since(start).Seconds())
	utils.MetricScreeningMatches.Observe(float64(len(breakdown.Matches)))

	logger.InfoContext(ctx, fmt.Sprintf("screening %s completed with risk level %s", record.Id, breakdown.RiskLevel),
		"screening_id", record.Id.String(),
		"risk_score", breakdown.CompositeScore.StringFixed(models.ScorePrecision),
		"risk_level", breakdown.RiskLevel.String(),
		"matches", len(breakdown.Matches),
		"media_signals", len(breakdown.MediaSignals),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return models.ScreeningResult{Request: req, Breakdown: breakdown}, nil
}

// ScreenBatch screens every request against the same entities. Results keep the order of
// the requests; the first failing screening fails the whole batch.
func (usecase ScreeningUsecase) ScreenBatch(
	ctx context.Context,
	entities []models.ScreeningEntity,
	reqs []models.ScreeningRequest,
) ([]models.ScreeningResult, error) {
	results := make([]models.ScreeningResult, len(reqs))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(usecase.maxConcurrency)

	for i, req := range reqs {
		group.Go(func() error {
			select {
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), fmt.Sprintf(
					"context cancelled before screening request %d", i))
			default:
			}

			result, err := usecase.Screen(ctx, entities, req)
			if err != nil {
				return errors.Wrapf(err, "error screening request %d", i)
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
