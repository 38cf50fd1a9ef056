package usecases

import (
	"time"

	"github.com/checkmarble/marble-screening/models"
	"github.com/checkmarble/marble-screening/usecases/media_tagging"
	"github.com/checkmarble/marble-screening/usecases/name_matching"
	"github.com/checkmarble/marble-screening/usecases/risk_scoring"
)

type Usecases struct {
	config        models.ScreeningConfig
	auditLogger   ScreeningAuditLogger
	tagClassifier media_tagging.TagClassifier
	clock         func() time.Time
}

type Option func(*options)

func WithAuditLogger(auditLogger ScreeningAuditLogger) Option {
	return func(o *options) {
		o.auditLogger = auditLogger
	}
}

func WithTagClassifier(classifier media_tagging.TagClassifier) Option {
	return func(o *options) {
		o.tagClassifier = classifier
	}
}

// WithClock replaces the reference time used for the media recency decay.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

type options struct {
	auditLogger   ScreeningAuditLogger
	tagClassifier media_tagging.TagClassifier
	clock         func() time.Time
}

func newUsecasesWithOptions(config models.ScreeningConfig, o *options) (Usecases, error) {
	if o.auditLogger == nil {
		o.auditLogger = NoopScreeningAuditLogger{}
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	if o.tagClassifier == nil {
		classifier, err := media_tagging.NewKeywordClassifier(media_tagging.DefaultKeywords)
		if err != nil {
			return Usecases{}, err
		}
		o.tagClassifier = classifier
	}
	return Usecases{
		config:        config,
		auditLogger:   o.auditLogger,
		tagClassifier: o.tagClassifier,
		clock:         o.clock,
	}, nil
}

func NewUsecases(config models.ScreeningConfig, opts ...Option) (Usecases, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return newUsecasesWithOptions(config, o)
}

func (usecases *Usecases) NewNameMatcher() (*name_matching.Matcher, error) {
	return name_matching.NewMatcher(usecases.config)
}

func (usecases *Usecases) NewRiskScorer() (risk_scoring.Scorer, error) {
	return risk_scoring.NewScorer(usecases.config)
}

func (usecases *Usecases) NewScreeningUsecase() (ScreeningUsecase, error) {
	matcher, err := usecases.NewNameMatcher()
	if err != nil {
		return ScreeningUsecase{}, err
	}
	scorer, err := usecases.NewRiskScorer()
	if err != nil {
		return ScreeningUsecase{}, err
	}
	return ScreeningUsecase{
		matcher:        matcher,
		scorer:         scorer,
		auditLogger:    usecases.auditLogger,
		clock:          usecases.clock,
		maxConcurrency: usecases.config.Matching.MaxConcurrency,
	}, nil
}

func (usecases *Usecases) NewMediaSignalUsecase() MediaSignalUsecase {
	return MediaSignalUsecase{
		classifier: usecases.tagClassifier,
		config:     usecases.config.Matching,
	}
}
