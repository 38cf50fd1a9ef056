package infra

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/checkmarble/marble-screening/models"
	"github.com/checkmarble/marble-screening/utils"
)

// ScreeningConfigFromEnv reads the screening configuration from SCREENING_* environment
// variables, over the defaults. The result is validated.
func ScreeningConfigFromEnv() (models.ScreeningConfig, error) {
	config := models.DefaultScreeningConfig()
	var err error

	intVars := []struct {
		name   string
		target *int
	}{
		{"SCREENING_MATCH_FLOOR", &config.Matching.Floor},
		{"SCREENING_MIN_TOKEN_LENGTH", &config.Matching.MinTokenLength},
		{"SCREENING_HIGH_CONFIDENCE", &config.Matching.HighConfidence},
		{"SCREENING_MEDIUM_CONFIDENCE", &config.Matching.MediumConfidence},
		{"SCREENING_MAX_CONCURRENCY", &config.Matching.MaxConcurrency},
		{"SCREENING_MAX_RESULTS", &config.Matching.MaxResults},
	}
	for _, v := range intVars {
		if *v.target, err = utils.GetIntEnv(v.name, *v.target); err != nil {
			return models.ScreeningConfig{}, err
		}
	}

	floatVars := []struct {
		name   string
		target *float64
	}{
		{"SCREENING_WEIGHT_SANCTIONS", &config.Scoring.Weights.Sanctions},
		{"SCREENING_WEIGHT_MEDIA", &config.Scoring.Weights.Media},
		{"SCREENING_WEIGHT_PEP", &config.Scoring.Weights.Pep},
		{"SCREENING_THRESHOLD_HIGH", &config.Scoring.Thresholds.High},
		{"SCREENING_THRESHOLD_MEDIUM", &config.Scoring.Thresholds.Medium},
		{"SCREENING_DECAY_RATE", &config.Scoring.DecayRate},
		{"SCREENING_UNMENTIONED_FACTOR", &config.Scoring.UnmentionedFactor},
	}
	for _, v := range floatVars {
		if *v.target, err = utils.GetFloatEnv(v.name, *v.target); err != nil {
			return models.ScreeningConfig{}, err
		}
	}

	config.Matching.StopTokens = utils.GetStringListEnv("SCREENING_STOP_TOKENS", config.Matching.StopTokens)

	for _, tag := range models.MediaTags {
		weight, err := utils.GetFloatEnv("SCREENING_TAG_WEIGHT_"+strings.ToUpper(tag.String()), config.Scoring.TagWeights[tag])
		if err != nil {
			return models.ScreeningConfig{}, err
		}
		config.Scoring.TagWeights[tag] = weight
	}

	if err := config.Validate(); err != nil {
		return models.ScreeningConfig{}, errors.Wrap(err, "invalid screening configuration in environment")
	}
	return config, nil
}

type screeningConfigFile struct {
	Matching *struct {
		Floor            *int     `yaml:"floor"`
		MinTokenLength   *int     `yaml:"min_token_length"`
		StopTokens       []string `yaml:"stop_tokens"`
		HighConfidence   *int     `yaml:"high_confidence"`
		MediumConfidence *int     `yaml:"medium_confidence"`
		MaxConcurrency   *int     `yaml:"max_concurrency"`
		MaxResults       *int     `yaml:"max_results"`
	} `yaml:"matching"`
	Scoring *struct {
		Weights *struct {
			Sanctions *float64 `yaml:"sanctions"`
			Media     *float64 `yaml:"media"`
			Pep       *float64 `yaml:"pep"`
		} `yaml:"weights"`
		Thresholds *struct {
			High   *float64 `yaml:"high"`
			Medium *float64 `yaml:"medium"`
		} `yaml:"thresholds"`
		DecayRate         *float64           `yaml:"decay_rate"`
		TagWeights        map[string]float64 `yaml:"tag_weights"`
		UnmentionedFactor *float64           `yaml:"unmentioned_factor"`
	} `yaml:"scoring"`
}

// LoadScreeningConfigFile reads a YAML screening configuration. Keys absent from the file
// keep their default value. The result is validated.
func LoadScreeningConfigFile(path string) (models.ScreeningConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return models.ScreeningConfig{}, errors.Wrapf(err, "could not read screening configuration file %s", path)
	}
	return ParseScreeningConfig(content)
}

func ParseScreeningConfig(content []byte) (models.ScreeningConfig, error) {
	var file screeningConfigFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return models.ScreeningConfig{}, errors.Wrapf(models.ConfigurationError,
			"screening configuration is not valid yaml: %s", err.Error())
	}

	config := models.DefaultScreeningConfig()
	if m := file.Matching; m != nil {
		setIfPresent(&config.Matching.Floor, m.Floor)
		setIfPresent(&config.Matching.MinTokenLength, m.MinTokenLength)
		setIfPresent(&config.Matching.HighConfidence, m.HighConfidence)
		setIfPresent(&config.Matching.MediumConfidence, m.MediumConfidence)
		setIfPresent(&config.Matching.MaxConcurrency, m.MaxConcurrency)
		setIfPresent(&config.Matching.MaxResults, m.MaxResults)
		if m.StopTokens != nil {
			config.Matching.StopTokens = m.StopTokens
		}
	}
	if s := file.Scoring; s != nil {
		if w := s.Weights; w != nil {
			setIfPresent(&config.Scoring.Weights.Sanctions, w.Sanctions)
			setIfPresent(&config.Scoring.Weights.Media, w.Media)
			setIfPresent(&config.Scoring.Weights.Pep, w.Pep)
		}
		if th := s.Thresholds; th != nil {
			setIfPresent(&config.Scoring.Thresholds.High, th.High)
			setIfPresent(&config.Scoring.Thresholds.Medium, th.Medium)
		}
		setIfPresent(&config.Scoring.DecayRate, s.DecayRate)
		setIfPresent(&config.Scoring.UnmentionedFactor, s.UnmentionedFactor)
		for name, weight := range s.TagWeights {
			tag := models.MediaTagFrom(name)
			if tag == models.MediaTagUnknown {
				return models.ScreeningConfig{}, errors.Wrapf(models.ConfigurationError,
					"unknown media tag %q in tag_weights", name)
			}
			config.Scoring.TagWeights[tag] = weight
		}
	}

	if err := config.Validate(); err != nil {
		return models.ScreeningConfig{}, errors.Wrap(err, "invalid screening configuration file")
	}
	return config, nil
}

func setIfPresent[T any](target *T, value *T) {
	if value != nil {
		*target = *value
	}
}

