package utils

import (
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/marble-screening/models"
)

// Unset or empty variables yield the default value. Values that cannot be parsed are
// reported as models.ConfigurationError.

func GetIntEnv(envVarName string, defaultValue int) (int, error) {
	envValue, ok := os.LookupEnv(envVarName)
	if !ok || envValue == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(strings.TrimSpace(envValue))
	if err != nil {
		return 0, errors.Wrapf(models.ConfigurationError,
			"environment variable %s is not valid: '%s' is not an integer", envVarName, envValue)
	}
	return intValue, nil
}

func GetFloatEnv(envVarName string, defaultValue float64) (float64, error) {
	envValue, ok := os.LookupEnv(envVarName)
	if !ok || envValue == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(strings.TrimSpace(envValue), 64)
	if err != nil {
		return 0, errors.Wrapf(models.ConfigurationError,
			"environment variable %s is not valid: '%s' is not a number", envVarName, envValue)
	}
	return floatValue, nil
}

func GetStringEnv(envVarName string, defaultValue string) string {
	envValue, ok := os.LookupEnv(envVarName)
	if !ok || envValue == "" {
		return defaultValue
	}
	return envValue
}

// GetStringListEnv reads a comma separated list, dropping blank items.
func GetStringListEnv(envVarName string, defaultValue []string) []string {
	envValue, ok := os.LookupEnv(envVarName)
	if !ok || envValue == "" {
		return defaultValue
	}
	items := make([]string, 0)
	for _, item := range strings.Split(envValue, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
