package pure_utils

import (
	"strings"
	"sync"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/biter777/countries"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/checkmarble/marble-screening/models"
)

const (
	FuzzyCountryMatchThreshold = 0.85
	countryCacheSize           = 1000
	countryCacheTTL            = time.Hour

	// AnyCountry disables the country filter
	AnyCountry = "ANY"
)

var (
	countryCache     *expirable.LRU[string, string]
	countryCacheOnce sync.Once

	countryNames     []countryNameEntry
	countryNamesOnce sync.Once
)

type countryNameEntry struct {
	lowerName string
	country   countries.CountryCode
}

func getCountryCache() *expirable.LRU[string, string] {
	countryCacheOnce.Do(func() {
		countryCache = expirable.NewLRU[string, string](countryCacheSize, nil, countryCacheTTL)
	})
	return countryCache
}

func getCountryNames() []countryNameEntry {
	countryNamesOnce.Do(func() {
		all := countries.All()
		countryNames = make([]countryNameEntry, 0, len(all))
		for _, c := range all {
			if c == countries.Unknown {
				continue
			}
			countryNames = append(countryNames, countryNameEntry{
				lowerName: strings.ToLower(c.Info().Name),
				country:   c,
			})
		}
	})
	return countryNames
}

// CountryToAlpha2 resolves a country name, alpha-2 or alpha-3 code to its ISO 3166-1
// alpha-2 code. SDN style inverted names ("KOREA, NORTH") and typos are resolved with a
// fuzzy fallback. The upper cased input is returned when nothing matches.
//
//	CountryToAlpha2("Russia")       // "RU"
//	CountryToAlpha2("RUS")          // "RU"
//	CountryToAlpha2("Frence")       // "FR"
//	CountryToAlpha2("Atlantis")     // "ATLANTIS"
func CountryToAlpha2(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	if c := countries.ByName(input); c != countries.Unknown {
		return c.Alpha2()
	}

	cache := getCountryCache()
	if cached, ok := cache.Get(input); ok {
		return cached
	}

	result := ""
	if before, after, found := strings.Cut(input, ","); found {
		// "KOREA, NORTH" -> "NORTH KOREA"
		swapped := strings.TrimSpace(after) + " " + strings.TrimSpace(before)
		if c := countries.ByName(swapped); c != countries.Unknown {
			result = c.Alpha2()
		}
	}
	if result == "" {
		result = fuzzyMatchCountry(input)
	}
	if result == "" {
		result = strings.ToUpper(input)
	}

	cache.Add(input, result)
	return result
}

// MatchesCountryFilter tells whether the entity passes the country filter. An empty or
// ANY filter accepts everything, and so does an entity without a declared country.
func MatchesCountryFilter(filter string, entity models.ScreeningEntity) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" || strings.EqualFold(filter, AnyCountry) {
		return true
	}
	if !entity.HasCountry() {
		return true
	}
	return CountryToAlpha2(filter) == CountryToAlpha2(entity.Country)
}

// Jaro-Winkler suits short strings like country names
func fuzzyMatchCountry(input string) string {
	inputLower := strings.ToLower(input)
	metric := metrics.NewJaroWinkler()

	bestMatch := countries.Unknown
	highestScore := 0.0
	for _, entry := range getCountryNames() {
		score := strutil.Similarity(inputLower, entry.lowerName, metric)
		if score > highestScore {
			highestScore = score
			bestMatch = entry.country
		}
	}

	if highestScore >= FuzzyCountryMatchThreshold && bestMatch != countries.Unknown {
		return bestMatch.Alpha2()
	}
	return ""
}
