package models

import "strings"

type ScreeningEntityType int

const (
	ScreeningEntityTypeIndividual ScreeningEntityType = iota
	ScreeningEntityTypeOrganization
	ScreeningEntityTypeVessel
	ScreeningEntityTypeAircraft
	ScreeningEntityTypeUnknown
)

func ScreeningEntityTypeFrom(s string) ScreeningEntityType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "individual":
		return ScreeningEntityTypeIndividual
	case "entity", "organization":
		return ScreeningEntityTypeOrganization
	case "vessel":
		return ScreeningEntityTypeVessel
	case "aircraft":
		return ScreeningEntityTypeAircraft
	}

	return ScreeningEntityTypeUnknown
}

func (t ScreeningEntityType) String() string {
	switch t {
	case ScreeningEntityTypeIndividual:
		return "individual"
	case ScreeningEntityTypeOrganization:
		return "organization"
	case ScreeningEntityTypeVessel:
		return "vessel"
	case ScreeningEntityTypeAircraft:
		return "aircraft"
	}

	return "unknown"
}

// ScreeningEntity is one sanctioned party as handed over by the list ingestion. The
// screening core only reads it.
type ScreeningEntity struct {
	Id       string
	Name     string
	Aliases  []string
	Country  string
	Programs []string
	Type     ScreeningEntityType
}

// AllNames returns the canonical name followed by the aliases, in declaration order.
func (e ScreeningEntity) AllNames() []string {
	names := make([]string, 0, len(e.Aliases)+1)
	names = append(names, e.Name)
	return append(names, e.Aliases...)
}

func (e ScreeningEntity) HasCountry() bool {
	return strings.TrimSpace(e.Country) != ""
}
