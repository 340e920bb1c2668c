package models

import (
	"strings"

	dErrors "podium/pkg/domain-errors"
)

// Season distinguishes Summer and Winter Games.
type Season string

const (
	SeasonSummer Season = "Summer"
	SeasonWinter Season = "Winter"
)

// ParseSeason accepts the canonical names in any case plus the Spanish
// labels used by the source dashboards.
func ParseSeason(raw string) (Season, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "summer", "verano":
		return SeasonSummer, nil
	case "winter", "invierno":
		return SeasonWinter, nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown season %q", raw)
}

// Gender is the competition category of an athlete.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

var genderAliases = map[string]Gender{
	"m":      GenderMale,
	"male":   GenderMale,
	"men":    GenderMale,
	"man":    GenderMale,
	"h":      GenderMale,
	"hombre": GenderMale,
	"f":      GenderFemale,
	"female": GenderFemale,
	"women":  GenderFemale,
	"woman":  GenderFemale,
	"mujer":  GenderFemale,
}

func ParseGender(raw string) (Gender, error) {
	if g, ok := genderAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return g, nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown gender %q", raw)
}

// Medal is the podium result of an entry; the zero value means no medal.
type Medal string

const (
	MedalNone   Medal = ""
	MedalGold   Medal = "Gold"
	MedalSilver Medal = "Silver"
	MedalBronze Medal = "Bronze"
)

// Medals lists podium medals in rank order.
var Medals = []Medal{MedalGold, MedalSilver, MedalBronze}

// IsWon reports whether the entry reached the podium.
func (m Medal) IsWon() bool {
	return m == MedalGold || m == MedalSilver || m == MedalBronze
}

// ParseMedal maps placeholders such as "No Medal" or "NA" to MedalNone.
func ParseMedal(raw string) (Medal, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gold", "oro", "g":
		return MedalGold, nil
	case "silver", "plata", "s":
		return MedalSilver, nil
	case "bronze", "bronce", "b":
		return MedalBronze, nil
	case "", "no medal", "none", "na", "nan", "-":
		return MedalNone, nil
	}
	return MedalNone, dErrors.Newf(dErrors.CodeValidation, "unknown medal %q", raw)
}
