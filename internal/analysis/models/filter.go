package models

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	athlete "podium/internal/athlete/models"
	dErrors "podium/pkg/domain-errors"
	pstrings "podium/pkg/platform/strings"
)

// Filter narrows the entries an analysis runs over. Zero fields match
// everything.
type Filter struct {
	YearFrom        int              `json:"year_from,omitempty"`
	YearTo          int              `json:"year_to,omitempty"`
	Season          athlete.Season   `json:"season,omitempty"`
	NOC             string           `json:"noc,omitempty"`
	Medal           string           `json:"medal,omitempty"`
	Genders         []athlete.Gender `json:"genders,omitempty"`
	DisciplineGroup string           `json:"discipline_group,omitempty"`
	Discipline      string           `json:"discipline,omitempty"`
}

// Medal filter values besides the concrete medals.
const (
	MedalAny  = ""
	MedalWon  = "won"
	MedalNone = "none"
)

// ParseFilter reads filter fields from query parameters and validates them.
func ParseFilter(q url.Values) (Filter, error) {
	var f Filter
	var err error
	if f.YearFrom, err = intParam(q, "year_from"); err != nil {
		return Filter{}, err
	}
	if f.YearTo, err = intParam(q, "year_to"); err != nil {
		return Filter{}, err
	}
	if raw := strings.TrimSpace(q.Get("season")); raw != "" {
		if f.Season, err = athlete.ParseSeason(raw); err != nil {
			return Filter{}, err
		}
	}
	f.NOC = strings.ToUpper(strings.TrimSpace(q.Get("noc")))
	f.Medal = strings.TrimSpace(q.Get("medal"))
	for _, raw := range pstrings.SplitList(q["gender"]) {
		g, err := athlete.ParseGender(raw)
		if err != nil {
			return Filter{}, err
		}
		f.Genders = append(f.Genders, g)
	}
	f.DisciplineGroup = strings.TrimSpace(q.Get("discipline_group"))
	f.Discipline = strings.TrimSpace(q.Get("discipline"))
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func intParam(q url.Values, name string) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.Newf(dErrors.CodeValidation, "%s must be an integer", name)
	}
	return v, nil
}

// Normalize canonicalizes the medal value and sorts and dedupes genders so
// equivalent filters produce the same key.
func (f Filter) Normalize() Filter {
	switch strings.ToLower(f.Medal) {
	case "", "all", "any":
		f.Medal = MedalAny
	case MedalWon, "medalists":
		f.Medal = MedalWon
	default:
		if m, err := athlete.ParseMedal(f.Medal); err == nil {
			if m == athlete.MedalNone {
				f.Medal = MedalNone
			} else {
				f.Medal = string(m)
			}
		}
	}
	if len(f.Genders) > 0 {
		seen := make(map[athlete.Gender]bool, len(f.Genders))
		out := make([]athlete.Gender, 0, len(f.Genders))
		for _, g := range f.Genders {
			if !seen[g] {
				seen[g] = true
				out = append(out, g)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
		f.Genders = out
	}
	return f
}

// Validate rejects inverted year ranges and unknown medal values.
func (f Filter) Validate() error {
	if f.YearFrom < 0 || f.YearTo < 0 {
		return dErrors.New(dErrors.CodeValidation, "years must not be negative")
	}
	if f.YearFrom > 0 && f.YearTo > 0 && f.YearFrom > f.YearTo {
		return dErrors.Newf(dErrors.CodeValidation, "year_from %d is after year_to %d", f.YearFrom, f.YearTo)
	}
	switch f.Medal {
	case MedalAny, MedalWon, MedalNone,
		string(athlete.MedalGold), string(athlete.MedalSilver), string(athlete.MedalBronze):
	default:
		return dErrors.Newf(dErrors.CodeValidation, "unknown medal filter %q", f.Medal)
	}
	return nil
}

// Match reports whether e passes every set field.
func (f Filter) Match(e *athlete.Entry) bool {
	if f.YearFrom > 0 && e.Year < f.YearFrom {
		return false
	}
	if f.YearTo > 0 && e.Year > f.YearTo {
		return false
	}
	if f.Season != "" && e.Season != f.Season {
		return false
	}
	if f.NOC != "" && e.NOC != f.NOC {
		return false
	}
	switch f.Medal {
	case MedalAny:
	case MedalWon:
		if !e.Medal.IsWon() {
			return false
		}
	case MedalNone:
		if e.Medal.IsWon() {
			return false
		}
	default:
		if string(e.Medal) != f.Medal {
			return false
		}
	}
	if len(f.Genders) > 0 && !containsGender(f.Genders, e.Gender) {
		return false
	}
	if f.DisciplineGroup != "" && !strings.EqualFold(e.DisciplineGroup, f.DisciplineGroup) {
		return false
	}
	if f.Discipline != "" && !strings.EqualFold(e.Discipline, f.Discipline) {
		return false
	}
	return true
}

func containsGender(gs []athlete.Gender, g athlete.Gender) bool {
	for _, x := range gs {
		if x == g {
			return true
		}
	}
	return false
}

// Apply returns the matching entries in input order.
func (f Filter) Apply(entries []athlete.Entry) []athlete.Entry {
	out := make([]athlete.Entry, 0, len(entries))
	for i := range entries {
		if f.Match(&entries[i]) {
			out = append(out, entries[i])
		}
	}
	return out
}

// Key renders the normalized filter as a stable cache key fragment.
func (f Filter) Key() string {
	genders := make([]string, len(f.Genders))
	for i, g := range f.Genders {
		genders[i] = string(g)
	}
	return strings.Join([]string{
		"yf=" + strconv.Itoa(f.YearFrom),
		"yt=" + strconv.Itoa(f.YearTo),
		"s=" + string(f.Season),
		"n=" + f.NOC,
		"m=" + f.Medal,
		"g=" + strings.Join(genders, ","),
		"dg=" + strings.ToLower(f.DisciplineGroup),
		"d=" + strings.ToLower(f.Discipline),
	}, "&")
}
