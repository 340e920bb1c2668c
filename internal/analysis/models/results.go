// Package models holds analysis filters, parameters and result shapes.
package models

import (
	"strings"

	athlete "podium/internal/athlete/models"
	dErrors "podium/pkg/domain-errors"
)

// Overview counts the headline figures of a filtered set.
type Overview struct {
	Athletes    int `json:"athletes"`
	NOCs        int `json:"nocs"`
	Editions    int `json:"editions"`
	Disciplines int `json:"disciplines"`
	Entries     int `json:"entries"`
	Medals      int `json:"medals"`
}

type GenderCount struct {
	Year   int            `json:"year"`
	Gender athlete.Gender `json:"gender"`
	Count  int            `json:"count"`
}

type DisciplineCount struct {
	Year        int `json:"year"`
	Disciplines int `json:"disciplines"`
}

// MedalRow is one NOC line of the medal table.
type MedalRow struct {
	NOC           string `json:"noc"`
	TotalAthletes int    `json:"total_athletes"`
	TotalMedals   int    `json:"total_medals"`
	Gold          int    `json:"gold"`
	Silver        int    `json:"silver"`
	Bronze        int    `json:"bronze"`
}

type MedalMapPoint struct {
	MedalRow
	Country   string  `json:"country"`
	Capital   string  `json:"capital,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// BoxStats describes one box of a box plot.
type BoxStats struct {
	Group    string    `json:"group"`
	Count    int       `json:"count"`
	Min      float64   `json:"min"`
	Q1       float64   `json:"q1"`
	Median   float64   `json:"median"`
	Q3       float64   `json:"q3"`
	Max      float64   `json:"max"`
	Mean     float64   `json:"mean"`
	Outliers []float64 `json:"outliers"`
}

type Distribution struct {
	Metric  athlete.Metric `json:"metric"`
	GroupBy GroupBy        `json:"group_by"`
	Groups  []BoxStats     `json:"groups"`
}

type Point struct {
	Name       string        `json:"name"`
	HeightCm   float64       `json:"height_cm"`
	WeightKg   float64       `json:"weight_kg"`
	Age        *float64      `json:"age,omitempty"`
	NOC        string        `json:"noc"`
	Discipline string        `json:"discipline,omitempty"`
	Medal      athlete.Medal `json:"medal,omitempty"`
	Group      string        `json:"group,omitempty"`
}

type HeightWeight struct {
	ColorBy   GroupBy `json:"color_by"`
	Total     int     `json:"total"`
	Truncated bool    `json:"truncated"`
	Points    []Point `json:"points"`
}

// TreeNode is one discipline inside its group.
type TreeNode struct {
	Group        string  `json:"group"`
	Discipline   string  `json:"discipline"`
	Athletes     int     `json:"athletes"`
	ShareOfGroup float64 `json:"share_of_group"`
	ShareOfTotal float64 `json:"share_of_total"`
}

type DisciplineAge struct {
	Discipline string  `json:"discipline"`
	Athletes   int     `json:"athletes"`
	MeanAge    float64 `json:"mean_age"`
}

type GroupAge struct {
	DisciplineGroup string         `json:"discipline_group"`
	Gender          athlete.Gender `json:"gender"`
	BoxStats
}

type TrendPoint struct {
	Year   int            `json:"year"`
	Season athlete.Season `json:"type"`
	Gold   int            `json:"gold"`
	Silver int            `json:"silver"`
	Bronze int            `json:"bronze"`
	Total  int            `json:"total"`
}

type MedalTrend struct {
	NOC    string       `json:"noc"`
	Points []TrendPoint `json:"points"`
}

type FilterOptions struct {
	MinYear          int              `json:"min_year"`
	MaxYear          int              `json:"max_year"`
	Seasons          []athlete.Season `json:"seasons"`
	Genders          []athlete.Gender `json:"genders"`
	NOCs             []string         `json:"nocs"`
	DisciplineGroups []string         `json:"discipline_groups"`
	Disciplines      []string         `json:"disciplines"`
}

// MedalSort is the medal table ordering column.
type MedalSort string

const (
	SortTotalMedals   MedalSort = "total_medals"
	SortTotalAthletes MedalSort = "total_athletes"
	SortGold          MedalSort = "gold"
	SortSilver        MedalSort = "silver"
	SortBronze        MedalSort = "bronze"
)

func ParseMedalSort(raw string) (MedalSort, error) {
	s := MedalSort(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case "":
		return SortTotalMedals, nil
	case SortTotalMedals, SortTotalAthletes, SortGold, SortSilver, SortBronze:
		return s, nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown sort_by %q", raw)
}

// GroupBy selects the categorical split of a distribution or scatter.
type GroupBy string

const (
	GroupNone   GroupBy = "none"
	GroupGender GroupBy = "gender"
	GroupMedal  GroupBy = "medal"
	GroupSeason GroupBy = "type"
)

func ParseGroupBy(raw string) (GroupBy, error) {
	g := GroupBy(strings.ToLower(strings.TrimSpace(raw)))
	switch g {
	case "":
		return GroupNone, nil
	case GroupNone, GroupGender, GroupMedal, GroupSeason:
		return g, nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown grouping %q", raw)
}

// Value returns the group label of e, or false when e has no value for it.
func (g GroupBy) Value(e *athlete.Entry) (string, bool) {
	switch g {
	case GroupGender:
		return string(e.Gender), e.Gender != ""
	case GroupMedal:
		if e.Medal.IsWon() {
			return string(e.Medal), true
		}
		return "No Medal", true
	case GroupSeason:
		return string(e.Season), e.Season != ""
	}
	return "all", true
}

// Bounded list sizes.
const (
	DefaultMedalTop      = 15
	MinMedalTop          = 5
	MaxMedalTop          = 50
	DefaultPointLimit    = 5000
	MaxPointLimit        = 50000
	DefaultDisciplineTop = 20
)
