package handler

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"podium/internal/analysis/models"
	"podium/internal/analysis/service"
	athlete "podium/internal/athlete/models"
	dErrors "podium/pkg/domain-errors"
	"podium/pkg/testutil"
)

type stubSource struct {
	snapshot *athlete.Snapshot
}

func (s stubSource) Current(context.Context) (*athlete.Snapshot, error) {
	if s.snapshot == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "no dataset loaded")
	}
	return s.snapshot, nil
}

func age(v float64) *float64 { return &v }

func snapshot() *athlete.Snapshot {
	return &athlete.Snapshot{
		ID: uuid.New(),
		Entries: []athlete.Entry{
			{Name: "Ana", Gender: "F", Age: age(22), NOC: "ESP", Year: 2012, Season: athlete.SeasonSummer, Discipline: "Swimming", DisciplineGroup: "Aquatics", Medal: athlete.MedalGold},
			{Name: "Luc", Gender: "M", Age: age(30), NOC: "FRA", Year: 2016, Season: athlete.SeasonSummer, Discipline: "Diving", DisciplineGroup: "Aquatics"},
		},
		Coordinates: []athlete.Coordinate{{NOC: "ESP", Country: "Spain", Latitude: 40.4, Longitude: -3.7}},
	}
}

type HandlerSuite struct {
	suite.Suite
	router chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.router = s.newRouter(stubSource{snapshot: snapshot()})
}

func (s *HandlerSuite) newRouter(src service.SnapshotSource) chi.Router {
	svc, err := service.New(src)
	s.Require().NoError(err)
	r := chi.NewRouter()
	New(svc, slog.New(slog.DiscardHandler)).Register(r)
	return r
}

func (s *HandlerSuite) get(path string) (int, []byte) {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, path))
	return rr.Code, rr.Body.Bytes()
}

func (s *HandlerSuite) TestOverview() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/analysis/overview?year_from=2012&year_to=2012"))
	s.Equal(http.StatusOK, rr.Code)

	got := testutil.UnmarshalResponse[models.Overview](s.T(), rr)
	s.Equal(1, got.Athletes)
	s.Equal(1, got.Medals)
}

func (s *HandlerSuite) TestMedals() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/analysis/medals?sort_by=gold&top=5"))
	s.Equal(http.StatusOK, rr.Code)

	rows := testutil.UnmarshalResponse[[]models.MedalRow](s.T(), rr)
	s.Require().Len(*rows, 2)
	s.Equal("ESP", (*rows)[0].NOC)
}

func (s *HandlerSuite) TestMedalTrend() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/analysis/medal-trend/esp"))
	s.Equal(http.StatusOK, rr.Code)

	trend := testutil.UnmarshalResponse[models.MedalTrend](s.T(), rr)
	s.Equal("ESP", trend.NOC)
	s.Len(trend.Points, 1)
}

func (s *HandlerSuite) TestEveryRouteAnswers() {
	for _, path := range []string{
		"/analysis/filters",
		"/analysis/participation",
		"/analysis/disciplines",
		"/analysis/medal-map",
		"/analysis/distribution?metric=age&group_by=gender",
		"/analysis/height-weight?color_by=medal&limit=10",
		"/analysis/discipline-tree",
		"/analysis/age-by-discipline?top=5",
		"/analysis/age-by-group",
	} {
		code, body := s.get(path)
		s.Equal(http.StatusOK, code, "%s: %s", path, body)
	}
}

func (s *HandlerSuite) TestValidationErrors() {
	for _, path := range []string{
		"/analysis/overview?year_from=2016&year_to=2012",
		"/analysis/medals?top=4",
		"/analysis/medals?sort_by=name",
		"/analysis/distribution?metric=shoe_size",
		"/analysis/distribution?group_by=city",
		"/analysis/height-weight?limit=0",
		"/analysis/medal-trend/spain",
	} {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, path))
		s.Equal(http.StatusBadRequest, rr.Code, path)
		body := testutil.UnmarshalErrorResponse(s.T(), rr)
		s.Equal(string(dErrors.CodeValidation), body.Error, path)
	}
}

func (s *HandlerSuite) TestNoDatasetLoaded() {
	router := s.newRouter(stubSource{})
	rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/analysis/overview"))
	s.Equal(http.StatusNotFound, rr.Code)
}
