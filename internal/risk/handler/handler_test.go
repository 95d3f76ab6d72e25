package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"riskprofile/internal/risk"
	"riskprofile/internal/risk/handler/mocks"
	dErrors "riskprofile/pkg/domain-errors"
	"riskprofile/pkg/testutil"
)

const referenceBody = `{"age":35,"dependents":2,"houses":[{"key":1,"ownership_status":"owned"},{"key":2,"ownership_status":"mortgaged"}],"income":0,"marital_status":"married","risk_questions":[0,1,0],"vehicles":[{"key":1,"year":2018}]}`

type RiskHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestRiskHandlerSuite(t *testing.T) {
	suite.Run(t, new(RiskHandlerSuite))
}

func (s *RiskHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.T().Cleanup(ctrl.Finish)
	s.service = mocks.NewMockService(ctrl)
	s.router = s.newRouter(s.service)
}

func (s *RiskHandlerSuite) newRouter(service Service) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	New(service, logger).Register(r)
	return r
}

func (s *RiskHandlerSuite) post(body string) (int, []byte, map[string]string) {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/risk_profile", body)
	rr := testutil.DoRequest(s.router, req)
	if rr.Code == http.StatusOK {
		return rr.Code, testutil.ReadBody(s.T(), rr), nil
	}
	return rr.Code, nil, testutil.UnmarshalErrorResponse(s.T(), rr)
}

func (s *RiskHandlerSuite) TestParsesProfile() {
	s.service.EXPECT().Evaluate(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, p risk.UserProfile) (*risk.RiskProfile, error) {
			s.Equal(35, p.Age)
			s.Equal(2, p.Dependents)
			s.Equal(risk.MaritalStatusMarried, p.MaritalStatus)
			s.Equal([]int{0, 1, 0}, p.RiskQuestions)
			s.Equal([]risk.Vehicle{{Key: 1, Year: 2018}}, p.Vehicles)
			s.Equal([]risk.House{
				{Key: 1, OwnershipStatus: risk.OwnershipOwned},
				{Key: 2, OwnershipStatus: risk.OwnershipMortgaged},
			}, p.Houses)
			return &risk.RiskProfile{Umbrella: risk.CategoryOutcome(risk.CategoryRegular)}, nil
		})

	status, body, _ := s.post(referenceBody)
	s.Equal(http.StatusOK, status)
	s.JSONEq(`{"umbrella":"regular"}`, string(body))
}

func (s *RiskHandlerSuite) TestRequestValidation() {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{name: "malformed json", body: `{"age":`, wantStatus: http.StatusBadRequest, wantCode: "bad_request"},
		{name: "wrong type", body: `{"age":"old"}`, wantStatus: http.StatusBadRequest, wantCode: "bad_request"},
		{name: "missing age", body: `{"dependents":0,"income":0,"marital_status":"single","risk_questions":[0,0,0],"vehicles":[],"houses":[]}`, wantStatus: http.StatusBadRequest, wantCode: "validation_error"},
		{name: "missing houses", body: `{"age":30,"dependents":0,"income":0,"marital_status":"single","risk_questions":[0,0,0],"vehicles":[]}`, wantStatus: http.StatusBadRequest, wantCode: "validation_error"},
		{name: "blank marital status", body: `{"age":30,"dependents":0,"income":0,"marital_status":"  ","risk_questions":[0,0,0],"vehicles":[],"houses":[]}`, wantStatus: http.StatusBadRequest, wantCode: "validation_error"},
		{name: "answer out of range", body: `{"age":30,"dependents":0,"income":0,"marital_status":"single","risk_questions":[0,3,0],"vehicles":[],"houses":[]}`, wantStatus: http.StatusBadRequest, wantCode: "validation_error"},
		{name: "vehicle without year", body: `{"age":30,"dependents":0,"income":0,"marital_status":"single","risk_questions":[0,0,0],"vehicles":[{"key":1}],"houses":[]}`, wantStatus: http.StatusBadRequest, wantCode: "validation_error"},
		{name: "unknown ownership", body: `{"age":30,"dependents":0,"income":0,"marital_status":"single","risk_questions":[0,0,0],"vehicles":[],"houses":[{"key":1,"ownership_status":"rented"}]}`, wantStatus: http.StatusBadRequest, wantCode: "validation_error"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			status, _, errResp := s.post(tt.body)
			s.Equal(tt.wantStatus, status)
			s.Equal(tt.wantCode, errResp["error"])
		})
	}
}

func (s *RiskHandlerSuite) TestServiceErrors() {
	s.Run("invalid profile is 422", func() {
		s.service.EXPECT().Evaluate(gomock.Any(), gomock.Any()).Return(nil,
			dErrors.Wrap(risk.ErrInvalidProfile, dErrors.CodeInvalidProfile, "vehicles[0].key must be 1, got 3"))

		status, _, errResp := s.post(referenceBody)
		s.Equal(http.StatusUnprocessableEntity, status)
		s.Equal("invalid_profile", errResp["error"])
		s.Equal("vehicles[0].key must be 1, got 3", errResp["error_description"])
	})

	s.Run("invariant violation is opaque 500", func() {
		s.service.EXPECT().Evaluate(gomock.Any(), gomock.Any()).Return(nil,
			dErrors.New(dErrors.CodeInvariantViolation, "modifier targets unknown item key 4"))

		status, _, errResp := s.post(referenceBody)
		s.Equal(http.StatusInternalServerError, status)
		s.Equal("internal_error", errResp["error"])
		s.Empty(errResp["error_description"])
	})

	s.Run("uncoded error is 500", func() {
		s.service.EXPECT().Evaluate(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

		status, _, errResp := s.post(referenceBody)
		s.Equal(http.StatusInternalServerError, status)
		s.Equal("internal_error", errResp["error"])
	})
}

func (s *RiskHandlerSuite) TestReferenceProfileEndToEnd() {
	s.router = s.newRouter(risk.NewService())

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/risk_profile", referenceBody)
	req = testutil.WithRequestTime(req, time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC))
	rr := testutil.DoRequest(s.router, req)

	s.Equal(http.StatusOK, rr.Code)
	s.Equal("application/json", rr.Header().Get("Content-Type"))
	s.JSONEq(
		`{"auto":[{"key":1,"value":"regular"}],"disability":"ineligible","home":[{"key":1,"value":"economic"},{"key":2,"value":"regular"}],"life":"regular","umbrella":"regular"}`,
		string(testutil.ReadBody(s.T(), rr)),
	)
}

func (s *RiskHandlerSuite) TestKeyMismatchEndToEnd() {
	s.router = s.newRouter(risk.NewService())

	body := `{"age":30,"dependents":0,"income":10,"marital_status":"single","risk_questions":[0,0,0],"vehicles":[{"key":2,"year":2018}],"houses":[]}`
	status, _, errResp := s.post(body)
	s.Equal(http.StatusUnprocessableEntity, status)
	s.Equal("invalid_profile", errResp["error"])
}

func (s *RiskHandlerSuite) TestOpenInputsAreEvaluated() {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "four answers and divorced",
			body: `{"age":30,"dependents":0,"income":0,"marital_status":"divorced","risk_questions":[1,1,0,1],"vehicles":[],"houses":[]}`,
			want: `{"auto":"ineligible","disability":"ineligible","home":"ineligible","life":"regular","umbrella":"ineligible"}`,
		},
		{
			name: "five answers, widowed with negative income",
			body: `{"age":45,"dependents":1,"income":-100,"marital_status":"widowed","risk_questions":[0,0,0,0,0],"vehicles":[],"houses":[{"key":1,"ownership_status":"owned"}]}`,
			want: `{"auto":"ineligible","disability":"ineligible","home":[{"key":1,"value":"regular"}],"life":"regular","umbrella":"ineligible"}`,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.router = s.newRouter(risk.NewService())

			req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/risk_profile", tt.body)
			req = testutil.WithRequestTime(req, time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC))
			rr := testutil.DoRequest(s.router, req)

			s.Equal(http.StatusOK, rr.Code)
			s.JSONEq(tt.want, string(testutil.ReadBody(s.T(), rr)))
		})
	}
}
