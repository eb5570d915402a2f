package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"kyc-intake/internal/engine"
	"kyc-intake/internal/kyc/kyctest"
	"kyc-intake/internal/kyc/models"
	"kyc-intake/internal/kyc/service/mocks"
	"kyc-intake/internal/platform/metrics"
	dErrors "kyc-intake/pkg/domain-errors"
	"kyc-intake/pkg/platform/audit"
	"kyc-intake/pkg/platform/sentinel"
	"kyc-intake/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	engine  *mocks.MockEngine
	auditor *mocks.MockAuditPublisher
	metrics *metrics.Metrics
	service *Service
	events  []audit.Event
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.engine = mocks.NewMockEngine(s.ctrl)
	s.auditor = mocks.NewMockAuditPublisher(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.events = nil
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e audit.Event) error {
			s.events = append(s.events, e)
			return nil
		}).AnyTimes()
	s.service = New(s.engine, "kyc-form-worker",
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(s.auditor),
		WithMetrics(s.metrics),
	)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) SetupSubTest() {
	s.events = nil
}

func (s *ServiceSuite) actions() []string {
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Action
	}
	return out
}

func (s *ServiceSuite) submissions(outcome string) float64 {
	return testutil.ToFloat64(s.metrics.Submissions.WithLabelValues(outcome))
}

const receivedIndividualForm = `{"customerType":"individual",` +
	`"individual":{"fullName":"Jane Doe","dateOfBirth":"1990-01-01","residentialAddress":"1 Main St",` +
	`"nationality":"US","usPerson":true,"ssn":"123-45-6789","idType":"driverLicense",` +
	`"driverLicense":{"number":"D1","issuingState":"CA","expirationDate":"2030-01-01"}},` +
	`"relationship":{"purpose":"personalBanking"},` +
	`"sanctions":{"sanctionedJurisdiction":false,"foreignBeneficialOwners":false,"internationalWires":false},` +
	`"sourceOfFunds":{"source":"salary"},` +
	`"ongoingMonitoring":{"thirdPartyFunding":false,"largeCashActivity":false,"foreignBeneficialOwnersOrPEPs":false},` +
	`"notes":[]}`

func (s *ServiceSuite) TestSubmit() {
	ctx := requestcontext.WithRequestID(context.Background(), "req-1")

	s.Run("completes the task with the configured worker", func() {
		s.engine.EXPECT().CompleteExternalTask(gomock.Any(), "task-1", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, req engine.CompleteRequest) (json.RawMessage, error) {
				s.Equal("kyc-form-worker", req.WorkerID)
				v, ok := req.Variables.String("fullName")
				s.True(ok)
				s.Equal("Jane Doe", v)
				_, ok = req.Variables.String("completeFormData")
				s.True(ok)
				return json.RawMessage(`{"ok":true}`), nil
			})

		res, err := s.service.Submit(ctx, models.Submission{
			TaskID:            " task-1 ",
			ProcessInstanceID: "proc-1",
			FormData:          kyctest.ValidIndividual(),
		})
		s.Require().NoError(err)
		s.Equal("task-1", res.TaskID)
		s.JSONEq(`{"ok":true}`, string(res.EngineResponse))

		s.Equal([]string{"kyc_submission_received", "kyc_task_completed"}, s.actions())
		last := s.events[1]
		s.Equal("task-1", last.TaskID)
		s.Equal("proc-1", last.ProcessInstanceID)
		s.Equal("individual", last.CustomerType)
		s.Equal("req-1", last.RequestID)
		s.Equal(1.0, s.submissions(metrics.OutcomeCompleted))
	})

	s.Run("backs up the form as it was received", func() {
		var sub models.Submission
		s.Require().NoError(json.Unmarshal([]byte(`{"taskId":"task-3","formData":`+receivedIndividualForm+`}`), &sub))

		s.engine.EXPECT().CompleteExternalTask(gomock.Any(), "task-3", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, req engine.CompleteRequest) (json.RawMessage, error) {
				backup, ok := req.Variables.String("completeFormData")
				s.True(ok)
				s.Equal(receivedIndividualForm, backup)
				return nil, nil
			})

		_, err := s.service.Submit(ctx, sub)
		s.Require().NoError(err)
	})

	s.Run("empty engine answer is a success without a body", func() {
		s.engine.EXPECT().CompleteExternalTask(gomock.Any(), "task-2", gomock.Any()).Return(nil, nil)

		res, err := s.service.Submit(ctx, models.Submission{TaskID: "task-2", FormData: kyctest.ValidEntity()})
		s.Require().NoError(err)
		s.Nil(res.EngineResponse)
	})
}

func (s *ServiceSuite) TestMalformedInput() {
	ctx := context.Background()

	cases := []struct {
		name string
		sub  models.Submission
		msg  string
	}{
		{"missing task id", models.Submission{FormData: kyctest.ValidIndividual()}, "Task ID is required"},
		{"blank task id", models.Submission{TaskID: "   ", FormData: kyctest.ValidIndividual()}, "Task ID is required"},
		{"missing form data", models.Submission{TaskID: "task-1"}, "Form data is required"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.engine.EXPECT().CompleteExternalTask(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			res, err := s.service.Submit(ctx, tc.sub)
			s.Nil(res)
			s.Require().Error(err)
			s.True(dErrors.Is(err, dErrors.CodeBadRequest))
			s.Equal(tc.msg, err.Error())
			s.Equal([]string{"kyc_submission_rejected"}, s.actions())
			s.Equal(tc.msg, s.events[0].Reason)
		})
	}
	s.Equal(3.0, s.submissions(metrics.OutcomeMalformed))
}

func (s *ServiceSuite) TestValidationFailureSkipsEngine() {
	s.engine.EXPECT().CompleteExternalTask(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	form := kyctest.ValidIndividual()
	form.CustomerType = ""

	_, err := s.service.Submit(context.Background(), models.Submission{TaskID: "task-1", FormData: form})
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeValidationFailed))

	de, ok := dErrors.As(err)
	s.Require().True(ok)
	s.Require().NotEmpty(de.Fields)
	s.Equal("customerType", de.Fields[0].Field)

	s.Equal([]string{"kyc_submission_received", "kyc_submission_rejected"}, s.actions())
	s.Contains(s.events[1].Reason, "customerType")
	s.Equal(1.0, s.submissions(metrics.OutcomeRejected))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ValidationErrors.WithLabelValues("customerType")))
}

func (s *ServiceSuite) TestValidationErrorSeriesStayBounded() {
	s.engine.EXPECT().CompleteExternalTask(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	s.Run("oversized owner list", func() {
		form := kyctest.ValidEntity()
		form.BeneficialOwnership.Owners = make([]models.Owner, 500)

		_, err := s.service.Submit(context.Background(), models.Submission{TaskID: "task-1", FormData: form})
		s.Require().Error(err)
		s.Equal(1, testutil.CollectAndCount(s.metrics.ValidationErrors))
	})

	s.Run("owner indexes share a series", func() {
		form := kyctest.ValidEntity()
		blank := models.Owner{OwnershipPercentage: models.Float(25), IDType: models.IDTypePassport,
			Passport: &models.PassportDetails{Number: "P1", IssuingCountry: "CA", ExpirationDate: "2031-01-01"}}
		form.BeneficialOwnership.Owners = []models.Owner{blank, blank, blank}

		_, err := s.service.Submit(context.Background(), models.Submission{TaskID: "task-2", FormData: form})
		s.Require().Error(err)
		s.Equal(3.0, testutil.ToFloat64(s.metrics.ValidationErrors.WithLabelValues("beneficialOwnership.owners.*.name")))
		s.Zero(testutil.ToFloat64(s.metrics.ValidationErrors.WithLabelValues("beneficialOwnership.owners.0.name")))
	})
}

func (s *ServiceSuite) TestEngineFailure() {
	cases := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name:     "rejected",
			err:      &engine.EngineError{Category: engine.CategoryRejected, StatusCode: 404, Body: "task not found"},
			sentinel: sentinel.ErrRejected,
			message:  "engine error: 404 - task not found",
		},
		{
			name:     "unreachable",
			err:      &engine.EngineError{Category: engine.CategoryUnreachable, Underlying: errors.New("connection refused")},
			sentinel: sentinel.ErrUnavailable,
			message:  "engine unreachable: connection refused",
		},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.engine.EXPECT().CompleteExternalTask(gomock.Any(), "task-1", gomock.Any()).Return(nil, tc.err).Times(1)

			res, err := s.service.Submit(context.Background(), models.Submission{TaskID: "task-1", FormData: kyctest.ValidIndividual()})
			s.Nil(res)
			s.Require().Error(err)
			s.True(dErrors.Is(err, dErrors.CodeBadGateway))
			s.ErrorIs(err, tc.sentinel)

			var engErr *engine.EngineError
			s.Require().ErrorAs(err, &engErr)
			s.Equal(tc.message, engErr.Error())

			s.Equal([]string{"kyc_submission_received", "kyc_task_failed"}, s.actions())
			s.Equal(tc.message, s.events[1].Reason)
		})
	}
	s.Equal(2.0, s.submissions(metrics.OutcomeFailed))
}

func TestSubmitWithoutOptionalCollaborators(t *testing.T) {
	ctrl := gomock.NewController(t)
	eng := mocks.NewMockEngine(ctrl)
	eng.EXPECT().CompleteExternalTask(gomock.Any(), "task-1", gomock.Any()).Return(json.RawMessage(`{}`), nil)

	svc := New(eng, "worker")
	res, err := svc.Submit(context.Background(), models.Submission{TaskID: "task-1", FormData: kyctest.ValidEntity()})
	require.NoError(t, err)
	assert.Equal(t, "task-1", res.TaskID)
}

func TestAuditFailureDoesNotFailSubmission(t *testing.T) {
	ctrl := gomock.NewController(t)
	eng := mocks.NewMockEngine(ctrl)
	pub := mocks.NewMockAuditPublisher(ctrl)
	pub.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("buffer full")).Times(2)
	eng.EXPECT().CompleteExternalTask(gomock.Any(), "task-1", gomock.Any()).Return(nil, nil)

	svc := New(eng, "worker", WithAuditPublisher(pub))
	_, err := svc.Submit(context.Background(), models.Submission{TaskID: "task-1", FormData: kyctest.ValidIndividual()})
	require.NoError(t, err)
}
