package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"checklist/internal/platform/metrics"
	"checklist/internal/upstream"
	"checklist/internal/vehicle/models"
	dErrors "checklist/pkg/domain-errors"
	"checklist/pkg/platform/validation"
)

type fakeLister struct {
	vehicles []upstream.Vehicle
	err      error
	calls    int
}

func (f *fakeLister) Vehicles(_ context.Context, tenant, token string) ([]upstream.Vehicle, error) {
	f.calls++
	return f.vehicles, f.err
}

type recordingReporter struct {
	errs []error
}

func (r *recordingReporter) Report(_ context.Context, err error) {
	r.errs = append(r.errs, err)
}

type ServiceSuite struct {
	suite.Suite
	lister  *fakeLister
	online  bool
	metrics *metrics.Metrics
	service *Service
	scope   models.Scope
}

func (s *ServiceSuite) SetupTest() {
	s.lister = &fakeLister{vehicles: []upstream.Vehicle{
		{ID: "v-1", LicensePlate: "XYZ9A87", Plate: "XYZ9A87", Model: "Cargo", Brand: "Ford", Year: 2018, Type: "truck"},
	}}
	s.online = true
	s.metrics = metrics.NewWith(prometheus.NewRegistry())
	s.service = New(NewUpstreamProvider(s.lister),
		WithOnline(func() bool { return s.online }),
		WithMetrics(s.metrics),
	)
	s.scope = models.Scope{ClientID: "acme", UserID: "u-1", Token: "at"}
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestOnlineServesUpstream() {
	listing, err := s.service.List(context.Background(), s.scope)

	s.Require().NoError(err)
	s.Equal(models.SourceUpstream, listing.Source)
	s.False(listing.Fallback)
	s.Require().Len(listing.Vehicles, 1)
	s.Equal("XYZ9A87", listing.Vehicles[0].LicensePlate)
	s.Equal("XYZ9A87", listing.Vehicles[0].Plate)
}

func (s *ServiceSuite) TestOfflineServesLastCachedList() {
	_, err := s.service.List(context.Background(), s.scope)
	s.Require().NoError(err)

	s.online = false
	listing, err := s.service.List(context.Background(), s.scope)

	s.Require().NoError(err)
	s.Equal(models.SourceCache, listing.Source)
	s.True(listing.Fallback)
	s.Equal("v-1", listing.Vehicles[0].ID)
	s.Equal(1, s.lister.calls, "backend not called while offline")
	s.InDelta(1, testutil.ToFloat64(s.metrics.VehicleFallbacks.WithLabelValues("cache")), 0)
}

func (s *ServiceSuite) TestUpstreamFailureFallsBackToStaticList() {
	s.lister.err = errors.New("connection refused")

	listing, err := s.service.List(context.Background(), s.scope)

	s.Require().NoError(err)
	s.Equal(models.SourceStatic, listing.Source)
	s.Len(listing.Vehicles, len(mockFleet))
	s.True(listing.Fallback)
}

func (s *ServiceSuite) TestRejectedCredentialsAreNotMasked() {
	_, err := s.service.List(context.Background(), s.scope)
	s.Require().NoError(err)

	s.lister.err = dErrors.New(dErrors.CodeUnauthorized, "token revoked")
	_, err = s.service.List(context.Background(), s.scope)

	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestMissingTenantIsNotMasked() {
	_, err := s.service.List(context.Background(), s.scope)
	s.Require().NoError(err)

	s.lister.err = dErrors.New(dErrors.CodeNotFound, "client not found")
	listing, err := s.service.List(context.Background(), s.scope)

	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Empty(listing.Vehicles)
	s.InDelta(0, testutil.ToFloat64(s.metrics.VehicleFallbacks.WithLabelValues("cache")), 0)
}

func (s *ServiceSuite) TestBackendTimeoutFallsBackToCache() {
	_, err := s.service.List(context.Background(), s.scope)
	s.Require().NoError(err)

	s.lister.err = dErrors.New(dErrors.CodeTimeout, "backend timed out")
	listing, err := s.service.List(context.Background(), s.scope)

	s.Require().NoError(err)
	s.Equal(models.SourceCache, listing.Source)
}

func (s *ServiceSuite) TestReporterSeesOnlyTransientFailures() {
	reporter := &recordingReporter{}
	svc := New(NewUpstreamProvider(s.lister), WithReporter(reporter))

	_, err := svc.List(context.Background(), s.scope)
	s.Require().NoError(err)

	unavailable := dErrors.New(dErrors.CodeUnavailable, "backend unreachable")
	s.lister.err = unavailable
	_, err = svc.List(context.Background(), s.scope)
	s.Require().NoError(err)

	s.lister.err = dErrors.New(dErrors.CodeNotFound, "client not found")
	_, err = svc.List(context.Background(), s.scope)
	s.Require().Error(err)

	s.Require().Len(reporter.errs, 3)
	s.NoError(reporter.errs[0])
	s.ErrorIs(reporter.errs[1], unavailable)
	s.NoError(reporter.errs[2], "a backend that answers is reachable")
}

func (s *ServiceSuite) TestOversizedBackendListingIsRejected() {
	s.lister.vehicles = make([]upstream.Vehicle, validation.MaxVehicles+1)

	listing, err := s.service.List(context.Background(), s.scope)

	s.Require().NoError(err)
	s.Equal(models.SourceStatic, listing.Source)
	s.True(listing.Fallback)
}

func (s *ServiceSuite) TestCacheIsScopedPerTenant() {
	_, err := s.service.List(context.Background(), s.scope)
	s.Require().NoError(err)

	s.online = false
	listing, err := s.service.List(context.Background(), models.Scope{ClientID: "other", UserID: "u-1"})

	s.Require().NoError(err)
	s.Equal(models.SourceStatic, listing.Source)
}

func (s *ServiceSuite) TestClearTenantDropsCache() {
	_, err := s.service.List(context.Background(), s.scope)
	s.Require().NoError(err)

	s.Require().NoError(s.service.ClearTenant(context.Background(), "acme", "u-1"))
	s.online = false
	listing, err := s.service.List(context.Background(), s.scope)

	s.Require().NoError(err)
	s.Equal(models.SourceStatic, listing.Source)
}

func (s *ServiceSuite) TestReturnedListsAreCopies() {
	first, err := s.service.List(context.Background(), s.scope)
	s.Require().NoError(err)
	first.Vehicles[0].Plate = "mutated"

	s.online = false
	cached, err := s.service.List(context.Background(), s.scope)
	s.Require().NoError(err)
	s.Equal("XYZ9A87", cached.Vehicles[0].Plate)
}

func (s *ServiceSuite) TestStaticPrimary() {
	svc := New(StaticProvider{})

	listing, err := svc.List(context.Background(), s.scope)

	s.Require().NoError(err)
	s.Equal(models.SourceStatic, listing.Source)
	s.False(listing.Fallback)
	for _, v := range listing.Vehicles {
		s.Equal(v.LicensePlate, v.Plate)
	}
}
