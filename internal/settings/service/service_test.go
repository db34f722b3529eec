package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"checklist/internal/platform/metrics"
	"checklist/internal/settings/models"
	"checklist/internal/settings/service/mocks"
	"checklist/internal/settings/store"
	concurrent "checklist/pkg/testutil"
)

func ptr(b bool) *bool { return &b }

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	mockStore *mocks.MockStore
	metrics   *metrics.Metrics
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.metrics = metrics.NewWith(prometheus.NewRegistry())
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestDefaultsWhenNothingPersisted() {
	s.mockStore.EXPECT().Get(gomock.Any(), models.StorageKey).Return("", false, nil)

	svc := New(context.Background(), s.mockStore)

	s.Equal(models.ChecklistSettings{
		RequiredLocations:    true,
		RequiredKilometer:    true,
		RequiredPhotos:       false,
		RequiredAudio:        false,
		RequiredObservations: false,
	}, svc.Settings())
	s.True(svc.IsLocationRequired())
	s.True(svc.IsKilometerRequired())
}

func (s *ServiceSuite) TestLoadOverlaysPersistedValues() {
	s.mockStore.EXPECT().Get(gomock.Any(), models.StorageKey).
		Return(`{"requiredKilometer":false,"requiredPhotos":true}`, true, nil)

	svc := New(context.Background(), s.mockStore)

	got := svc.Settings()
	s.True(got.RequiredLocations, "missing keys fall back to defaults")
	s.False(got.RequiredKilometer)
	s.True(got.RequiredPhotos)
	s.True(svc.IsPhotoRequired())
}

func (s *ServiceSuite) TestLoadFailuresFallBackToDefaults() {
	s.Run("store error", func() {
		s.mockStore.EXPECT().Get(gomock.Any(), models.StorageKey).Return("", false, errors.New("disk gone"))
		svc := New(context.Background(), s.mockStore, WithMetrics(s.metrics))
		s.Equal(models.Defaults(), svc.Settings())
	})

	s.Run("corrupt document", func() {
		s.mockStore.EXPECT().Get(gomock.Any(), models.StorageKey).Return("{", true, nil)
		svc := New(context.Background(), s.mockStore, WithMetrics(s.metrics))
		s.Equal(models.Defaults(), svc.Settings())
	})

	s.Equal(2.0, testutil.ToFloat64(s.metrics.SettingsPersistFailures.WithLabelValues("load")))
}

func (s *ServiceSuite) TestUpdateMergesAndWritesThrough() {
	s.mockStore.EXPECT().Get(gomock.Any(), models.StorageKey).Return("", false, nil)

	var written string
	s.mockStore.EXPECT().Set(gomock.Any(), models.StorageKey, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, value string) error {
			written = value
			return nil
		})

	svc := New(context.Background(), s.mockStore)
	got := svc.Update(context.Background(), models.Partial{RequiredAudio: ptr(true)})

	want := models.Defaults()
	want.RequiredAudio = true
	s.Equal(want, got)
	s.Equal(want, svc.Settings())

	var persisted models.ChecklistSettings
	s.Require().NoError(json.Unmarshal([]byte(written), &persisted))
	s.Equal(want, persisted)
}

func (s *ServiceSuite) TestUpdateSurvivesWriteFailure() {
	s.mockStore.EXPECT().Get(gomock.Any(), models.StorageKey).Return("", false, nil)
	s.mockStore.EXPECT().Set(gomock.Any(), models.StorageKey, gomock.Any()).Return(errors.New("quota exceeded"))

	svc := New(context.Background(), s.mockStore, WithMetrics(s.metrics))

	s.NotPanics(func() {
		svc.Update(context.Background(), models.Partial{RequiredLocations: ptr(false)})
	})
	s.False(svc.Settings().RequiredLocations)
	s.False(svc.IsLocationRequired())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.SettingsPersistFailures.WithLabelValues("save")))
}

func (s *ServiceSuite) TestSettingsReturnsACopy() {
	s.mockStore.EXPECT().Get(gomock.Any(), models.StorageKey).Return("", false, nil)
	svc := New(context.Background(), s.mockStore)

	got := svc.Settings()
	got.RequiredPhotos = true
	got.RequiredLocations = false

	s.Equal(models.Defaults(), svc.Settings())
}

func (s *ServiceSuite) TestEveryPartialIsAShallowMerge() {
	kv := store.NewInMemory()
	svc := New(context.Background(), kv)

	partials := []models.Partial{
		{},
		{RequiredPhotos: ptr(true)},
		{RequiredKilometer: ptr(false), RequiredObservations: ptr(true)},
		{RequiredLocations: ptr(false), RequiredAudio: ptr(true), RequiredPhotos: ptr(false)},
		{RequiredLocations: ptr(true), RequiredKilometer: ptr(true), RequiredPhotos: ptr(true), RequiredAudio: ptr(true), RequiredObservations: ptr(true)},
	}
	for _, p := range partials {
		before := svc.Settings()
		after := svc.Update(context.Background(), p)
		s.Equal(before.Merge(p), after)
		s.Equal(after, svc.Settings())
	}

	reloaded := New(context.Background(), kv)
	s.Equal(svc.Settings(), reloaded.Settings(), "a fresh instance sees the persisted state")
}

func (s *ServiceSuite) TestConcurrentUpdatesDoNotLoseFields() {
	kv := store.NewInMemory()
	svc := New(context.Background(), kv)

	updates := []models.Partial{
		{RequiredPhotos: ptr(true)},
		{RequiredAudio: ptr(true)},
		{RequiredObservations: ptr(true)},
		{RequiredLocations: ptr(false)},
		{RequiredKilometer: ptr(false)},
	}
	res := concurrent.RunConcurrent(len(updates), func(idx int) error {
		svc.Update(context.Background(), updates[idx])
		return nil
	})
	s.Equal(int32(len(updates)), res.Successes)

	want := models.ChecklistSettings{
		RequiredPhotos:       true,
		RequiredAudio:        true,
		RequiredObservations: true,
	}
	s.Equal(want, svc.Settings())
	s.Equal(want, New(context.Background(), kv).Settings())
}
