package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"checklist/internal/settings/models"
	"checklist/internal/settings/service"
	"checklist/internal/settings/store"
)

type failingStore struct {
	*store.InMemory
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("disk full")
}

type HandlerSuite struct {
	suite.Suite
	store  *store.InMemory
	router http.Handler
}

func (s *HandlerSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.router = s.routerFor(service.New(context.Background(), s.store))
}

func (s *HandlerSuite) routerFor(svc *service.Service) http.Handler {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	r := chi.NewRouter()
	New(svc, logger).Register(r)
	return r
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) do(router http.Handler, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/settings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) settings(rec *httptest.ResponseRecorder) models.ChecklistSettings {
	var out models.ChecklistSettings
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *HandlerSuite) TestGetReturnsDefaults() {
	rec := s.do(s.router, http.MethodGet, "")

	s.Equal(http.StatusOK, rec.Code)
	s.Equal(models.Defaults(), s.settings(rec))
	s.JSONEq(`{"requiredLocations":true,"requiredKilometer":true,"requiredPhotos":false,"requiredAudio":false,"requiredObservations":false}`, rec.Body.String())
}

func (s *HandlerSuite) TestPatchMergesAndPersists() {
	rec := s.do(s.router, http.MethodPatch, `{"requiredPhotos":true,"requiredKilometer":false}`)

	s.Require().Equal(http.StatusOK, rec.Code)
	got := s.settings(rec)
	s.True(got.RequiredLocations)
	s.False(got.RequiredKilometer)
	s.True(got.RequiredPhotos)

	raw, ok, err := s.store.Get(context.Background(), models.StorageKey)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Contains(raw, `"requiredPhotos":true`)

	rec = s.do(s.router, http.MethodGet, "")
	s.Equal(got, s.settings(rec))
}

func (s *HandlerSuite) TestPatchRejectsEmptyUpdate() {
	rec := s.do(s.router, http.MethodPatch, `{}`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestPatchRejectsMalformedBody() {
	rec := s.do(s.router, http.MethodPatch, `{"requiredPhotos":"yes"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestPersistFailureStillReturnsMergedSettings() {
	router := s.routerFor(service.New(context.Background(), failingStore{store.NewInMemory()}))

	rec := s.do(router, http.MethodPatch, `{"requiredAudio":true}`)

	s.Require().Equal(http.StatusOK, rec.Code)
	s.True(s.settings(rec).RequiredAudio)
	s.True(s.settings(s.do(router, http.MethodGet, "")).RequiredAudio)
}
