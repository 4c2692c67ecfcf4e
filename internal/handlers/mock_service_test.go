package handlers

import (
	"context"

	"irrigation_valve/internal/models"
	"irrigation_valve/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockValve struct {
	toggleStatus models.Status
	toggleErr    error
	modeStatus   models.Status
	modeErr      error
	schedule     models.Schedule
	scheduleErr  error

	toggleCalls   int
	lastMode      models.Mode
	modeCalls     int
	lastSchedule  models.Schedule
	scheduleCalls int
}

func (m *mockValve) Toggle(ctx context.Context) (models.Status, error) {
	m.toggleCalls++
	return m.toggleStatus, m.toggleErr
}
func (m *mockValve) SetMode(ctx context.Context, mode models.Mode) (models.Status, error) {
	m.modeCalls++
	m.lastMode = mode
	return m.modeStatus, m.modeErr
}
func (m *mockValve) SetSchedule(ctx context.Context, sched models.Schedule) (models.Schedule, error) {
	m.scheduleCalls++
	m.lastSchedule = sched
	if m.scheduleErr != nil && !service.IsPersistence(m.scheduleErr) {
		return models.Schedule{}, m.scheduleErr
	}
	return sched, m.scheduleErr
}

type mockMonitoring struct {
	status models.Status
	err    error
}

func (m *mockMonitoring) Status(ctx context.Context) (models.Status, error) {
	return m.status, m.err
}

type mockSignal struct {
	quality int
	ok      bool
}

func (m mockSignal) SignalQuality() (int, bool) { return m.quality, m.ok }

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service, opts ...Option) *gin.Engine {
	h := NewHandler(s, nil, opts...)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}
