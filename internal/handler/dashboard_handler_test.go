package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/gym-core-api/internal/dto"
	"github.com/noah-isme/gym-core-api/internal/middleware"
	"github.com/noah-isme/gym-core-api/internal/models"
)

type fakeDashboardSrv struct {
	overviewResp *dto.DashboardOverview
	overviewErr  error
	overviewHit  bool
	trainerResp  *dto.TrainerDashboard
	trainerErr   error
	trainerHit   bool
	lastTrainer  struct {
		trainerID string
		month     string
	}
}

func (f *fakeDashboardSrv) Overview(context.Context, string) (*dto.DashboardOverview, bool, error) {
	return f.overviewResp, f.overviewHit, f.overviewErr
}

func (f *fakeDashboardSrv) Trainer(_ context.Context, trainerID, month string) (*dto.TrainerDashboard, bool, error) {
	f.lastTrainer.trainerID = trainerID
	f.lastTrainer.month = month
	return f.trainerResp, f.trainerHit, f.trainerErr
}

func TestDashboardHandlerOverviewSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{
		overviewResp: &dto.DashboardOverview{Month: "2025-06", TotalRevenue: 12500000},
		overviewHit:  true,
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard?month=2025-06", nil)

	handler.Overview(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, "2025-06", envelope.Data["month"])
}

func TestDashboardHandlerTrainerUsesOwnProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeDashboardSrv{
		trainerResp: &dto.TrainerDashboard{TrainerID: "trainer-1", Month: "2025-06"},
	}
	handler := NewDashboardHandler(service)

	trainerID := "trainer-1"
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/trainer?trainerId=trainer-9&month=2025-06", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID:    "user-1",
		Role:      models.RoleTrainer,
		TrainerID: &trainerID,
	})

	handler.Trainer(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "trainer-1", service.lastTrainer.trainerID)
	assert.Equal(t, "2025-06", service.lastTrainer.month)
}

func TestDashboardHandlerTrainerRequiresID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/trainer", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleAdmin})

	handler.Trainer(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}
