package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-core-api/internal/models"
)

type mockAuditWriter struct {
	entries []models.AuditLog
}

func (m *mockAuditWriter) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.entries = append(m.entries, *log)
	return nil
}

func trainerActor(trainerID string) models.Actor {
	return models.Actor{UserID: "user-1", Role: models.RoleTrainer, TrainerID: &trainerID}
}

func TestCanManageClassOwningTrainer(t *testing.T) {
	svc := NewAccessService(&mockAuditWriter{}, nil)

	assert.True(t, svc.CanManageClass(context.Background(), trainerActor("trainer-1"), "trainer-1"))
}

func TestCanManageClassOtherTrainerDenied(t *testing.T) {
	audit := &mockAuditWriter{}
	svc := NewAccessService(audit, nil)

	assert.False(t, svc.CanManageClass(context.Background(), trainerActor("trainer-2"), "trainer-1"))
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionUnauthorizedAccess, audit.entries[0].Action)
	assert.Equal(t, "class", audit.entries[0].Resource)
}

func TestCanManageClassAdminDenied(t *testing.T) {
	audit := &mockAuditWriter{}
	svc := NewAccessService(audit, nil)
	admin := models.Actor{UserID: "user-2", Role: models.RoleAdmin}

	assert.False(t, svc.CanManageClass(context.Background(), admin, "trainer-1"))
	require.Len(t, audit.entries, 1)
}

func TestCanViewSalaryOwnerAndAdmin(t *testing.T) {
	audit := &mockAuditWriter{}
	svc := NewAccessService(audit, nil)

	assert.True(t, svc.CanViewSalary(context.Background(), trainerActor("trainer-1"), "trainer-1"))
	assert.True(t, svc.CanViewSalary(context.Background(), models.Actor{UserID: "user-2", Role: models.RoleAdmin}, "trainer-1"))
	assert.Empty(t, audit.entries)
}

func TestCanViewSalaryOtherTrainerDenied(t *testing.T) {
	audit := &mockAuditWriter{}
	svc := NewAccessService(audit, nil)

	assert.False(t, svc.CanViewSalary(context.Background(), trainerActor("trainer-2"), "trainer-1"))
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "salary", audit.entries[0].Resource)
}

func TestCanViewSalaryReceptionistDenied(t *testing.T) {
	audit := &mockAuditWriter{}
	svc := NewAccessService(audit, nil)
	receptionist := models.Actor{UserID: "user-3", Role: models.RoleReceptionist}

	assert.False(t, svc.CanViewSalary(context.Background(), receptionist, "trainer-1"))
	require.Len(t, audit.entries, 1)
}
