package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-core-api/internal/models"
)

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AccessService holds the ownership predicates that role middleware
// cannot express. Class management belongs to the owning trainer alone;
// salary visibility extends to admins.
type AccessService struct {
	audit  auditWriter
	logger *zap.Logger
}

// NewAccessService constructs AccessService.
func NewAccessService(audit auditWriter, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{audit: audit, logger: logger}
}

// CanManageClass reports whether the actor may manage a class owned by
// classTrainerID. Only the owning trainer passes; admins manage classes
// through trainer assignment, not directly.
func (s *AccessService) CanManageClass(ctx context.Context, actor models.Actor, classTrainerID string) bool {
	allowed := actor.Role == models.RoleTrainer &&
		actor.TrainerID != nil && *actor.TrainerID == classTrainerID
	if !allowed {
		s.recordDenied(ctx, actor, "class", classTrainerID)
	}
	return allowed
}

// CanViewSalary reports whether the actor may read a salary row owned
// by salaryTrainerID. The owning trainer and admins pass.
func (s *AccessService) CanViewSalary(ctx context.Context, actor models.Actor, salaryTrainerID string) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	allowed := actor.Role == models.RoleTrainer &&
		actor.TrainerID != nil && *actor.TrainerID == salaryTrainerID
	if !allowed {
		s.recordDenied(ctx, actor, "salary", salaryTrainerID)
	}
	return allowed
}

func (s *AccessService) recordDenied(ctx context.Context, actor models.Actor, resource, resourceID string) {
	entry := &models.AuditLog{
		Action:     models.AuditActionUnauthorizedAccess,
		Resource:   resource,
		ResourceID: &resourceID,
	}
	if actor.UserID != "" {
		entry.UserID = &actor.UserID
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record unauthorized access",
			zap.String("resource", resource),
			zap.Error(err))
	}
}
