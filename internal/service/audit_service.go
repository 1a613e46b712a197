package service

import (
	"context"
	"log/slog"
	"time"

	"go-media-cms/internal/model"
)

const (
	AuditStatusSuccess = "success"
	AuditStatusFailure = "failure"
)

type AuditRecorder interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, error)
}

// AuditService records security-relevant actions. Logging never fails the
// caller; a write error is only reported through slog.
type AuditService struct {
	repo AuditRecorder
	now  func() time.Time
}

func NewAuditService(repo AuditRecorder) *AuditService {
	return &AuditService{repo: repo, now: time.Now}
}

func (s *AuditService) Log(ctx context.Context, action string, actor model.AuditActor, status string, resource string, errText string) {
	if s == nil || s.repo == nil {
		return
	}

	entry := model.AuditEntry{
		Action:     action,
		OccurredAt: s.now().UTC(),
		Actor:      actor,
		Status:     status,
		Resource:   resource,
		Error:      errText,
	}

	if err := s.repo.Log(ctx, entry); err != nil {
		slog.Warn("audit write failed", "action", action, "error", err)
	}
}

func (s *AuditService) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, error) {
	return s.repo.Query(ctx, query)
}

// ActorFor builds an audit actor from the request's principal.
func ActorFor(p *model.Principal, ip string) model.AuditActor {
	actor := model.AuditActor{IP: ip}
	if p == nil {
		return actor
	}
	actor.HolderID = p.HolderID
	actor.Username = p.Identity
	actor.Role = p.Role
	return actor
}
