package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/events"
)

// AuditService writes one structured log line per domain event.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		a.dispatcher.Subscribe(eventType, a.handleEvent)
	}
}

func (a *AuditService) handleEvent(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("account_id", event.AccountID),
		zap.Time("at", event.Timestamp),
	}
	switch payload := event.Payload.(type) {
	case events.SessionPayload:
		fields = append(fields, zap.String("suite_id", payload.SuiteID))
		if !payload.ExpiresAt.IsZero() {
			fields = append(fields, zap.Time("expires_at", payload.ExpiresAt))
		}
	case events.AccountTypeChangedPayload:
		fields = append(fields, zap.String("old_type", string(payload.OldType)), zap.String("new_type", string(payload.NewType)))
	case events.SuiteCreatedPayload:
		fields = append(fields, zap.String("suite_id", payload.SuiteID), zap.String("suite_name", payload.Name))
	case events.AccountCreatedPayload:
		fields = append(fields, zap.String("username", payload.Username), zap.String("type", string(payload.Type)))
	}
	a.logger.Info("audit", fields...)
	return nil
}
