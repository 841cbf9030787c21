package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/campus-fixit/fixit/internal/config"
	"github.com/campus-fixit/fixit/internal/events"
)

// NotificationService handles emitting notifications for widget events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventComplaintSubmitted, n.handleComplaintSubmitted)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTrackerReset, n.handleTrackerReset)
}

func (n *NotificationService) handleComplaintSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("ComplaintSubmitted", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Debug("TicketStatusChanged", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	if p, ok := event.Payload.(events.TicketStatusChangedPayload); ok && p.NewStatus.Terminal() {
		n.sendWebhookNotificationStub(ctx, event)
	}
	return nil
}

func (n *NotificationService) handleTrackerReset(ctx context.Context, event events.Event) error {
	n.logger.Debug("TrackerReset", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

// sendWebhookNotificationStub only logs; the widget makes no outbound calls.
func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
