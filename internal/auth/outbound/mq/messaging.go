package mq

import (
	"context"

	"github.com/shandysiswandi/seedvault/internal/auth/entity"
	"github.com/shandysiswandi/seedvault/internal/pkg/instrument"
	"github.com/shandysiswandi/seedvault/internal/pkg/messaging"
	"github.com/shandysiswandi/seedvault/internal/pkg/uid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultTopic receives security events when none is configured.
const DefaultTopic = "seedvault.security"

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
	uuid   uid.StringID
	topic  string
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation, uuid uid.StringID, topic string) *Messaging {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Messaging{client: client, ins: ins, uuid: uuid, topic: topic}
}

func (m *Messaging) PublishSecurityEvent(ctx context.Context, ev entity.SecurityEvent) error {
	ctx, span := m.ins.Tracer("auth.outbound.mq").Start(ctx, "PublishSecurityEvent")
	defer span.End()

	span.SetAttributes(attribute.String("event.type", ev.Type.String()))

	data := map[string]any{}
	if ev.Type == entity.EventLoginFailed {
		data["remaining"] = ev.Remaining
	}
	if ev.RetryAfter > 0 {
		data["retry_after"] = ev.RetryAfter
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := messaging.PublishEvent(ctx, m.client, m.topic, messaging.Event{
		ID:         m.uuid.Generate(),
		Type:       ev.Type.String(),
		OccurredAt: ev.OccurredAt,
		Client:     ev.Client,
		Data:       data,
	}, messaging.Header{Key: keyOfCorrelationID, Value: []byte(cID)}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
