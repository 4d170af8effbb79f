package email

import (
	"context"
	"fmt"
	"time"

	"github.com/shandysiswandi/seedvault/internal/auth/entity"
	"github.com/shandysiswandi/seedvault/internal/pkg/instrument"
	"github.com/shandysiswandi/seedvault/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

type Mail struct {
	client mail.Mail
	ins    instrument.Instrumentation
}

func New(client mail.Mail, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, ins: ins}
}

func (m *Mail) SendLockoutAlert(ctx context.Context, recipients []string, ev entity.SecurityEvent) error {
	ctx, span := m.ins.Tracer("auth.outbound.email").Start(ctx, "SendLockoutAlert")
	defer span.End()

	body := fmt.Sprintf(
		"Login to the vault was locked after repeated wrong passwords.\n\n"+
			"Client: %s\nTime: %s\nRetry allowed in: %ds\n\n"+
			"If this was not you, check who can reach the vault.",
		ev.Client, ev.OccurredAt.UTC().Format(time.RFC3339), ev.RetryAfter,
	)

	if err := m.client.Send(ctx, mail.Message{
		To:       recipients,
		Subject:  "[seedvault] Login locked for " + ev.Client,
		TextBody: body,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
