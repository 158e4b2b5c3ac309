package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// sender is the part of the Resend client used here.
type sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendNotifier implements Notifier using Resend
type ResendNotifier struct {
	emails sender
	config Config
	log    *zap.Logger
}

// NewResendNotifier creates a new Resend notifier
func NewResendNotifier(config Config, log *zap.Logger) (*ResendNotifier, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}
	if config.FromEmail == "" {
		return nil, fmt.Errorf("from email is required")
	}

	client := resend.NewClient(config.APIKey)
	return newResendNotifier(client.Emails, config, log), nil
}

func newResendNotifier(emails sender, config Config, log *zap.Logger) *ResendNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &ResendNotifier{emails: emails, config: config, log: log.Named("email")}
}

func (s *ResendNotifier) NotifyNewLead(ctx context.Context, n LeadNotification) error {
	if n.To == "" {
		return nil
	}

	html, err := NewLeadTemplate(n)
	if err != nil {
		return fmt.Errorf("failed to render lead email: %w", err)
	}

	from := s.config.FromEmail
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	}

	sent, err := s.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    from,
		To:      []string{n.To},
		Subject: fmt.Sprintf("Nova resposta: %s", n.FormTitle),
		Html:    html,
	})
	if err != nil {
		s.log.Warn("failed to send lead email", zap.String("to", n.To), zap.Error(err))
		return fmt.Errorf("failed to send lead email: %w", err)
	}

	s.log.Info("lead email sent", zap.String("to", n.To), zap.String("id", sent.Id))
	return nil
}
