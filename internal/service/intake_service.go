package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gomesrodrigo528/app-form/internal/domain"
	"github.com/gomesrodrigo528/app-form/pkg/email"
	"github.com/gomesrodrigo528/app-form/pkg/metrics"
	"github.com/gomesrodrigo528/app-form/pkg/whatsapp"
)

// AnswerValue holds the selections sent for one field. In JSON it is either a string
// or a list of strings.
type AnswerValue []string

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*v = AnswerValue{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("answer must be a string or a list of strings")
	}
	*v = many
	return nil
}

// SubmitRequest is a lead's submission of a public form. Answers are keyed by field id;
// fields without a key are left unanswered.
type SubmitRequest struct {
	Name    string                 `json:"name" validate:"max=255"`
	Phone   string                 `json:"phone" validate:"required,max=30"`
	Email   string                 `json:"email" validate:"omitempty,email"`
	Answers map[string]AnswerValue `json:"answers"`
}

type SubmitResult struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	LeadID       uuid.UUID `json:"lead_id"`
	// RedirectURL is the wa.me link; empty when the tenant has no WhatsApp number.
	RedirectURL     string `json:"redirect_url,omitempty"`
	Message         string `json:"-"`
	ThankYouMessage string `json:"thank_you_message"`
}

type IntakeService struct {
	forms       *FormService
	leads       *LeadService
	submissions *SubmissionService
	notifier    email.Notifier
	location    *time.Location
	log         *zap.Logger
	now         func() time.Time
}

// NewIntakeService wires the public submission flow. Message timestamps are printed in
// location.
func NewIntakeService(
	forms *FormService,
	leads *LeadService,
	submissions *SubmissionService,
	notifier email.Notifier,
	location *time.Location,
	log *zap.Logger,
) *IntakeService {
	if notifier == nil {
		notifier = email.NopNotifier{}
	}
	if location == nil {
		location = time.UTC
	}
	return &IntakeService{
		forms:       forms,
		leads:       leads,
		submissions: submissions,
		notifier:    notifier,
		location:    location,
		log:         log,
		now:         time.Now,
	}
}

type answered struct {
	field *domain.FormField
	value string
}

// Submit records a lead's answers to an active form and completes the submission.
// When the tenant has a WhatsApp number the result carries the chat link and the
// submission is flagged as sent.
func (s *IntakeService) Submit(ctx context.Context, tenantSlug string, formID uuid.UUID, req SubmitRequest) (*SubmitResult, error) {
	result, err := s.submit(ctx, tenantSlug, formID, req)
	switch {
	case err == nil && result.RedirectURL != "":
		metrics.SubmissionCounter.WithLabelValues("whatsapp").Inc()
	case err == nil:
		metrics.SubmissionCounter.WithLabelValues("success_page").Inc()
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound):
		metrics.SubmissionCounter.WithLabelValues("rejected").Inc()
	default:
		metrics.SubmissionCounter.WithLabelValues("error").Inc()
	}
	return result, err
}

func (s *IntakeService) submit(ctx context.Context, tenantSlug string, formID uuid.UUID, req SubmitRequest) (*SubmitResult, error) {
	public, err := s.forms.PublicForm(ctx, tenantSlug, formID)
	if err != nil {
		return nil, err
	}
	tenant := public.tenant

	answers, err := collectAnswers(public.Fields, req.Answers)
	if err != nil {
		return nil, err
	}

	lead, err := s.leads.GetOrCreate(ctx, tenant.ID, req.Phone, req.Email, req.Name)
	if err != nil {
		return nil, err
	}
	submission, err := s.submissions.Create(ctx, public.Form.ID, lead.ID, tenant.ID)
	if err != nil {
		return nil, err
	}
	for _, a := range answers {
		if _, err := s.submissions.RecordResponse(ctx, submission.ID, a.field.ID, a.value); err != nil {
			return nil, err
		}
	}
	completedAt, err := s.submissions.Finalize(ctx, submission.ID)
	if err != nil {
		return nil, err
	}

	entries := make([]whatsapp.Entry, 0, len(answers))
	for _, a := range answers {
		entries = append(entries, whatsapp.Entry{Label: a.field.Label, Value: a.value})
	}
	message := whatsapp.Format(whatsapp.Message{
		FormTitle: public.Form.Title,
		LeadName:  strings.TrimSpace(req.Name),
		LeadPhone: strings.TrimSpace(req.Phone),
		LeadEmail: strings.TrimSpace(req.Email),
		Entries:   entries,
		SentAt:    completedAt.In(s.location),
	})

	result := &SubmitResult{
		SubmissionID:    submission.ID,
		LeadID:          lead.ID,
		Message:         message,
		ThankYouMessage: public.Settings.ThankYouMessage,
	}

	if link, ok := whatsapp.Link(tenant.WhatsAppNumber, message); ok {
		if _, err := s.submissions.MarkWhatsAppSent(ctx, submission.ID); err != nil {
			return nil, err
		}
		result.RedirectURL = link
	}

	s.notify(ctx, tenant, public.Form, req, entries, completedAt)

	s.log.Info("form submitted",
		zap.String("tenant", tenant.Slug),
		zap.String("form_id", public.Form.ID.String()),
		zap.String("submission_id", submission.ID.String()),
		zap.Bool("whatsapp", result.RedirectURL != ""),
	)
	return result, nil
}

// collectAnswers validates the payload against the form's fields and returns the
// answers to store, in field order. Unknown field ids are ignored.
func collectAnswers(fields []*domain.FormField, payload map[string]AnswerValue) ([]answered, error) {
	var out []answered
	for _, f := range fields {
		raw, present := payload[f.ID.String()]

		var values []string
		for _, v := range raw {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}

		if f.IsRequired && len(values) == 0 {
			return nil, invalid("%s is required", f.Label)
		}
		if len(values) > 1 && !f.AcceptsMany() {
			return nil, invalid("%s accepts a single value", f.Label)
		}
		if f.FieldType.HasOptions() && len(f.Options) > 0 {
			for _, v := range values {
				if !f.HasOption(v) {
					return nil, invalid("%q is not an option of %s", v, f.Label)
				}
			}
		}
		if !present {
			continue
		}

		value := ""
		if f.AcceptsMany() {
			value = domain.JoinSelections(values)
		} else if len(values) == 1 {
			value = values[0]
		}
		out = append(out, answered{field: f, value: value})
	}
	return out, nil
}

// notify e-mails the tenant owner. Failures are logged only.
func (s *IntakeService) notify(ctx context.Context, tenant *domain.Tenant, form *domain.Form, req SubmitRequest, entries []whatsapp.Entry, at time.Time) {
	if tenant.OwnerEmail == "" {
		return
	}
	answers := make([]email.Answer, 0, len(entries))
	for _, e := range entries {
		if e.Value != "" {
			answers = append(answers, email.Answer{Label: e.Label, Value: e.Value})
		}
	}
	err := s.notifier.NotifyNewLead(ctx, email.LeadNotification{
		To:          tenant.OwnerEmail,
		TenantName:  tenant.Name,
		FormTitle:   form.Title,
		LeadName:    strings.TrimSpace(req.Name),
		LeadPhone:   strings.TrimSpace(req.Phone),
		LeadEmail:   strings.TrimSpace(req.Email),
		Answers:     answers,
		SubmittedAt: at.In(s.location),
	})
	if err != nil {
		s.log.Warn("failed to notify tenant owner",
			zap.String("tenant", tenant.Slug),
			zap.Error(err),
		)
	}
}
