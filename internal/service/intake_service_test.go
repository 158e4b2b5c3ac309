package service

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gomesrodrigo528/app-form/internal/domain"
)

func setWhatsApp(t *testing.T, f *fixture, tenant *domain.Tenant, number string) {
	t.Helper()
	tenant.WhatsAppNumber = number
	if err := f.tenantRepo.Update(context.Background(), tenant); err != nil {
		t.Fatalf("Update tenant error = %v", err)
	}
}

func TestSubmitRedirectsToWhatsApp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tenant, p := f.tenantWithAdmin(t, "acme")
	setWhatsApp(t, f, tenant, "+55 (11) 99999-0000")

	form, fields := f.form(t, p, "Orçamento",
		FieldRequest{FieldType: domain.FieldText, Label: "Empresa", IsRequired: true},
		FieldRequest{FieldType: domain.FieldCheckbox, Label: "Serviços", Options: []string{"A", "B", "C"}},
	)

	result, err := f.intake.Submit(ctx, "acme", form.ID, SubmitRequest{
		Name:  "Maria",
		Phone: "11 98888-7777",
		Answers: map[string]AnswerValue{
			fields[0].ID.String(): {"Loja Azul"},
			fields[1].ID.String(): {"A", "C"},
		},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if !strings.HasPrefix(result.RedirectURL, "https://wa.me/5511999990000?text=") {
		t.Errorf("RedirectURL = %q", result.RedirectURL)
	}
	if strings.Contains(result.RedirectURL, "+") {
		t.Errorf("RedirectURL should escape spaces as %%20: %q", result.RedirectURL)
	}
	for _, want := range []string{"*Formulário:* Orçamento", "*Lead:* Maria", "*Email:* Não informado", "▪️ *Serviços*\n   A, C\n"} {
		if !strings.Contains(result.Message, want) {
			t.Errorf("Message missing %q:\n%s", want, result.Message)
		}
	}

	sub, err := f.submissionRepo.GetByID(ctx, result.SubmissionID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if sub.Status != domain.StatusCompleted || sub.CompletedAt == nil {
		t.Errorf("submission = %+v, want completed", sub)
	}
	if !sub.WhatsAppSent || sub.WhatsAppSentAt == nil {
		t.Errorf("submission WhatsAppSent = %v, want true", sub.WhatsAppSent)
	}

	responses, err := f.responseRepo.ListBySubmission(ctx, sub.ID)
	if err != nil {
		t.Fatalf("ListBySubmission() error = %v", err)
	}
	got := map[uuid.UUID]string{}
	for _, r := range responses {
		got[r.FieldID] = r.Value
	}
	want := map[uuid.UUID]string{fields[0].ID: "Loja Azul", fields[1].ID: "A, C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("responses = %v, want %v", got, want)
	}
}

func TestSubmitWithoutWhatsAppShowsThankYou(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tenant, p := f.tenantWithAdmin(t, "acme")
	form, _ := f.form(t, p, "Contato")

	result, err := f.intake.Submit(ctx, "acme", form.ID, SubmitRequest{Phone: "1199"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.RedirectURL != "" {
		t.Errorf("RedirectURL = %q, want empty", result.RedirectURL)
	}
	if result.ThankYouMessage != domain.DefaultThankYouMessage {
		t.Errorf("ThankYouMessage = %q", result.ThankYouMessage)
	}

	sub, err := f.submissionRepo.GetByID(ctx, result.SubmissionID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if sub.WhatsAppSent || sub.Status != domain.StatusCompleted {
		t.Errorf("submission = %+v", sub)
	}

	if len(f.notifier.sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(f.notifier.sent))
	}
	if n := f.notifier.sent[0]; n.To != tenant.OwnerEmail || n.FormTitle != "Contato" {
		t.Errorf("notification = %+v", n)
	}
}

func TestSubmitOmitsEmptyValuesFromMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, p := f.tenantWithAdmin(t, "acme")
	form, fields := f.form(t, p, "Contato",
		FieldRequest{FieldType: domain.FieldText, Label: "Empresa"},
		FieldRequest{FieldType: domain.FieldTextarea, Label: "Observações"},
	)

	result, err := f.intake.Submit(ctx, "acme", form.ID, SubmitRequest{
		Phone: "1199",
		Answers: map[string]AnswerValue{
			fields[0].ID.String(): {"Loja"},
			fields[1].ID.String(): {"   "},
		},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if strings.Contains(result.Message, "Observações") {
		t.Errorf("Message should leave out empty answers:\n%s", result.Message)
	}
	if !strings.Contains(result.Message, "▪️ *Empresa*") {
		t.Errorf("Message missing answered field:\n%s", result.Message)
	}
}

func TestSubmitMessageUsesConfiguredZone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, p := f.tenantWithAdmin(t, "acme")
	form, _ := f.form(t, p, "Contato")
	f.clock.t = time.Date(2024, 3, 5, 17, 4, 0, 0, time.UTC)

	result, err := f.intake.Submit(ctx, "acme", form.ID, SubmitRequest{Phone: "1199"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if want := "🕐 *Enviado em:* 05/03/2024 às 14:04"; !strings.HasSuffix(result.Message, want) {
		t.Errorf("Message footer = %q, want suffix %q", result.Message, want)
	}
}

func TestSubmitRejectsInvalidAnswers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, p := f.tenantWithAdmin(t, "acme")
	form, fields := f.form(t, p, "Pesquisa",
		FieldRequest{FieldType: domain.FieldText, Label: "Empresa", IsRequired: true},
		FieldRequest{FieldType: domain.FieldSelect, Label: "Plano", Options: []string{"Basic", "Pro"}},
	)
	company := fields[0].ID.String()
	plan := fields[1].ID.String()

	tests := map[string]SubmitRequest{
		"missing phone":    {Answers: map[string]AnswerValue{company: {"x"}}},
		"missing required": {Phone: "1199", Answers: map[string]AnswerValue{plan: {"Pro"}}},
		"unknown option":   {Phone: "1199", Answers: map[string]AnswerValue{company: {"x"}, plan: {"Gold"}}},
		"too many values":  {Phone: "1199", Answers: map[string]AnswerValue{company: {"x"}, plan: {"Basic", "Pro"}}},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := f.intake.Submit(ctx, "acme", form.ID, req); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("Submit() err = %v, want ErrValidation", err)
			}
		})
	}

	n, err := f.submissionRepo.Count(ctx, p.TenantID, "")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Errorf("submissions = %d, want none stored for rejected payloads", n)
	}
}

func TestSubmitToDisabledTenantIsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tenant, p := f.tenantWithAdmin(t, "acme")
	form, _ := f.form(t, p, "Contato")

	off := false
	if _, err := f.tenants.AdminUpdate(ctx, superuser(), tenant.ID, UpdateTenantRequest{IsActive: &off}); err != nil {
		t.Fatalf("AdminUpdate() error = %v", err)
	}

	if _, err := f.tenants.GetBySlug(ctx, "acme"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetBySlug() err = %v, want ErrNotFound", err)
	}
	if _, err := f.intake.Submit(ctx, "acme", form.ID, SubmitRequest{Phone: "1199"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Submit() err = %v, want ErrNotFound", err)
	}
	if _, err := f.intake.Submit(ctx, "nobody", form.ID, SubmitRequest{Phone: "1199"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Submit(unknown slug) err = %v, want ErrNotFound", err)
	}
}

func TestSubmitReusesLeadByPhone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, p := f.tenantWithAdmin(t, "acme")
	form, _ := f.form(t, p, "Contato")

	first, err := f.intake.Submit(ctx, "acme", form.ID, SubmitRequest{Phone: "1199", Name: "Ana"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	second, err := f.intake.Submit(ctx, "acme", form.ID, SubmitRequest{Phone: "1199", Name: "Ana Maria"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if first.LeadID != second.LeadID {
		t.Errorf("lead ids differ: %s, %s", first.LeadID, second.LeadID)
	}
	if first.SubmissionID == second.SubmissionID {
		t.Error("each submit must create its own submission")
	}
}

func TestAnswerValueUnmarshal(t *testing.T) {
	var req SubmitRequest
	body := `{"phone":"1","answers":{"a":"one","b":["x","y"]}}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(req.Answers["a"], AnswerValue{"one"}) {
		t.Errorf("a = %q", req.Answers["a"])
	}
	if !reflect.DeepEqual(req.Answers["b"], AnswerValue{"x", "y"}) {
		t.Errorf("b = %q", req.Answers["b"])
	}

	if err := json.Unmarshal([]byte(`{"answers":{"a":1}}`), &req); err == nil {
		t.Error("Unmarshal(number) error = nil, want error")
	}
}
