package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Lead is a prospective contact, identified by phone within a tenant.
type Lead struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SubmissionStatus string

const (
	StatusIncomplete SubmissionStatus = "incomplete"
	StatusCompleted  SubmissionStatus = "completed"
)

func (s SubmissionStatus) Valid() bool {
	return s == StatusIncomplete || s == StatusCompleted
}

type Submission struct {
	ID             uuid.UUID        `json:"id"`
	FormID         uuid.UUID        `json:"form_id"`
	LeadID         uuid.UUID        `json:"lead_id"`
	TenantID       uuid.UUID        `json:"tenant_id"`
	Status         SubmissionStatus `json:"status"`
	StartedAt      time.Time        `json:"started_at"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
	WhatsAppSent   bool             `json:"whatsapp_sent"`
	WhatsAppSentAt *time.Time       `json:"whatsapp_sent_at,omitempty"`
}

// Response is the stored answer of one field in one submission.
type Response struct {
	ID           uuid.UUID `json:"id"`
	SubmissionID uuid.UUID `json:"submission_id"`
	FieldID      uuid.UUID `json:"field_id"`
	Value        string    `json:"response_value"`
	CreatedAt    time.Time `json:"created_at"`
}

// SelectionSeparator joins multi-select answers into a single stored value. The
// individual selections are not recoverable when an option itself contains it.
const SelectionSeparator = ", "

func JoinSelections(values []string) string {
	return strings.Join(values, SelectionSeparator)
}

type Stats struct {
	Total      int64 `json:"total"`
	Completed  int64 `json:"completed"`
	Incomplete int64 `json:"incomplete"`
	NewLeads   int64 `json:"new_leads"`
}
