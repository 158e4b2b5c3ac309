package domain

import (
	"time"

	"github.com/google/uuid"
)

type Form struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldEmail    FieldType = "email"
	FieldTel      FieldType = "tel"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldSelect   FieldType = "select"
	FieldRadio    FieldType = "radio"
	FieldCheckbox FieldType = "checkbox"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldTextarea, FieldEmail, FieldTel, FieldNumber, FieldDate,
		FieldSelect, FieldRadio, FieldCheckbox:
		return true
	}
	return false
}

// HasOptions reports whether fields of this type carry an option list.
func (t FieldType) HasOptions() bool {
	return t == FieldSelect || t == FieldRadio || t == FieldCheckbox
}

// FormField is one input of a form. Fields are displayed by FieldOrder; equal orders
// keep creation order.
type FormField struct {
	ID          uuid.UUID `json:"id"`
	FormID      uuid.UUID `json:"form_id"`
	FieldType   FieldType `json:"field_type"`
	Label       string    `json:"label"`
	Placeholder string    `json:"placeholder"`
	IsRequired  bool      `json:"is_required"`
	FieldOrder  int       `json:"field_order"`
	Options     []string  `json:"options,omitempty"`
	IsMultiple  bool      `json:"is_multiple"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AcceptsMany reports whether the field takes a list of selections.
func (f *FormField) AcceptsMany() bool {
	return f.FieldType == FieldCheckbox && len(f.Options) > 0
}

// HasOption reports whether v is one of the field's options.
func (f *FormField) HasOption(v string) bool {
	for _, opt := range f.Options {
		if opt == v {
			return true
		}
	}
	return false
}
