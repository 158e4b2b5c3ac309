package validator

import (
	"strings"
	"testing"
)

type tenantInput struct {
	Name  string `json:"name" validate:"required,max=255"`
	Slug  string `json:"slug" validate:"omitempty,slug"`
	Email string `json:"owner_email" validate:"omitempty,email"`
	Role  string `json:"role" validate:"omitempty,oneof=admin user"`
}

func TestValidateUsesJSONNames(t *testing.T) {
	v := NewValidator()
	err := v.Validate(tenantInput{Slug: "Bad Slug", Email: "nope", Role: "owner"})
	if err == nil {
		t.Fatal("Validate() error = nil, want error")
	}
	msg := err.Error()
	for _, want := range []string{
		"name is required",
		"slug must be 3-100 lowercase letters",
		"owner_email must be a valid email address",
		"role must be one of: admin user",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q does not contain %q", msg, want)
		}
	}
}

func TestValidateAccepts(t *testing.T) {
	v := NewValidator()
	if err := v.Validate(tenantInput{Name: "Acme", Slug: "acme", Email: "a@acme.com", Role: "admin"}); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
