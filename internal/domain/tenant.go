package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is a company workspace. Tenants are disabled through IsActive and are never
// hard-deleted while users still reference them.
type Tenant struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	OwnerEmail     string    `json:"owner_email,omitempty"`
	WhatsAppNumber string    `json:"whatsapp_number,omitempty"`
	PrimaryColor   string    `json:"primary_color,omitempty"`
	SecondaryColor string    `json:"secondary_color,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

const (
	DefaultWelcomeMessage  = "Bem-vindo! Preencha o formulário abaixo."
	DefaultThankYouMessage = "Obrigado! Entraremos em contato em breve."
)

// TenantSettings holds the public-page texts of a tenant.
type TenantSettings struct {
	TenantID        uuid.UUID `json:"tenant_id"`
	WelcomeMessage  string    `json:"welcome_message"`
	ThankYouMessage string    `json:"thank_you_message"`
}

// DefaultSettings returns the settings a tenant gets on first access.
func DefaultSettings(tenantID uuid.UUID) *TenantSettings {
	return &TenantSettings{
		TenantID:        tenantID,
		WelcomeMessage:  DefaultWelcomeMessage,
		ThankYouMessage: DefaultThankYouMessage,
	}
}
