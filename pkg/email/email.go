// Package email sends the tenant owner a notice for every new submission.
package email

import (
	"context"
	"time"
)

// LeadNotification is the content of a new-submission e-mail.
type LeadNotification struct {
	To          string
	TenantName  string
	FormTitle   string
	LeadName    string
	LeadPhone   string
	LeadEmail   string
	Answers     []Answer
	SubmittedAt time.Time
}

type Answer struct {
	Label string
	Value string
}

// Notifier delivers lead notifications.
type Notifier interface {
	NotifyNewLead(ctx context.Context, n LeadNotification) error
}

type Config struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NopNotifier drops every notification; used when e-mail is not configured.
type NopNotifier struct{}

func (NopNotifier) NotifyNewLead(context.Context, LeadNotification) error { return nil }
