// Package whatsapp renders submission summaries and builds click-to-chat links.
package whatsapp

import (
	"net/url"
	"strings"
	"time"
)

const (
	notInformed = "Não informado"
	linkBase    = "https://wa.me/"
)

var divider = strings.Repeat("─", 30)

// Entry is one answered field.
type Entry struct {
	Label string
	Value string
}

type Message struct {
	FormTitle string
	LeadName  string
	LeadPhone string
	LeadEmail string
	Entries   []Entry
	// SentAt is printed in its own location.
	SentAt time.Time
}

func orDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return notInformed
	}
	return s
}

// Format renders m as WhatsApp markdown. Entries with an empty value are left out.
func Format(m Message) string {
	var b strings.Builder

	b.WriteString("🔔 *Nova Resposta de Formulário*\n\n")
	b.WriteString("📋 *Formulário:* " + m.FormTitle + "\n")
	b.WriteString("👤 *Lead:* " + orDefault(m.LeadName) + "\n")
	b.WriteString("📱 *Telefone:* " + orDefault(m.LeadPhone) + "\n")
	b.WriteString("📧 *Email:* " + orDefault(m.LeadEmail) + "\n")
	b.WriteString("\n" + divider + "\n\n")
	b.WriteString("*📝 RESPOSTAS:*\n\n")

	for _, e := range m.Entries {
		if e.Value == "" {
			continue
		}
		b.WriteString("▪️ *" + e.Label + "*\n")
		b.WriteString("   " + e.Value + "\n\n")
	}

	b.WriteString("\n" + divider + "\n")
	b.WriteString("🕐 *Enviado em:* " + m.SentAt.Format("02/01/2006") + " às " + m.SentAt.Format("15:04"))

	return b.String()
}

// Digits keeps only the ASCII digits of a phone number.
func Digits(number string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
}

// Link returns the wa.me URL that opens a chat with number prefilled with text.
// It reports false when number has no digits.
func Link(number, text string) (string, bool) {
	digits := Digits(number)
	if digits == "" {
		return "", false
	}
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return linkBase + digits + "?text=" + escaped, true
}
