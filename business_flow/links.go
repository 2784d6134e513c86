// Package businessflow contains the core business logic and use cases for lead-capture workflows
package businessflow

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// LinkBuilder constructs the funnel URLs handed back to a lead
type LinkBuilder struct {
	CalendlyBaseURL  string
	WhatsAppPhone    string
	WhatsAppTemplate string
	FrontendURL      string
}

// NewLinkBuilder creates a link builder from configured base URLs
func NewLinkBuilder(calendlyBaseURL, whatsappPhone, whatsappTemplate, frontendURL string) *LinkBuilder {
	return &LinkBuilder{
		CalendlyBaseURL:  calendlyBaseURL,
		WhatsAppPhone:    whatsappPhone,
		WhatsAppTemplate: whatsappTemplate,
		FrontendURL:      frontendURL,
	}
}

// projectTypePhrases maps project type tags to the Spanish phrase used
// in the WhatsApp message
var projectTypePhrases = map[string]string{
	"web":     "una web custom",
	"sistema": "un sistema/backoffice",
	"otro":    "un proyecto",
}

const defaultProjectPhrase = "un proyecto"

// BuildCalendlyURL builds the scheduling URL with campaign UTM
// parameters, the lead token, and prefill data when known.
func (b *LinkBuilder) BuildCalendlyURL(leadToken, email, name string) string {
	params := url.Values{}
	params.Set("utm_source", "villex")
	params.Set("utm_medium", "landing")
	params.Set("utm_campaign", "agenda_30min")
	params.Set("utm_content", leadToken)

	if email != "" {
		params.Set("email", email)
	}
	if name != "" {
		params.Set("name", name)
	}

	return fmt.Sprintf("%s?%s", b.CalendlyBaseURL, params.Encode())
}

// BuildWhatsAppURL builds a wa.me deep link with a pre-filled message
func (b *LinkBuilder) BuildWhatsAppURL(name, projectType, message string) string {
	phrase, ok := projectTypePhrases[projectType]
	if !ok {
		phrase = defaultProjectPhrase
	}

	text := strings.NewReplacer(
		"{name}", name,
		"{project_type}", phrase,
		"{message}", truncateRunes(message, 200),
	).Replace(b.WhatsAppTemplate)

	return fmt.Sprintf("https://wa.me/%s?text=%s", b.WhatsAppPhone, url.QueryEscape(text))
}

// BuildThankYouURL builds the thank-you page path for a lead token
func (b *LinkBuilder) BuildThankYouURL(leadToken string) string {
	return fmt.Sprintf("/gracias/%s/", leadToken)
}

// BuildConfirmURL builds the email-confirmation URL pointing at the frontend
func (b *LinkBuilder) BuildConfirmURL(token string) string {
	return fmt.Sprintf("%s/confirm?token=%s", strings.TrimRight(b.FrontendURL, "/"), url.QueryEscape(token))
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
