// Package dto contains Data Transfer Objects for API request and response structures
package dto

// SubmitLeadRequest represents the landing-page contact form payload.
// Honeypot and Company are decoy fields hidden from real users; any
// non-empty value marks the submission as bot traffic.
type SubmitLeadRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Contact string `json:"contact" validate:"required,max=180"`

	ProjectType string `json:"project_type,omitempty" validate:"omitempty,max=60"`
	Message     string `json:"message,omitempty" validate:"omitempty,max=5000"`

	// Qualification fields
	Timeframe        string `json:"timeframe,omitempty" validate:"omitempty,max=40"`
	BudgetRange      string `json:"budget_range,omitempty" validate:"omitempty,max=40"`
	ReferenceURL     string `json:"reference_url,omitempty" validate:"omitempty,max=200"`
	HasDomainHosting any    `json:"has_domain_hosting,omitempty"`

	// Honeypots
	Honeypot string `json:"honeypot,omitempty"`
	Company  string `json:"company,omitempty"`
}

// SubmitLeadResponse represents the response after a lead submission.
// The email path returns EmailSent/Message; the phone and spam paths
// return the funnel URLs immediately.
type SubmitLeadResponse struct {
	LeadToken                 string `json:"lead_token"`
	RequiresEmailConfirmation bool   `json:"requires_email_confirmation"`

	EmailSent *bool  `json:"email_sent,omitempty"`
	Message   string `json:"message,omitempty"`

	ThankYouURL string `json:"thank_you_url,omitempty"`
	CalendlyURL string `json:"calendly_url,omitempty"`
	WhatsAppURL string `json:"whatsapp_url,omitempty"`
}

// ConfirmEmailResponse represents the response after redeeming a confirmation token
type ConfirmEmailResponse struct {
	LeadToken        string `json:"lead_token"`
	CalendlyURL      string `json:"calendly_url"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	AlreadyConfirmed bool   `json:"already_confirmed,omitempty"`
}

// ResendConfirmRequest represents a confirmation-email resend request
type ResendConfirmRequest struct {
	Email string `json:"email" validate:"required,email,max=180"`
}

// ResendConfirmResponse is intentionally generic: the body is identical
// whether or not a pending lead exists for the email.
type ResendConfirmResponse struct {
	Message string `json:"message"`
}

// ThankYouPageData carries the data rendered into the thank-you page
type ThankYouPageData struct {
	Name        string
	ProjectType string
	CalendlyURL string
	WhatsAppURL string
}
