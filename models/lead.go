// Package models contains domain entities and business models for the lead funnel
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Lead struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_leads_uuid" json:"uuid"`
	LeadToken uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_leads_lead_token" json:"lead_token"`

	// Contact info as submitted
	Name         string  `gorm:"size:120;not null" json:"name"`
	Contact      string  `gorm:"size:180;not null" json:"contact"`
	ContactEmail *string `gorm:"size:180;index:idx_leads_contact_email" json:"contact_email,omitempty"`

	// Project details
	ProjectType string `gorm:"size:60" json:"project_type"`
	Message     string `gorm:"type:text" json:"message"`

	// Qualification fields
	Timeframe        string `gorm:"size:40" json:"timeframe"`
	BudgetRange      string `gorm:"size:40" json:"budget_range"`
	ReferenceURL     string `gorm:"size:200" json:"reference_url"`
	HasDomainHosting *bool  `json:"has_domain_hosting,omitempty"`

	// Tracking
	Source string `gorm:"size:30;default:form" json:"source"`
	Status string `gorm:"size:20;default:new;index:idx_leads_status" json:"status"`

	// Anti-spam
	SpamScore int    `gorm:"default:0" json:"spam_score"`
	IPHash    string `gorm:"size:80;index:idx_leads_ip_hash" json:"-"`
	UserAgent string `gorm:"size:255" json:"user_agent"`

	// Email confirmation
	ConfirmToken          *string    `gorm:"size:64;uniqueIndex:uk_leads_confirm_token" json:"-"` // Never serialize the confirmation token
	ConfirmTokenExpiresAt *time.Time `json:"confirm_token_expires_at,omitempty"`
	ConfirmedAt           *time.Time `json:"confirmed_at,omitempty"`
	EmailSentAt           *time.Time `json:"email_sent_at,omitempty"`

	// Calendly integration (populated by the scheduling webhook)
	CalendlyInviteeURI *string    `gorm:"type:text" json:"calendly_invitee_uri,omitempty"`
	CalendlyEventURI   *string    `gorm:"type:text" json:"calendly_event_uri,omitempty"`
	ScheduledStartTime *time.Time `json:"scheduled_start_time,omitempty"`
	CanceledAt         *time.Time `json:"canceled_at,omitempty"`

	// Timestamps
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_leads_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Events []LeadEvent `gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Lead) TableName() string {
	return "leads"
}

// Lead status constants
const (
	LeadStatusNew                 = "new"
	LeadStatusPendingEmailConfirm = "pending_email_confirm"
	LeadStatusEmailConfirmed      = "email_confirmed"
	LeadStatusScheduled           = "scheduled"
	LeadStatusContacted           = "contacted"
	LeadStatusWon                 = "won"
	LeadStatusLost                = "lost"
	LeadStatusCanceled            = "canceled"
	LeadStatusSpam                = "spam"
)

// LeadSourceForm is the default source tag for landing-page submissions.
const LeadSourceForm = "form"

// LeadFilter represents filter criteria for lead queries
type LeadFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	LeadToken     *uuid.UUID
	ContactEmail  *string
	Status        *string
	Source        *string
	IPHash        *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (l *Lead) HasEmail() bool {
	return l.ContactEmail != nil && *l.ContactEmail != ""
}

func (l *Lead) IsSpam() bool {
	return l.Status == LeadStatusSpam
}

func (l *Lead) IsConfirmed() bool {
	return l.ConfirmedAt != nil
}

// IsConfirmTokenValid reports whether the confirmation token can still be
// redeemed at the given instant. The expiry bound is exclusive: a token is
// invalid at exactly its expiry time.
func (l *Lead) IsConfirmTokenValid(now time.Time) bool {
	if l.ConfirmToken == nil || *l.ConfirmToken == "" || l.ConfirmTokenExpiresAt == nil {
		return false
	}
	return now.Before(*l.ConfirmTokenExpiresAt)
}

// EmailDomain returns the lower-cased domain part of the extracted email,
// or "" when no email was extracted.
func (l *Lead) EmailDomain() string {
	if !l.HasEmail() {
		return ""
	}
	at := strings.LastIndex(*l.ContactEmail, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower((*l.ContactEmail)[at+1:])
}
