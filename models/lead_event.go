// Package models contains domain entities and business models for the lead funnel
package models

import (
	"encoding/json"
	"time"
)

// LeadEvent is the append-only audit trail of a lead. Rows are never
// updated or deleted in normal operation; deleting a lead cascades.
type LeadEvent struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	LeadID    uint            `gorm:"not null;index:idx_lead_events_lead_id" json:"lead_id"`
	Lead      *Lead           `gorm:"foreignKey:LeadID;references:ID;constraint:OnDelete:CASCADE" json:"lead,omitempty"`
	EventType string          `gorm:"size:60;not null;index:idx_lead_events_event_type" json:"event_type"`
	Payload   json.RawMessage `gorm:"type:jsonb" json:"payload,omitempty"`
	CreatedAt time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_lead_events_created_at" json:"created_at"`
}

func (LeadEvent) TableName() string {
	return "lead_events"
}

// Lead event type constants
const (
	LeadEventCreated             = "lead_created"
	LeadEventConfirmEmailSent    = "confirm_email_sent"
	LeadEventConfirmEmailFailed  = "confirm_email_failed"
	LeadEventEmailConfirmed      = "email_confirmed"
	LeadEventConfirmResent       = "confirm_resent"
	LeadEventConfirmResendFailed = "confirm_resend_failed"
)

// LeadEventFilter represents filter criteria for lead event queries
type LeadEventFilter struct {
	ID            *uint
	LeadID        *uint
	EventType     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
