// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/villex/leads-api/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
}

// LeadRepository defines operations for leads
type LeadRepository interface {
	Repository[models.Lead, models.LeadFilter]
	ByLeadToken(ctx context.Context, token uuid.UUID) (*models.Lead, error)
	ByConfirmToken(ctx context.Context, token string) (*models.Lead, error)
	LatestPendingByEmail(ctx context.Context, email string) (*models.Lead, error)
	UpdateConfirmation(ctx context.Context, leadID uint, status string, confirmedAt time.Time) error
	UpdateConfirmToken(ctx context.Context, leadID uint, token string, expiresAt time.Time) error
	UpdateEmailSentAt(ctx context.Context, leadID uint, sentAt time.Time) error
}

// LeadEventRepository defines operations for the append-only lead audit trail
type LeadEventRepository interface {
	Repository[models.LeadEvent, models.LeadEventFilter]
	ListByLead(ctx context.Context, leadID uint, limit, offset int) ([]*models.LeadEvent, error)
}
