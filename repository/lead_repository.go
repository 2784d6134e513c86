// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/villex/leads-api/models"
	"gorm.io/gorm"
)

// LeadRepositoryImpl implements LeadRepository interface
type LeadRepositoryImpl struct {
	*BaseRepository[models.Lead, models.LeadFilter]
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &LeadRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Lead, models.LeadFilter](db),
	}
}

// ByLeadToken retrieves a lead by its public lead token
func (r *LeadRepositoryImpl) ByLeadToken(ctx context.Context, token uuid.UUID) (*models.Lead, error) {
	db := r.getDB(ctx)

	var lead models.Lead
	err := db.Where("lead_token = ?", token).
		Last(&lead).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &lead, nil
}

// ByConfirmToken retrieves a lead by its confirmation token
func (r *LeadRepositoryImpl) ByConfirmToken(ctx context.Context, token string) (*models.Lead, error) {
	db := r.getDB(ctx)

	var lead models.Lead
	err := db.Where("confirm_token = ?", token).
		Last(&lead).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &lead, nil
}

// LatestPendingByEmail retrieves the most recent lead awaiting confirmation
// for the given extracted email
func (r *LeadRepositoryImpl) LatestPendingByEmail(ctx context.Context, email string) (*models.Lead, error) {
	db := r.getDB(ctx)

	var lead models.Lead
	err := db.Where("contact_email = ? AND status = ?", email, models.LeadStatusPendingEmailConfirm).
		Order("id DESC").
		First(&lead).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &lead, nil
}

// UpdateConfirmation marks a lead confirmed. The confirmation token is
// kept in place so a repeated confirm with the same token stays idempotent.
func (r *LeadRepositoryImpl) UpdateConfirmation(ctx context.Context, leadID uint, status string, confirmedAt time.Time) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Model(&models.Lead{}).
		Where("id = ?", leadID).
		Updates(map[string]any{
			"status":       status,
			"confirmed_at": confirmedAt,
			"updated_at":   confirmedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update lead confirmation: %w", err)
	}

	return nil
}

// UpdateConfirmToken rotates the confirmation token of a lead
func (r *LeadRepositoryImpl) UpdateConfirmToken(ctx context.Context, leadID uint, token string, expiresAt time.Time) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Model(&models.Lead{}).
		Where("id = ?", leadID).
		Updates(map[string]any{
			"confirm_token":            token,
			"confirm_token_expires_at": expiresAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update confirm token: %w", err)
	}

	return nil
}

// UpdateEmailSentAt records when the confirmation email was last dispatched
func (r *LeadRepositoryImpl) UpdateEmailSentAt(ctx context.Context, leadID uint, sentAt time.Time) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Model(&models.Lead{}).
		Where("id = ?", leadID).
		Update("email_sent_at", sentAt).Error
	if err != nil {
		return fmt.Errorf("failed to update email sent timestamp: %w", err)
	}

	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *LeadRepositoryImpl) applyFilter(query *gorm.DB, filter models.LeadFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}

	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}

	if filter.LeadToken != nil {
		query = query.Where("lead_token = ?", *filter.LeadToken)
	}

	if filter.ContactEmail != nil {
		query = query.Where("contact_email = ?", *filter.ContactEmail)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.Source != nil {
		query = query.Where("source = ?", *filter.Source)
	}

	if filter.IPHash != nil {
		query = query.Where("ip_hash = ?", *filter.IPHash)
	}

	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}

	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}

	return query
}

// ByFilter retrieves leads based on filter criteria
func (r *LeadRepositoryImpl) ByFilter(ctx context.Context, filter models.LeadFilter, orderBy string, limit, offset int) ([]*models.Lead, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Lead{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var leads []*models.Lead
	err := query.Find(&leads).Error
	if err != nil {
		return nil, err
	}

	return leads, nil
}

// Count returns the number of leads matching the filter
func (r *LeadRepositoryImpl) Count(ctx context.Context, filter models.LeadFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Lead{})

	query = r.applyFilter(query, filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}
