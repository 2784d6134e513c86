// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/villex/leads-api/models"
	"gorm.io/gorm"
)

// LeadEventRepositoryImpl implements LeadEventRepository interface
type LeadEventRepositoryImpl struct {
	*BaseRepository[models.LeadEvent, models.LeadEventFilter]
}

// NewLeadEventRepository creates a new lead event repository
func NewLeadEventRepository(db *gorm.DB) LeadEventRepository {
	return &LeadEventRepositoryImpl{
		BaseRepository: NewBaseRepository[models.LeadEvent, models.LeadEventFilter](db),
	}
}

// ListByLead retrieves events for a specific lead with pagination
func (r *LeadEventRepositoryImpl) ListByLead(ctx context.Context, leadID uint, limit, offset int) ([]*models.LeadEvent, error) {
	db := r.getDB(ctx)

	var events []*models.LeadEvent
	err := db.Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list events by lead: %w", err)
	}

	return events, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *LeadEventRepositoryImpl) applyFilter(query *gorm.DB, filter models.LeadEventFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}

	if filter.LeadID != nil {
		query = query.Where("lead_id = ?", *filter.LeadID)
	}

	if filter.EventType != nil {
		query = query.Where("event_type = ?", *filter.EventType)
	}

	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}

	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}

	return query
}

// ByFilter retrieves lead events based on filter criteria
func (r *LeadEventRepositoryImpl) ByFilter(ctx context.Context, filter models.LeadEventFilter, orderBy string, limit, offset int) ([]*models.LeadEvent, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.LeadEvent{})

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

	var events []*models.LeadEvent
	err := query.Find(&events).Error
	if err != nil {
		return nil, err
	}

	return events, nil
}

// Count returns the number of lead events matching the filter
func (r *LeadEventRepositoryImpl) Count(ctx context.Context, filter models.LeadEventFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.LeadEvent{})

	query = r.applyFilter(query, filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}
