package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/NzamaE/Footprint-Logger-Fullstack/models"
)

type ActivityService struct{ db *gorm.DB }

func NewActivityService(db *gorm.DB) *ActivityService { return &ActivityService{db: db} }

type ActivityInput struct {
	Type            string                 `json:"type"`
	Name            string                 `json:"name"`
	Description     string                 `json:"description"`
	Quantity        models.Quantity        `json:"quantity"`
	CarbonFootprint *float64               `json:"carbonFootprint"`
	Date            *time.Time             `json:"date"`
	Details         models.ActivityDetails `json:"details"`
}

type ActivityFilter struct {
	Type      string
	Name      string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

type Pagination struct {
	Current    int   `json:"current"`
	Total      int   `json:"total"`
	Count      int   `json:"count"`
	TotalCount int64 `json:"totalCount"`
}

type ActivitySummary struct {
	TotalCarbonFootprint float64 `json:"totalCarbonFootprint"`
}

type ActivityPage struct {
	Activities []models.Activity `json:"activities"`
	Pagination Pagination        `json:"pagination"`
	Summary    ActivitySummary   `json:"summary"`
}

// Create validates the input, derives the footprint when the client did not
// supply one, and persists the activity for the given owner. Validation
// happens entirely before the write.
func (s *ActivityService) Create(ctx context.Context, userID uint, input ActivityInput) (*models.Activity, error) {
	if err := validateActivityInput(input); err != nil {
		return nil, err
	}

	footprint, factor, err := CalculateEmission(input.Type, input.Quantity, input.Details)
	if err != nil {
		return nil, err
	}
	if input.CarbonFootprint != nil {
		if *input.CarbonFootprint < 0 {
			return nil, invalid("carbon footprint cannot be negative")
		}
		// The computed factor does not describe a client-supplied value.
		footprint = round2(*input.CarbonFootprint)
		factor = 0
	}

	date := time.Now()
	if input.Date != nil {
		date = *input.Date
	}

	activity := models.Activity{
		UserID:          userID,
		Type:            input.Type,
		Name:            strings.TrimSpace(input.Name),
		Description:     strings.TrimSpace(input.Description),
		Quantity:        input.Quantity,
		CarbonFootprint: footprint,
		EmissionFactor:  factor,
		Date:            date,
		Details:         input.Details,
	}
	if err := s.db.WithContext(ctx).Create(&activity).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

// List returns one page of the owner's activities, newest first, plus the
// total footprint over everything matching the filter (not just the page).
func (s *ActivityService) List(ctx context.Context, userID uint, filter ActivityFilter) (*ActivityPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}

	query := s.scoped(ctx, userID, filter)

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, err
	}

	var summary ActivitySummary
	if err := s.scoped(ctx, userID, filter).
		Select("COALESCE(SUM(carbon_footprint), 0) AS total_carbon_footprint").
		Scan(&summary).Error; err != nil {
		return nil, err
	}

	activities := []models.Activity{}
	offset := (filter.Page - 1) * filter.Limit
	if err := s.scoped(ctx, userID, filter).
		Order("date DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&activities).Error; err != nil {
		return nil, err
	}

	totalPages := int((totalCount + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &ActivityPage{
		Activities: activities,
		Pagination: Pagination{
			Current:    filter.Page,
			Total:      totalPages,
			Count:      len(activities),
			TotalCount: totalCount,
		},
		Summary: summary,
	}, nil
}

func (s *ActivityService) Get(ctx context.Context, userID, id uint) (*models.Activity, error) {
	var activity models.Activity
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&activity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &activity, nil
}

func (s *ActivityService) Update(ctx context.Context, userID, id uint, input ActivityInput) (*models.Activity, error) {
	activity, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := validateActivityInput(input); err != nil {
		return nil, err
	}

	footprint, factor, err := CalculateEmission(input.Type, input.Quantity, input.Details)
	if err != nil {
		return nil, err
	}
	if input.CarbonFootprint != nil {
		if *input.CarbonFootprint < 0 {
			return nil, invalid("carbon footprint cannot be negative")
		}
		// The computed factor does not describe a client-supplied value.
		footprint = round2(*input.CarbonFootprint)
		factor = 0
	}

	activity.Type = input.Type
	activity.Name = strings.TrimSpace(input.Name)
	activity.Description = strings.TrimSpace(input.Description)
	activity.Quantity = input.Quantity
	activity.CarbonFootprint = footprint
	activity.EmissionFactor = factor
	activity.Details = input.Details
	if input.Date != nil {
		activity.Date = *input.Date
	}

	if err := s.db.WithContext(ctx).Save(activity).Error; err != nil {
		return nil, err
	}
	return activity, nil
}

func (s *ActivityService) Delete(ctx context.Context, userID, id uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Activity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// scoped builds the owner-scoped filtered query shared by Count, the summary
// aggregate and the page select.
func (s *ActivityService) scoped(ctx context.Context, userID uint, filter ActivityFilter) *gorm.DB {
	query := s.db.WithContext(ctx).
		Model(&models.Activity{}).
		Where("user_id = ?", userID)
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.StartDate != nil {
		query = query.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", *filter.EndDate)
	}
	return query
}

func validateActivityInput(input ActivityInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return invalid("activity name cannot be empty")
	}
	if len(name) > 100 {
		return invalid("activity name cannot exceed 100 characters")
	}
	if len(input.Description) > 500 {
		return invalid("description cannot exceed 500 characters")
	}
	if !models.ValidActivityType(input.Type) {
		return invalidf("activity type must be one of: %s", strings.Join(models.ActivityTypes, ", "))
	}
	if input.Quantity.Unit == "" {
		return invalid("quantity must include both value and unit")
	}
	if input.Quantity.Value < 0 {
		return invalid("quantity value cannot be negative")
	}
	if !models.ValidUnit(input.Quantity.Unit) {
		return invalidf("quantity unit must be one of: %s", strings.Join(models.AllowedUnits, ", "))
	}
	return nil
}
