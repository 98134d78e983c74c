package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/events"
	"centavo/internal/models"
	"centavo/internal/pagination"
)

// goalService handles goal business logic. Progress is never stored; it is
// recomputed from the ledger on every read.
type goalService struct {
	db  *gorm.DB
	bus events.Bus
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB, bus events.Bus) GoalServicer {
	return &goalService{db: db, bus: bus}
}

// CreateGoal creates a new goal, either category-scoped or general.
func (s *goalService) CreateGoal(name string, goalType models.GoalType, categoryID *string, amountLimit int64, startDate, endDate time.Time, scope models.Scope) (*models.Goal, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal name is required")
	}
	if amountLimit <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount limit must be greater than zero")
	}
	if startDate.IsZero() || endDate.IsZero() || endDate.Before(startDate) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal requires a valid date range")
	}
	if scope == "" {
		scope = models.ScopePersonal
	}

	if categoryID != nil {
		var category models.Category
		if err := s.db.Where("id = ?", *categoryID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		// A goal counts the transactions of its own type; a category of the
		// other type would always sum to zero.
		if string(category.Type) != string(goalType) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type does not match goal type")
		}
	}

	goal := &models.Goal{
		Name:        name,
		Type:        goalType,
		CategoryID:  categoryID,
		AmountLimit: amountLimit,
		StartDate:   startDate,
		EndDate:     endDate,
		Scope:       scope,
		IsActive:    true,
	}

	if err := s.db.Create(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.bus.Publish(context.Background(), events.New(events.TopicGoals, events.ActionCreated, goal.ID))
	return goal, nil
}

// GetGoals retrieves a paginated list of goals, optionally filtered by scope.
func (s *goalService) GetGoals(scope *models.Scope, page pagination.PageRequest) (*pagination.PageResponse[models.Goal], error) {
	page.Defaults()

	base := s.db.Model(&models.Goal{})
	if scope != nil {
		base = base.Where("scope = ?", *scope)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var goals []models.Goal
	if err := base.Preload("Category").
		Scopes(pagination.Paginate(page)).
		Order("end_date").
		Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(goals, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetGoalByID retrieves a goal by ID.
func (s *goalService) GetGoalByID(goalID string) (*models.Goal, error) {
	var goal models.Goal
	if err := s.db.Preload("Category").Where("id = ?", goalID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}

// UpdateGoal updates an existing goal.
func (s *goalService) UpdateGoal(goalID string, fields GoalUpdateFields) (*models.Goal, error) {
	goal, err := s.GetGoalByID(goalID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil && *fields.Name != "" {
		updates["name"] = *fields.Name
	}
	if fields.AmountLimit != nil {
		if *fields.AmountLimit <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount limit must be greater than zero")
		}
		updates["amount_limit"] = *fields.AmountLimit
	}
	if fields.StartDate != nil {
		updates["start_date"] = *fields.StartDate
	}
	if fields.EndDate != nil {
		updates["end_date"] = *fields.EndDate
	}
	if fields.IsActive != nil {
		updates["is_active"] = *fields.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(goal).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", goal.ID).First(goal).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		s.bus.Publish(context.Background(), events.New(events.TopicGoals, events.ActionUpdated, goal.ID))
	}

	return goal, nil
}

// DeleteGoal soft-deletes a goal.
func (s *goalService) DeleteGoal(goalID string) error {
	goal, err := s.GetGoalByID(goalID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(goal).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.bus.Publish(context.Background(), events.New(events.TopicGoals, events.ActionDeleted, goal.ID))
	return nil
}

// GetGoalsProgress computes progress for every active goal using one grouped
// aggregate query per goal class instead of one query per goal.
func (s *goalService) GetGoalsProgress(scope *models.Scope) ([]GoalProgress, error) {
	base := s.db.Where("is_active = ?", true)
	if scope != nil {
		base = base.Where("scope = ?", *scope)
	}

	var goals []models.Goal
	if err := base.Preload("Category").Order("end_date").Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.progressFor(goals)
}

// GetGoalProgress computes progress for a single goal.
func (s *goalService) GetGoalProgress(goalID string) (*GoalProgress, error) {
	goal, err := s.GetGoalByID(goalID)
	if err != nil {
		return nil, err
	}

	progress, err := s.progressFor([]models.Goal{*goal})
	if err != nil {
		return nil, err
	}
	return &progress[0], nil
}

// progressFor sums matching transactions for the given goals and classifies
// each one.
func (s *goalService) progressFor(goals []models.Goal) ([]GoalProgress, error) {
	var categoryIDs, generalIDs []string
	for i := range goals {
		if goals[i].CategoryID != nil {
			categoryIDs = append(categoryIDs, goals[i].ID)
		} else {
			generalIDs = append(generalIDs, goals[i].ID)
		}
	}

	totals := make(map[string]int64, len(goals))

	type row struct {
		GoalID string
		Total  int64
	}

	if len(categoryIDs) > 0 {
		var rows []row
		if err := s.db.Table("goals").
			Select("goals.id AS goal_id, COALESCE(SUM(transactions.amount), 0) AS total").
			Joins(`LEFT JOIN transactions ON transactions.category_id = goals.category_id
				AND transactions.type = goals.type
				AND transactions.scope = goals.scope
				AND transactions.date >= goals.start_date
				AND transactions.date <= goals.end_date
				AND transactions.deleted_at IS NULL`).
			Where("goals.id IN ?", categoryIDs).
			Group("goals.id").
			Scan(&rows).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, r := range rows {
			totals[r.GoalID] = r.Total
		}
	}

	if len(generalIDs) > 0 {
		var rows []row
		if err := s.db.Table("goals").
			Select("goals.id AS goal_id, COALESCE(SUM(transactions.amount), 0) AS total").
			Joins(`LEFT JOIN transactions ON transactions.type = goals.type
				AND transactions.scope = goals.scope
				AND transactions.date >= goals.start_date
				AND transactions.date <= goals.end_date
				AND transactions.deleted_at IS NULL`).
			Where("goals.id IN ?", generalIDs).
			Group("goals.id").
			Scan(&rows).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, r := range rows {
			totals[r.GoalID] = r.Total
		}
	}

	now := time.Now()
	progress := make([]GoalProgress, len(goals))
	for i := range goals {
		current := totals[goals[i].ID]
		progress[i] = GoalProgress{
			Goal:       goals[i],
			Current:    current,
			Percentage: progressPercentage(current, goals[i].AmountLimit),
			Status:     classifyGoal(&goals[i], current, now),
		}
	}
	return progress, nil
}

// progressPercentage returns current/limit as a percentage with two decimal
// places.
func progressPercentage(current, limit int64) float64 {
	if limit == 0 {
		return 0
	}
	return decimal.NewFromInt(current).
		Div(decimal.NewFromInt(limit)).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}

// classifyGoal applies the goal state rules. An income goal that reaches its
// target is completed no matter the date; an expense goal that exceeds its
// cap has failed no matter the date. Otherwise the period decides.
func classifyGoal(goal *models.Goal, current int64, now time.Time) models.GoalStatus {
	past := now.After(goal.EndDate)

	if goal.Type == models.GoalTypeIncome {
		if current >= goal.AmountLimit {
			return models.GoalStatusCompleted
		}
		if past {
			return models.GoalStatusFailed
		}
		return models.GoalStatusActive
	}

	if current > goal.AmountLimit {
		return models.GoalStatusFailed
	}
	if past {
		return models.GoalStatusCompleted
	}
	return models.GoalStatusActive
}
