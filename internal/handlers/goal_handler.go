package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
	"centavo/internal/services"
)

// GoalHandler handles goal requests.
type GoalHandler struct {
	goalService  services.GoalServicer
	auditService services.AuditServicer
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goalService services.GoalServicer, auditService services.AuditServicer) *GoalHandler {
	return &GoalHandler{goalService: goalService, auditService: auditService}
}

// CreateGoalRequest represents the request payload for creating a goal.
type CreateGoalRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	Type        string  `json:"type" binding:"required,goal_type"`
	CategoryID  *string `json:"category_id" binding:"omitempty,uuid"`
	AmountLimit int64   `json:"amount_limit" binding:"required,gt=0"`
	StartDate   string  `json:"start_date" binding:"required"`
	EndDate     string  `json:"end_date" binding:"required"`
	Scope       string  `json:"scope" binding:"omitempty,account_scope"`
}

// UpdateGoalRequest represents the request payload for updating a goal.
type UpdateGoalRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	AmountLimit *int64  `json:"amount_limit" binding:"omitempty,gt=0"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	IsActive    *bool   `json:"is_active"`
}

// CreateGoal handles the creation of a new goal.
// @Summary     Create a goal
// @Description Create an income target or expense cap over a date range, optionally scoped to one category
// @Tags        goals
// @Accept      json
// @Produce     json
// @Param       request body CreateGoalRequest true "Goal details"
// @Success     201 {object} models.Goal "Goal created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /goals [post]
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	startDate, err := parseFlexibleTime(req.StartDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	endDate, err := parseFlexibleTime(req.EndDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.CreateGoal(req.Name, models.GoalType(req.Type), req.CategoryID, req.AmountLimit, startDate, endDate, models.Scope(req.Scope))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_GOAL", "goal", goal.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "type": req.Type, "amount_limit": req.AmountLimit})

	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

// GetGoals handles listing goals.
// @Summary     List goals
// @Tags        goals
// @Produce     json
// @Param       scope query string false "Scope filter (personal or business)"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Items per page"
// @Success     200 {object} pagination.PageResponse[models.Goal]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /goals [get]
func (h *GoalHandler) GetGoals(c *gin.Context) {
	scope, err := parseScopeQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.goalService.GetGoals(scope, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetGoalsProgress handles computing progress for all active goals.
// @Summary     Get goal progress
// @Description Recompute progress and status for every active goal from the ledger
// @Tags        goals
// @Produce     json
// @Param       scope query string false "Scope filter (personal or business)"
// @Success     200 {array} services.GoalProgress
// @Router      /goals/progress [get]
func (h *GoalHandler) GetGoalsProgress(c *gin.Context) {
	scope, err := parseScopeQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	progress, err := h.goalService.GetGoalsProgress(scope)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

// GetGoal handles fetching a single goal with its progress.
// @Summary     Get a goal
// @Tags        goals
// @Produce     json
// @Param       id path string true "Goal ID"
// @Success     200 {object} services.GoalProgress
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [get]
func (h *GoalHandler) GetGoal(c *gin.Context) {
	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	progress, err := h.goalService.GetGoalProgress(goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": progress})
}

// UpdateGoal handles updating a goal.
// @Summary     Update a goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Param       id path string true "Goal ID"
// @Param       request body UpdateGoalRequest true "Fields to update"
// @Success     200 {object} models.Goal
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [put]
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields := services.GoalUpdateFields{
		Name:        req.Name,
		AmountLimit: req.AmountLimit,
		IsActive:    req.IsActive,
	}
	if req.StartDate != nil {
		t, err := parseFlexibleTime(*req.StartDate)
		if err != nil {
			respondWithError(c, err)
			return
		}
		fields.StartDate = &t
	}
	if req.EndDate != nil {
		t, err := parseFlexibleTime(*req.EndDate)
		if err != nil {
			respondWithError(c, err)
			return
		}
		fields.EndDate = &t
	}

	goal, err := h.goalService.UpdateGoal(goalID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("UPDATE_GOAL", "goal", goal.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// DeleteGoal handles deleting a goal.
// @Summary     Delete a goal
// @Tags        goals
// @Produce     json
// @Param       id path string true "Goal ID"
// @Success     204 "Goal deleted"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.goalService.DeleteGoal(goalID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_GOAL", "goal", goalID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
