package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/model"
)

type createRuleRequest struct {
	Name         string             `json:"name" binding:"required"`
	Priority     int                `json:"priority"`
	Active       *bool              `json:"active"`
	TriggerEvent model.TriggerEvent `json:"trigger_event" binding:"required"`

	FromTemperature model.Temperature  `json:"from_temperature"`
	FromSubstatus   model.HotSubstatus `json:"from_substatus"`
	TimerMinutes    int                `json:"timer_minutes"`

	ActionSetTemperature model.Temperature  `json:"action_set_temperature"`
	ActionClearSubstatus bool               `json:"action_clear_substatus"`
	ActionSetSubstatus   model.HotSubstatus `json:"action_set_substatus"`
}

// CreateRule handles the POST /api/organizations/{org_id}/rules request.
func (h *Handler) CreateRule(c *gin.Context) {
	var req createRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if !req.TriggerEvent.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid trigger_event"})
		return
	}
	if req.FromTemperature != "" && !req.FromTemperature.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid from_temperature"})
		return
	}
	if req.ActionSetTemperature != "" && !req.ActionSetTemperature.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid action_set_temperature"})
		return
	}
	if !req.FromSubstatus.Valid() || !req.ActionSetSubstatus.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid substatus"})
		return
	}
	if req.ActionClearSubstatus && req.ActionSetSubstatus != "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "action_clear_substatus and action_set_substatus are mutually exclusive"})
		return
	}
	if req.TimerMinutes < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "timer_minutes must not be negative"})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	rule := model.TransitionRule{
		OrganizationID:       c.Param("org_id"),
		Name:                 req.Name,
		Priority:             req.Priority,
		Active:               active,
		TriggerEvent:         req.TriggerEvent,
		FromTemperature:      req.FromTemperature,
		FromSubstatus:        req.FromSubstatus,
		TimerMinutes:         req.TimerMinutes,
		ActionSetTemperature: req.ActionSetTemperature,
		ActionClearSubstatus: req.ActionClearSubstatus,
		ActionSetSubstatus:   req.ActionSetSubstatus,
	}
	if err := h.store.CreateRule(c.Request.Context(), &rule); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to create rule"})
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// ListRules handles the GET /api/organizations/{org_id}/rules request.
func (h *Handler) ListRules(c *gin.Context) {
	rules, err := h.store.RulesByOrganization(c.Request.Context(), c.Param("org_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve rules"})
		return
	}
	c.JSON(http.StatusOK, rules)
}
