package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/model"
)

type createLeadRequest struct {
	Name         string             `json:"name" binding:"required"`
	Phone        string             `json:"phone"`
	Temperature  model.Temperature  `json:"temperature"`
	HotSubstatus model.HotSubstatus `json:"hot_substatus"`
}

// CreateLead handles the POST /api/organizations/{org_id}/leads request.
func (h *Handler) CreateLead(c *gin.Context) {
	var req createLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if req.Temperature == "" {
		req.Temperature = model.TemperatureNovo
	}
	if !req.Temperature.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid temperature"})
		return
	}
	if !req.HotSubstatus.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid hot_substatus"})
		return
	}
	if req.HotSubstatus != "" && req.Temperature != model.TemperatureQuente {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "hot_substatus is only meaningful for quente leads"})
		return
	}

	lead := model.Lead{
		OrganizationID: c.Param("org_id"),
		Name:           req.Name,
		Phone:          req.Phone,
		Temperature:    req.Temperature,
		HotSubstatus:   req.HotSubstatus,
	}
	if err := h.store.CreateLead(c.Request.Context(), &lead); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to create lead"})
		return
	}
	c.JSON(http.StatusCreated, lead)
}

// ListLeads handles the GET /api/organizations/{org_id}/leads request.
func (h *Handler) ListLeads(c *gin.Context) {
	leads, err := h.store.LeadsByOrganization(c.Request.Context(), c.Param("org_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve leads"})
		return
	}
	c.JSON(http.StatusOK, leads)
}

// RecordInteraction handles the POST /api/leads/{lead_id}/interactions
// request. It stamps the lead's last contact time, restarting its timers.
func (h *Handler) RecordInteraction(c *gin.Context) {
	err := h.store.RecordInteraction(c.Request.Context(), c.Param("lead_id"), time.Now().UTC())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to record interaction"})
		return
	}
	c.Status(http.StatusNoContent)
}

// temperatureReportResponse is one row of the temperature report.
type temperatureReportResponse struct {
	Temperature model.Temperature `json:"temperature"`
	Total       int64             `json:"total"`
}

// TemperatureReport handles the GET
// /api/organizations/{org_id}/reports/temperatures request. Every
// temperature is present in the report, including morno, which only manual
// edits ever produce.
func (h *Handler) TemperatureReport(c *gin.Context) {
	counts, err := h.store.TemperatureCounts(c.Request.Context(), c.Param("org_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate leads"})
		return
	}

	report := make([]temperatureReportResponse, 0, len(model.Temperatures))
	for _, t := range model.Temperatures {
		report = append(report, temperatureReportResponse{Temperature: t, Total: counts[t]})
	}
	c.JSON(http.StatusOK, report)
}
