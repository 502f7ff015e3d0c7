package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/model"
)

type createAppointmentRequest struct {
	OrganizationID  string    `json:"organization_id" binding:"required"`
	LeadID          *string   `json:"lead_id"`
	AppointmentDate time.Time `json:"appointment_date" binding:"required"`
	Status          string    `json:"status" binding:"required"`
}

// CreateAppointment handles the POST /api/appointments request. The lead's
// scheduling fields are reconciled in the same transaction as the insert.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	appt := model.Appointment{
		OrganizationID:  req.OrganizationID,
		LeadID:          req.LeadID,
		AppointmentDate: req.AppointmentDate,
		Status:          req.Status,
	}
	if err := h.store.CreateAppointment(c.Request.Context(), &appt); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to create appointment"})
		return
	}
	c.JSON(http.StatusCreated, appt)
}

type updateAppointmentRequest struct {
	AppointmentDate *time.Time `json:"appointment_date"`
	Status          *string    `json:"status"`
}

// UpdateAppointment handles the PUT /api/appointments/{id} request.
func (h *Handler) UpdateAppointment(c *gin.Context) {
	var req updateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.AppointmentDate == nil && req.Status == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	appt, err := h.store.AppointmentByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "appointment not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to load appointment"})
		return
	}

	if req.AppointmentDate != nil {
		appt.AppointmentDate = *req.AppointmentDate
	}
	if req.Status != nil {
		appt.Status = *req.Status
	}

	if err := h.store.UpdateAppointment(c.Request.Context(), &appt); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to update appointment"})
		return
	}
	c.JSON(http.StatusOK, appt)
}

// DeleteAppointment handles the DELETE /api/appointments/{id} request.
func (h *Handler) DeleteAppointment(c *gin.Context) {
	err := h.store.DeleteAppointment(c.Request.Context(), c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "appointment not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to delete appointment"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ListAppointments handles the GET /api/organizations/{org_id}/appointments request.
func (h *Handler) ListAppointments(c *gin.Context) {
	appts, err := h.store.AppointmentsByOrganization(c.Request.Context(), c.Param("org_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve appointments"})
		return
	}
	c.JSON(http.StatusOK, appts)
}
