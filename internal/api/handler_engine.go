package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// engineRunResponse is the payload returned to the scheduler.
type engineRunResponse struct {
	Success            bool     `json:"success"`
	TransitionsMade    int      `json:"transitions_made"`
	SubstatusesCleared int      `json:"substatuses_cleared"`
	Errors             []string `json:"errors,omitempty"`
}

// RunEngine handles the POST /api/engine/run request. The caller is an
// unattended scheduler, so the transport status is always 200: a failed run
// is reported in the body without tripping scheduler-level alarms or
// retries.
func (h *Handler) RunEngine(c *gin.Context) {
	report := h.engine.RunOnce(c.Request.Context())

	c.JSON(http.StatusOK, engineRunResponse{
		Success:            report.Success,
		TransitionsMade:    report.TransitionsMade,
		SubstatusesCleared: report.SubstatusesCleared,
		Errors:             report.Errors,
	})
}
