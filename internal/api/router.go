package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/leo-o93/sorrija-crm-odontologico-sub001/config"
	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/engine"
	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/mw"
	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, eng *engine.Service, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, eng)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Engine trigger, invoked by an external timer.
		api.POST("/engine/run", handler.RunEngine)

		// Leads
		api.POST("/organizations/:org_id/leads", handler.CreateLead)
		api.GET("/organizations/:org_id/leads", caching, handler.ListLeads)
		api.POST("/leads/:lead_id/interactions", handler.RecordInteraction)
		api.GET("/organizations/:org_id/reports/temperatures", caching, handler.TemperatureReport)

		// Appointments
		api.POST("/appointments", handler.CreateAppointment)
		api.PUT("/appointments/:id", handler.UpdateAppointment)
		api.DELETE("/appointments/:id", handler.DeleteAppointment)
		api.GET("/organizations/:org_id/appointments", caching, handler.ListAppointments)

		// Transition rules
		api.POST("/organizations/:org_id/rules", handler.CreateRule)
		api.GET("/organizations/:org_id/rules", handler.ListRules)
	}

	return r
}
