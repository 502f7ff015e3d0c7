package api

import (
	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/engine"
	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store  store.Store
	engine *engine.Service
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, eng *engine.Service) *Handler {
	return &Handler{
		store:  s,
		engine: eng,
	}
}
